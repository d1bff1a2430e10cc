package cart

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestFileStorage_MissingFileIsEmptyCart(t *testing.T) {
	storage := NewFileStorage(t.TempDir())

	lines, err := storage.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, StorageKey+".json", filepath.Base(storage.Path()))
}

func TestFileStorage_SaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	storage := NewFileStorage(dir)
	ctx := context.Background()

	want := []model.CartLineItem{
		{
			ProductID: "gid://shopify/Product/1",
			Title:     "Peanut Butter Biscuits",
			Quantity:  6,
			UnitPrice: decimal.RequireFromString("2.00"),
			BulkDiscount: &model.BulkDiscount{
				Threshold: 5,
				UnitPrice: decimal.RequireFromString("1.60"),
			},
		},
	}

	require.NoError(t, storage.Save(ctx, want))

	got, err := storage.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want[0].ProductID, got[0].ProductID)
	assert.Equal(t, 6, got[0].Quantity)
	require.NotNil(t, got[0].BulkDiscount)
	assert.True(t, want[0].BulkDiscount.UnitPrice.Equal(got[0].BulkDiscount.UnitPrice))

	_, err = os.Stat(storage.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file must be renamed away")
}

func TestFileStorage_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	storage := NewFileStorage(dir)
	require.NoError(t, os.WriteFile(storage.Path(), []byte("{not json"), 0o600))

	_, err := storage.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode cart file")

	// The store degrades to an empty cart on the same failure.
	store := newLoadedStore(t, storage)
	items, ok := store.Items()
	assert.True(t, ok)
	assert.Empty(t, items)
}

func TestRedisStorage_Key(t *testing.T) {
	client := NewRedisClient("localhost:6379")
	defer client.Close()

	assert.Equal(t, StorageKey, NewRedisStorage(client, "", 0).Key())
	assert.Equal(t, StorageKey+":shopper-1", NewRedisStorage(client, "shopper-1", 0).Key())
}

func TestRedisStorage_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer redisContainer.Terminate(ctx)

	endpoint, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err)

	client := NewRedisClient(endpoint)
	defer client.Close()

	storage := NewRedisStorage(client, "shopper-42", time.Hour)

	lines, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)

	store := newLoadedStore(t, storage)
	require.NoError(t, store.AddOrUpdate(ctx, line("gid://shopify/Product/7", "Chew Toy", 3, "4.25")))

	persisted, err := storage.Load(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, 3, persisted[0].Quantity)

	ttl, err := client.TTL(ctx, storage.Key()).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	// A fresh store for the same shopper sees the saved cart.
	reloaded := newLoadedStore(t, NewRedisStorage(client, "shopper-42", time.Hour))
	qty, ok := reloaded.Quantity("gid://shopify/Product/7", "")
	assert.True(t, ok)
	assert.Equal(t, 3, qty)
}
