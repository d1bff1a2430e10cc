package database

import (
	"context"
	"testing"
	"time"

	"storefront/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) config.DatabaseConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { pgContainer.Terminate(ctx) })

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return config.DatabaseConfig{
		Enabled:         true,
		Host:            host,
		Port:            port.Int(),
		User:            "postgres",
		Password:        "postgres",
		Database:        "storefront",
		MaxConnections:  5,
		MinConnections:  1,
		MaxConnLifetime: 300,
	}
}

func TestNewPool_InvalidHost(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:           "invalid-host.invalid",
		Port:           5432,
		User:           "postgres",
		Database:       "storefront",
		MaxConnections: 2,
		MinConnections: 1,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := NewPool(ctx, cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Nil(t, pool)
}

func TestNewPoolAndMigrate(t *testing.T) {
	cfg := startPostgres(t)
	ctx := context.Background()

	pool, err := NewPool(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, Migrate(ctx, pool, zerolog.Nop()))

	var exists bool
	err = pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'order_ledger')`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists)

	// Re-running is a no-op.
	assert.NoError(t, Migrate(ctx, pool, zerolog.Nop()))

	var appName string
	require.NoError(t, pool.QueryRow(ctx, `SHOW application_name`).Scan(&appName))
	assert.Equal(t, ApplicationName, appName)
}

func TestOpen(t *testing.T) {
	cfg := startPostgres(t)
	ctx := context.Background()

	pool, err := Open(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer pool.Close()

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM order_ledger`).Scan(&count))
	assert.Zero(t, count)
}

func TestOpen_InvalidHost(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:           "invalid-host.invalid",
		Port:           5432,
		User:           "postgres",
		Database:       "storefront",
		MaxConnections: 2,
		MinConnections: 1,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := Open(ctx, cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Nil(t, pool)
}
