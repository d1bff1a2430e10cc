package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/go-redis/redis/v8"
)

// RedisStorage keeps the cart as one JSON value in Redis.
type RedisStorage struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisClient parses a redis:// URL, falling back to a plain host:port.
func NewRedisClient(addr string) *redis.Client {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{
			Addr:         addr,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}
	}
	return redis.NewClient(opts)
}

// NewRedisStorage stores the cart of one shopper under StorageKey:shopperID.
// A zero ttl keeps the cart forever.
func NewRedisStorage(client *redis.Client, shopperID string, ttl time.Duration) *RedisStorage {
	key := StorageKey
	if shopperID != "" {
		key = StorageKey + ":" + shopperID
	}
	return &RedisStorage{client: client, key: key, ttl: ttl}
}

// Key returns the Redis key holding the cart.
func (s *RedisStorage) Key() string {
	return s.key
}

// Load reads the cart value.
func (s *RedisStorage) Load(ctx context.Context) ([]model.CartLineItem, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.CartLineItem{}, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	var lines []model.CartLineItem
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart %s: %w", s.key, err)
	}
	return lines, nil
}

// Save replaces the cart value.
func (s *RedisStorage) Save(ctx context.Context, lines []model.CartLineItem) error {
	if lines == nil {
		lines = []model.CartLineItem{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}
