package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const availabilityKeyPrefix = "inventory:availability:"

// RedisAvailabilityCache implements the availability read model on Redis.
// Entries are only filled from committed reads and dropped after committed
// mutations, so a short TTL bounds staleness if an invalidation is lost.
type RedisAvailabilityCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisAvailabilityCache connects to Redis and returns the cache
func NewRedisAvailabilityCache(cfg RedisConfig) (*RedisAvailabilityCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisAvailabilityCacheWithClient(client, cfg.TTL), nil
}

// NewRedisAvailabilityCacheWithClient creates a cache with an existing
// Redis client. Useful for testing or sharing a client across components.
func NewRedisAvailabilityCacheWithClient(client *redis.Client, ttl time.Duration) *RedisAvailabilityCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisAvailabilityCache{
		client:    client,
		keyPrefix: availabilityKeyPrefix,
		ttl:       ttl,
	}
}

// Get returns the cached quantity and whether it was present
func (c *RedisAvailabilityCache) Get(ctx context.Context, productID uuid.UUID) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, c.key(productID)).Result()
	if err == redis.Nil {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to read availability cache: %w", err)
	}

	qty, err := decimal.NewFromString(val)
	if err != nil {
		// Corrupt entry, treat as a miss and let the next Set repair it
		return decimal.Zero, false, nil
	}
	return qty, true, nil
}

// Set stores a quantity read from the authoritative store
func (c *RedisAvailabilityCache) Set(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal) error {
	if err := c.client.Set(ctx, c.key(productID), quantity.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write availability cache: %w", err)
	}
	return nil
}

// Invalidate drops cached quantities after a committed mutation
func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, productIDs ...uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = c.key(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate availability cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisAvailabilityCache) Close() error {
	return c.client.Close()
}

func (c *RedisAvailabilityCache) key(productID uuid.UUID) string {
	return c.keyPrefix + productID.String()
}
