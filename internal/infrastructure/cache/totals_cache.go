package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vetclinic/backend/internal/infrastructure/config"
)

const connectTimeout = 5 * time.Second

// RedisTotalsCache caches dashboard totals in Redis as JSON blobs
type RedisTotalsCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisTotalsCache connects to Redis and returns the cache, or an
// error when the server is unreachable
func NewRedisTotalsCache(cfg config.RedisConfig, logger *zap.Logger) (*RedisTotalsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisTotalsCache{client: client, logger: logger}, nil
}

// Get loads and unmarshals a cached value into dest. The boolean is
// false on a cache miss.
func (c *RedisTotalsCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("Discarding malformed cache entry", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// Set marshals and stores a value with the given TTL
func (c *RedisTotalsCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

// Close releases the Redis connection
func (c *RedisTotalsCache) Close() error {
	return c.client.Close()
}

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

// InMemoryTotalsCache is a process-local fallback for single-instance
// deployments and tests
type InMemoryTotalsCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewInMemoryTotalsCache creates an empty in-memory cache
func NewInMemoryTotalsCache() *InMemoryTotalsCache {
	return &InMemoryTotalsCache{entries: make(map[string]memoryEntry)}
}

// Get loads a cached value if present and not expired
func (c *InMemoryTotalsCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return false, nil
	}
	if err := json.Unmarshal(entry.raw, dest); err != nil {
		return false, nil
	}
	return true, nil
}

// Set stores a value with the given TTL
func (c *InMemoryTotalsCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = memoryEntry{raw: raw, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}
