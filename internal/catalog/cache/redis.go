package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"thryft-club/internal/catalog"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix          = "thryft:search"
	healthCheckTimeout = 2 * time.Second
)

// RedisCache stores filter results keyed by catalog version, category and
// case-folded query. Entries for an older catalog version are never read
// again and age out through the TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Key builds the cache key for a search. The query is lower-cased because
// text matching is case-insensitive; the category is kept as is because
// category matching is not. Version and category carry a length prefix so a
// ':' inside either cannot shift the boundary with the query.
func Key(version, query, category string) string {
	return fmt.Sprintf("%s:%d:%s:%d:%s:%s",
		keyPrefix, len(version), version, len(category), category, strings.ToLower(query))
}

func (c *RedisCache) Get(ctx context.Context, version, query, category string) ([]catalog.Product, bool, error) {
	raw, err := c.client.Get(ctx, Key(version, query, category)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	products := make([]catalog.Product, 0)
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, false, fmt.Errorf("decode cached result: %w", err)
	}
	return products, true, nil
}

func (c *RedisCache) Set(ctx context.Context, version, query, category string, products []catalog.Product) error {
	payload, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := c.client.Set(ctx, Key(version, query, category), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
