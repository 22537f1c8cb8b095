// Package cache keeps assembled products in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"loja/internal/assembler"

	"github.com/redis/go-redis/v9"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a Redis client and checks that the server answers.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// GetJSON reads key into dest. found is false when the key does not exist.
func GetJSON(ctx context.Context, rdb redis.Cmdable, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, json.Unmarshal(val, dest)
}

// SetJSON stores value under key for ttl.
func SetJSON(ctx context.Context, rdb redis.Cmdable, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// ProductKey is the cache key of a product.
func ProductKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

// ProductCache is a read-through cache of product views.
type ProductCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewProductCache creates a ProductCache whose entries live for ttl.
func NewProductCache(rdb redis.Cmdable, ttl time.Duration) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached view of product id.
func (c *ProductCache) Get(ctx context.Context, id uint) (*assembler.ProductView, bool, error) {
	var v assembler.ProductView
	found, err := GetJSON(ctx, c.rdb, ProductKey(id), &v)
	if err != nil || !found {
		return nil, false, err
	}
	return &v, true, nil
}

// Set stores v.
func (c *ProductCache) Set(ctx context.Context, v assembler.ProductView) error {
	return SetJSON(ctx, c.rdb, ProductKey(v.ID), v, c.ttl)
}

// Delete evicts product id.
func (c *ProductCache) Delete(ctx context.Context, id uint) error {
	return c.rdb.Del(ctx, ProductKey(id)).Err()
}
