package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"stock-hold-service/internal/pkg/config"
	"stock-hold-service/internal/pkg/errs"
	"stock-hold-service/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "product:"

func productKey(id uuid.UUID) string { return keyPrefix + id.String() }

// RedisProductCache stores product views as JSON under product:{id}.
type RedisProductCache struct {
	client redis.Cmdable
}

func NewRedisProductCache(client redis.Cmdable) *RedisProductCache {
	return &RedisProductCache{client: client}
}

// NewRedisClient connects and pings once so a bad address fails at startup.
func NewRedisClient(cfg config.CacheConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errs.Wrap(err, "ping redis")
	}
	return client, nil
}

func (c *RedisProductCache) Get(ctx context.Context, id uuid.UUID) (*queries.ProductView, bool, error) {
	raw, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, errs.Wrap(err, "redis get")
	}
	var view queries.ProductView
	if err := json.Unmarshal(raw, &view); err != nil {
		// Treat undecodable entries as a miss; the next Set overwrites them.
		return nil, false, nil
	}
	return &view, true, nil
}

func (c *RedisProductCache) Set(ctx context.Context, view *queries.ProductView, ttl time.Duration) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return errs.Wrap(err, "marshal product view")
	}
	if err := c.client.Set(ctx, productKey(view.ID), raw, ttl).Err(); err != nil {
		return errs.Wrap(err, "redis set")
	}
	return nil
}

func (c *RedisProductCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		return errs.Wrap(err, "redis del")
	}
	return nil
}
