package components

import (
	"context"
	"log/slog"

	"stock-hold-service/internal/infra/cache"
	"stock-hold-service/internal/pkg/clock"
	"stock-hold-service/internal/pkg/config"
	"stock-hold-service/internal/usecase/queries"
	"stock-hold-service/internal/usecase/shared"

	"go.uber.org/fx"
)

var CacheModule = fx.Module("cache",
	fx.Provide(NewProductCache),
)

type ProductCache struct {
	fx.Out

	Reads       queries.ProductCache
	Invalidator shared.ProductCacheInvalidator
}

// NewProductCache leaves both fields nil for CACHE_DRIVER=none; the use
// cases then go straight to the store.
func NewProductCache(lc fx.Lifecycle, cfg config.CacheConfig, clk clock.Clock, log *slog.Logger) (ProductCache, error) {
	switch cfg.Driver {
	case config.CacheDriverRedis:
		client, err := cache.NewRedisClient(cfg)
		if err != nil {
			return ProductCache{}, err
		}
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				return client.Close()
			},
		})
		log.Info("product cache: redis", "addr", cfg.RedisAddr, "ttl", cfg.TTL)
		c := cache.NewRedisProductCache(client)
		return ProductCache{Reads: c, Invalidator: c}, nil
	case config.CacheDriverMemory:
		c := cache.NewMemoryProductCache(clk)
		return ProductCache{Reads: c, Invalidator: c}, nil
	default:
		log.Info("product cache disabled")
		return ProductCache{}, nil
	}
}
