package bootstrap

import (
	"context"
	"log/slog"

	"stock-hold-service/internal/pkg/config"
	"stock-hold-service/internal/pkg/tracing"

	"go.uber.org/fx"
)

var TracingModule = fx.Module("tracing",
	fx.Invoke(setupTracing),
)

func setupTracing(lc fx.Lifecycle, cfg config.TracingConfig, log *slog.Logger) error {
	shutdown, err := tracing.Setup(context.Background(), cfg)
	if err != nil {
		return err
	}
	if cfg.Endpoint != "" {
		log.Info("tracing enabled", "endpoint", cfg.Endpoint, "service", cfg.ServiceName)
	}
	lc.Append(fx.Hook{OnStop: shutdown})
	return nil
}
