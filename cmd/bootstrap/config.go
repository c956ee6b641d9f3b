package bootstrap

import (
	"stock-hold-service/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		splitConfig,
	),
)

// Sections exposes each config section on its own so constructors can ask
// for only what they use.
type Sections struct {
	fx.Out

	Hold    config.HoldConfig
	Sweep   config.SweepConfig
	Worker  config.WorkerConfig
	Cache   config.CacheConfig
	Kafka   config.KafkaConfig
	Tracing config.TracingConfig
}

func splitConfig(cfg config.Config) Sections {
	return Sections{
		Hold:    cfg.Hold,
		Sweep:   cfg.Sweep,
		Worker:  cfg.Worker,
		Cache:   cfg.Cache,
		Kafka:   cfg.Kafka,
		Tracing: cfg.Tracing,
	}
}
