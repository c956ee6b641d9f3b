package components

import (
	"context"
	"log/slog"

	"stock-hold-service/internal/infra/broker"
	"stock-hold-service/internal/pkg/config"
	"stock-hold-service/internal/worker"

	"go.uber.org/fx"
)

var BrokerModule = fx.Module("broker",
	fx.Provide(NewEventPublisher),
)

func NewEventPublisher(lc fx.Lifecycle, cfg config.KafkaConfig, log *slog.Logger) worker.EventPublisher {
	if len(cfg.Brokers) == 0 {
		log.Info("no kafka brokers configured; domain events go to the log")
		return broker.NewLogPublisher(log)
	}

	writer := broker.NewWriter(cfg)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return writer.Close()
		},
	})
	log.Info("publishing domain events to kafka", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return broker.NewKafkaPublisher(log, writer, cfg.Topic)
}
