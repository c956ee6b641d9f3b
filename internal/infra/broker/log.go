package broker

import (
	"context"
	"encoding/json"
	"log/slog"

	"stock-hold-service/internal/pkg/errs"
	"stock-hold-service/internal/usecase/shared"
)

// LogPublisher stands in for Kafka when no brokers are configured.
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, evt shared.Event) error {
	p.log.Info("domain event",
		"event_id", evt.ID,
		"type", evt.Type,
		"aggregate_id", evt.AggregateID,
		"occurred_at", evt.OccurredAt,
		"data", string(evt.Data))
	return nil
}

func encodeEvent(evt shared.Event) ([]byte, error) {
	value, err := json.Marshal(evt)
	if err != nil {
		return nil, errs.Wrap(err, "marshal event")
	}
	return value, nil
}
