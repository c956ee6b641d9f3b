// Package broker publishes domain events drained from the job outbox.
package broker

import (
	"context"
	"log/slog"
	"time"

	"stock-hold-service/internal/pkg/config"
	"stock-hold-service/internal/pkg/errs"
	"stock-hold-service/internal/usecase/shared"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const eventTypeHeader = "event_type"

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewWriter builds a kafka-go writer that waits for all in-sync replicas.
func NewWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
}

// KafkaPublisher writes one message per event keyed by aggregate id, so all
// events of one hold or order land on the same partition in order.
type KafkaPublisher struct {
	log      *slog.Logger
	producer Producer
	topic    string
}

func NewKafkaPublisher(log *slog.Logger, producer Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{log: log, producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt shared.Event) error {
	value, err := encodeEvent(evt)
	if err != nil {
		return err
	}

	headers := []kafka.Header{{Key: eventTypeHeader, Value: []byte(evt.Type)}}
	headers = injectTraceHeaders(ctx, headers)

	msg := kafka.Message{
		Topic:   p.topic,
		Key:     []byte(evt.AggregateID.String()),
		Value:   value,
		Headers: headers,
	}
	if err := p.producer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("event publish failed", "event_id", evt.ID, "type", evt.Type, "error", err)
		return errs.Wrap(err, "write kafka message")
	}
	p.log.Debug("event published", "event_id", evt.ID, "type", evt.Type)
	return nil
}

func injectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return headers
}

// ExtractTraceContext is the consumer-side counterpart of the injected headers.
func ExtractTraceContext(ctx context.Context, headers []kafka.Header) context.Context {
	carrier := propagation.MapCarrier{}
	for _, h := range headers {
		carrier[h.Key] = string(h.Value)
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
