package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var contentTypeJSON = kafka.Header{Key: "content-type", Value: []byte("application/json")}

// Producer writes JSON records to a single topic, keyed so that one user's
// events stay on one partition.
type Producer struct {
	w     *kafka.Writer
	topic string
	log   *zap.Logger
}

func NewProducer(brokers []string, topic string) *Producer {
	p := &Producer{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			BatchTimeout:           10 * time.Millisecond,
			WriteTimeout:           10 * time.Second,
			AllowAutoTopicCreation: true,
		},
		topic: topic,
	}
	return p.WithLogger(nil)
}

// WithLogger returns a copy logging through l; nil falls back to the global logger.
func (p *Producer) WithLogger(l *zap.Logger) *Producer {
	if l == nil {
		l = zap.L()
	}
	cp := *p
	cp.log = l.With(zap.String("component", "kafka.producer"), zap.String("topic", p.topic))
	return &cp
}

// PublishJSON marshals v and writes it with the current trace context in the
// record headers.
func (p *Producer) PublishJSON(ctx context.Context, key []byte, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kafka: encode %T: %w", v, err)
	}

	ctx, span := otel.Tracer("kafka.producer").Start(ctx, "kafka.produce "+p.topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingDestinationName(p.topic),
			semconv.MessagingOperationPublish,
		),
	)
	defer span.End()

	hdrs := headerWriter{}
	otel.GetTextMapPropagator().Inject(ctx, hdrs)

	if err := p.w.WriteMessages(ctx, kafka.Message{
		Key:     key,
		Value:   value,
		Headers: append(hdrs.ToKafka(), contentTypeJSON),
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		p.log.Error("kafka write failed", zap.Error(err))
		return fmt.Errorf("kafka: write %s: %w", p.topic, err)
	}
	p.log.Debug("message published", zap.Int("bytes", len(value)))
	return nil
}

func (p *Producer) Close() error { return p.w.Close() }
