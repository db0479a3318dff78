package kafka

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/NordCoder/goodcookie/internal/obs/retry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Handler processes one record. A non-nil error leaves the offset uncommitted.
type Handler func(ctx context.Context, key, value []byte) error

var consumed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "kafka_consumed_total",
	Help: "Records consumed by topic and handler result.",
}, []string{"topic", "result"})

// fetchBackoff paces FetchMessage retries after broker errors.
var fetchBackoff = retry.ExpoJitter{Base: 200 * time.Millisecond, Max: 5 * time.Second, Jitter: 0.2}

type ConsumerConfig struct {
	Brokers       []string
	GroupID       string
	Topic         string
	FromBeginning bool
	Logger        *zap.Logger
}

type Consumer struct {
	reader *kafka.Reader
	topic  string
	group  string
	log    *zap.Logger
}

func NewConsumer(cfg *ConsumerConfig) *Consumer {
	start := kafka.LastOffset
	if cfg.FromBeginning {
		start = kafka.FirstOffset
	}
	c := &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:               cfg.Brokers,
			GroupID:               cfg.GroupID,
			Topic:                 cfg.Topic,
			StartOffset:           start,
			WatchPartitionChanges: true,
			MinBytes:              1,
			MaxBytes:              1 << 20,
			MaxWait:               time.Second,
			SessionTimeout:        10 * time.Second,
			RebalanceTimeout:      15 * time.Second,
			HeartbeatInterval:     3 * time.Second,
		}),
		topic: cfg.Topic,
		group: cfg.GroupID,
	}
	return c.WithLogger(cfg.Logger)
}

// WithLogger returns a copy logging through l; nil falls back to the global logger.
func (c *Consumer) WithLogger(l *zap.Logger) *Consumer {
	if l == nil {
		l = zap.L()
	}
	cp := *c
	cp.log = l.With(
		zap.String("component", "kafka.consumer"),
		zap.String("topic", c.topic),
		zap.String("group", c.group),
	)
	return &cp
}

// Consume blocks until ctx is done, handing each record to h and committing
// it only when h succeeds.
func (c *Consumer) Consume(ctx context.Context, h Handler) error {
	c.log.Info("consumer started")
	defer c.log.Info("consumer stopped")

	failures := 0
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			wait := fetchBackoff.Next(failures)
			failures++
			lvl := zap.WarnLevel
			if errors.Is(err, io.EOF) {
				lvl = zap.DebugLevel
			}
			c.log.Log(lvl, "fetch failed", zap.Error(err), zap.Duration("backoff", wait))
			if !sleep(ctx, wait) {
				return ctx.Err()
			}
			continue
		}
		failures = 0

		if err := c.handle(ctx, h, msg); err != nil {
			consumed.WithLabelValues(c.topic, "error").Inc()
			c.log.Error("handler error",
				zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset), zap.Error(err))
			continue
		}
		consumed.WithLabelValues(c.topic, "ok").Inc()

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warn("commit failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

// handle runs h under a consumer span that continues the producer's trace.
func (c *Consumer) handle(ctx context.Context, h Handler, msg kafka.Message) error {
	parent := otel.GetTextMapPropagator().Extract(ctx, headerReader(msg.Headers))
	msgCtx, span := otel.Tracer("kafka.consumer").Start(parent, "kafka.consume "+msg.Topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingDestinationName(msg.Topic),
			attribute.String("messaging.kafka.consumer.group", c.group),
			attribute.Int64("messaging.kafka.message.offset", msg.Offset),
		),
	)
	defer span.End()

	err := h(msgCtx, msg.Key, msg.Value)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (c *Consumer) Close() error { return c.reader.Close() }

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
