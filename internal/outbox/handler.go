package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NordCoder/goodcookie/internal/domain/notification"
	"github.com/NordCoder/goodcookie/internal/domain/outbox"
	"github.com/NordCoder/goodcookie/internal/obs/retry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ResetPublisher delivers a reset request to the broker.
type ResetPublisher interface {
	PublishPasswordReset(ctx context.Context, ev notification.PasswordReset) error
}

var (
	handlerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_handler_latency_seconds",
		Help:    "Time spent delivering one outbox message, retries included.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	handlerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_handler_errors_total",
		Help: "Outbox messages that failed after all retries.",
	}, []string{"kind"})
)

// MakeGlobalOutboxHandler builds the per-kind delivery table. Every handler
// retries under pol and is traced and timed.
func MakeGlobalOutboxHandler(pub ResetPublisher, pol retry.Policy) outbox.GlobalHandler {
	table := map[outbox.Kind]outbox.KindHandler{
		outbox.KindPasswordReset: decodeJSON(pub.PublishPasswordReset),
	}
	for kind, h := range table {
		table[kind] = instrument(kind, h, pol)
	}
	return func(kind outbox.Kind) (outbox.KindHandler, error) {
		h, ok := table[kind]
		if !ok {
			return nil, fmt.Errorf("unsupported outbox kind: %d", kind)
		}
		return h, nil
	}
}

func decodeJSON[M any](deliver func(context.Context, M) error) outbox.KindHandler {
	return func(ctx context.Context, data []byte) error {
		var m M
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("decode %T: %w", m, err)
		}
		return deliver(ctx, m)
	}
}

func instrument(kind outbox.Kind, h outbox.KindHandler, pol retry.Policy) outbox.KindHandler {
	label := kind.String()
	if pol.Name == "" {
		pol.Name = "outbox_" + label
	}
	tr := otel.Tracer("outbox.handler")
	return func(ctx context.Context, data []byte) error {
		ctx, span := tr.Start(ctx, "outbox.handle", trace.WithAttributes(attribute.String("outbox.kind", label)))
		defer span.End()

		start := time.Now()
		err := retry.Do(ctx, func() error { return h(ctx, data) }, pol)
		handlerLatency.WithLabelValues(label).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			handlerFailures.WithLabelValues(label).Inc()
		}
		return err
	}
}
