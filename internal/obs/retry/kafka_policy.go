package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

type temporary interface{ Temporary() bool }

// BrokerRetryable rejects cancellation and errors that report themselves as
// permanent; everything else is worth another attempt.
func BrokerRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var t temporary
	if errors.As(err, &t) {
		return t.Temporary()
	}
	return true
}

// DefaultKafkaPolicy is used by the outbox when publishing to the broker.
func DefaultKafkaPolicy(log *zap.Logger) Policy {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("retry", "kafka_publish"))
	return Policy{
		Name:      "kafka_publish",
		Attempts:  6,
		Backoff:   ExpoJitter{Base: 200 * time.Millisecond, Max: 30 * time.Second, Jitter: 0.2},
		Retryable: BrokerRetryable,
		OnAttempt: func(i int, err error) {
			log.Warn("publish attempt failed", zap.Int("attempt", i+1), zap.Error(err))
		},
		OnExhaust: func(err error) {
			if !errors.Is(err, context.Canceled) {
				log.Error("publish gave up", zap.Error(err))
			}
		},
	}
}
