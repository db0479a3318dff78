package main

import (
	"context"

	config "github.com/NordCoder/goodcookie/internal/config/api-gateway"
	"github.com/NordCoder/goodcookie/internal/obs/retry"
	"github.com/NordCoder/goodcookie/internal/outbox"
	kafkax "github.com/NordCoder/goodcookie/internal/repository/kafka"
	pg "github.com/NordCoder/goodcookie/internal/repository/postgres"
	"go.uber.org/zap"
)

// initOutbox wires the reset-notification path: the use case enqueues into
// Postgres, the runner publishes to Kafka.
func initOutbox(ctx context.Context, cfg *config.Config, logger *zap.Logger, db *pg.DB) (*outbox.Notifier, *outbox.Runner, func() error) {
	repo := pg.NewOutboxRepo(db)

	producer := kafkax.BootstrapProducer(ctx, cfg.Kafka.Brokers, cfg.Kafka.ResetTopic, logger)
	events := kafkax.NewResetEventsKafka(producer)

	dispatch := outbox.MakeGlobalOutboxHandler(events, retry.DefaultKafkaPolicy(logger))
	runner := outbox.NewOutboxRunner(logger.Named("outbox"), repo, dispatch, cfg.Outbox)

	return outbox.NewNotifier(repo), runner, producer.Close
}
