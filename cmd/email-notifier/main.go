package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/NordCoder/goodcookie/internal/config/email-notifier"
	"github.com/NordCoder/goodcookie/internal/obs"
	"github.com/NordCoder/goodcookie/internal/repository/kafka"
	pg "github.com/NordCoder/goodcookie/internal/repository/postgres"
	notifier "github.com/NordCoder/goodcookie/internal/services/email-notifier"
	"go.uber.org/zap"
)

const defaultConfigPath = "../config/email-notifier.yaml"

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal(err)
	}

	l, err := obs.NewLogger(cfg.LogConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()
	zap.ReplaceGlobals(l)

	if err := run(ctx, cfg, l); err != nil {
		l.Fatal("email-notifier stopped", zap.Error(err))
	}
	l.Info("bye")
}

// run consumes password-reset events until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, l *zap.Logger) error {
	l.Info("starting email-notifier",
		zap.String("topic", cfg.In.Topic),
		zap.String("group_id", cfg.In.GroupID),
		zap.String("smtp_addr", cfg.SMTP.Addr),
		zap.String("metrics_addr", cfg.Server.MetricsAddr),
	)

	tracing, err := obs.SetupOTel(ctx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() { _ = tracing.Shutdown(context.Background()) }()

	db, err := pg.New(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer db.Close()

	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, db.Ping, l)
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = ms.Shutdown(sctx)
	}()

	cons := kafka.BootstrapConsumer(ctx, cfg.In.AsConsumerConfig(), l)
	defer func() { _ = cons.Close() }()

	ctrl := &notifier.Controller{
		Log: l,
		Sub: cons,
		UC: &notifier.Handler{
			Store: pg.NewNotificationRepo(db),
			Out:   notifier.New(cfg.SMTP).WithLogger(l),
			Clock: systemClock{},
			Log:   l,
		},
	}
	if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
