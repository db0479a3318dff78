package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	config "github.com/NordCoder/goodcookie/internal/config/api-gateway"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultConfigPath = "../config/api-gateway.yaml"

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

	logger, err := initLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("api-gateway stopped", zap.Error(err))
	}
	logger.Info("bye")
}

// run serves HTTP and drains the outbox until ctx is cancelled or the
// listener fails, then shuts both down.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("starting api-gateway", zap.String("env", cfg.App.Env), zap.String("ver", cfg.App.Version))

	otelShutdown, err := initOTel(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	db, err := initDB(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	notifier, runner, closeProducer := initOutbox(ctx, cfg, logger, db)
	defer func() { _ = closeProducer() }()

	srv, err := buildHTTPServer(cfg, logger, db, notifier)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		runner.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("http listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
