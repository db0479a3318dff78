package main

import (
	"context"
	"fmt"

	config "github.com/NordCoder/goodcookie/internal/config/api-gateway"
	"github.com/NordCoder/goodcookie/internal/obs"
	"go.uber.org/zap"
)

func initOTel(ctx context.Context, cfg *config.Config, logger *zap.Logger) (func(context.Context) error, error) {
	closer, err := obs.SetupOTel(ctx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		return nil, fmt.Errorf("otel init: %w", err)
	}
	logger.Info("otel initialized", zap.Bool("enabled", cfg.OTEL.Enable))
	return closer.Shutdown, nil
}
