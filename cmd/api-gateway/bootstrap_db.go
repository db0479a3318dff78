package main

import (
	"context"
	"fmt"

	config "github.com/NordCoder/goodcookie/internal/config/api-gateway"
	pg "github.com/NordCoder/goodcookie/internal/repository/postgres"
	"go.uber.org/zap"
)

func initDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pg.DB, error) {
	db, err := pg.New(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	logger.Info("db connected", zap.Int32("max_conns", cfg.DB.MaxConns))
	return db, nil
}
