package main

import (
	config "github.com/NordCoder/goodcookie/internal/config/api-gateway"
	"github.com/NordCoder/goodcookie/internal/obs"
	"go.uber.org/zap"
)

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	l, err := obs.NewLogger(cfg.LogConfig())
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(l)
	return l, nil
}
