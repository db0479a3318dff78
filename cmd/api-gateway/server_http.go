package main

import (
	"net/http"
	"time"

	tokens "github.com/NordCoder/goodcookie/internal/auth"
	config "github.com/NordCoder/goodcookie/internal/config/api-gateway"
	"github.com/NordCoder/goodcookie/internal/domain/notification"
	"github.com/NordCoder/goodcookie/internal/obs"
	pg "github.com/NordCoder/goodcookie/internal/repository/postgres"
	"github.com/NordCoder/goodcookie/internal/services/api-gateway/auth"
	"github.com/NordCoder/goodcookie/internal/services/api-gateway/web"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func buildHTTPServer(cfg *config.Config, logger *zap.Logger, db *pg.DB, notifier notification.ResetNotifier) (*http.Server, error) {
	codec, err := tokens.NewCodec(tokens.Config{
		Secret:    []byte(cfg.Auth.JWTSecret),
		AccessTTL: cfg.Auth.AccessTTL,
	})
	if err != nil {
		return nil, err
	}

	users := pg.NewUserRepo(db)
	authUC, err := auth.NewUsecase(
		users,
		pg.NewRefreshTokenRepo(db),
		pg.NewResetTokenRepo(db),
		notifier,
		pg.NewTransactor(db, logger),
		codec,
		auth.Config{
			BcryptCost:      cfg.Auth.BcryptCost,
			RefreshTTL:      cfg.Auth.RefreshTTL,
			ResetTTL:        cfg.Auth.ResetTTL,
			CallbackURLBase: cfg.Auth.CallbackURLBase,
		},
	)
	if err != nil {
		return nil, err
	}
	authn := auth.NewAuthenticator(codec, users, auth.AuthenticatorOpts{
		Logger:     logger,
		HeaderName: cfg.Auth.HeaderName,
		Prefix:     cfg.Auth.TokenPrefix,
	})

	api := http.NewServeMux()
	auth.NewServer(logger, authUC).Register(api)

	root := http.NewServeMux()
	root.Handle("/", otelhttp.NewHandler(web.CORS(cfg.CORSConfig(), authn.Middleware(obs.HTTPMetrics(api))), "api"))
	root.Handle("/metrics", obs.MetricsHandler())
	root.Handle("/healthz", obs.HealthHandler(db.Ping))

	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           root,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}, nil
}
