package api_gateway_config

import (
	"github.com/NordCoder/goodcookie/internal/config"
)

var defaults = config.Defaults{
	"app.name":                "goodcookie/api-gateway",
	"app.env":                 "dev",
	"server.http_addr":        ":8080",
	"server.read_timeout":     "5s",
	"server.write_timeout":    "5s",
	"server.idle_timeout":     "60s",
	"server.graceful_timeout": "15s",

	"auth.jwt_secret":        "",
	"auth.access_ttl":        "15m",
	"auth.refresh_ttl":       "0s", // never expires
	"auth.reset_ttl":         "30m",
	"auth.header_name":       "Authorization",
	"auth.token_prefix":      "Bearer",
	"auth.bcrypt_cost":       10,
	"auth.callback_url_base": "http://localhost:3000/resetPassword",

	"cors.allowed_origins": []string{},
	"cors.max_age":         "1h",

	"kafka.brokers":     []string{"kafka:9092"},
	"kafka.reset_topic": "goodcookie.password-reset",

	"outbox.workers":         1,
	"outbox.batch_size":      50,
	"outbox.wait_time":       "1s",
	"outbox.in_progress_ttl": "1m",
}

func Load(path string) (*Config, error) {
	v, err := config.Read(path, defaults.Merge(config.Postgres(20, 5), config.Observability("api-gateway")))
	if err != nil {
		return nil, err
	}
	cfg, err := config.Decode[Config](v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
