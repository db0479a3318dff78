package api_gateway_config

import (
	"time"

	"github.com/NordCoder/goodcookie/internal/obs"
	"github.com/NordCoder/goodcookie/internal/outbox"
	pg "github.com/NordCoder/goodcookie/internal/repository/postgres"
	"github.com/NordCoder/goodcookie/internal/services/api-gateway/web"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type Server struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Auth is fixed at process start. JWTSecret must be non-empty.
type Auth struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTTL       time.Duration `mapstructure:"access_ttl"`
	RefreshTTL      time.Duration `mapstructure:"refresh_ttl"`
	ResetTTL        time.Duration `mapstructure:"reset_ttl"`
	HeaderName      string        `mapstructure:"header_name"`
	TokenPrefix     string        `mapstructure:"token_prefix"`
	BcryptCost      int           `mapstructure:"bcrypt_cost"`
	CallbackURLBase string        `mapstructure:"callback_url_base"`
}

// CORS lists the browser origins allowed to call /api. An empty list means
// the origin of auth.callback_url_base.
type CORS struct {
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	MaxAge         time.Duration `mapstructure:"max_age"`
}

type KafkaOut struct {
	Brokers    []string `mapstructure:"brokers"`
	ResetTopic string   `mapstructure:"reset_topic"`
}

type Config struct {
	App    App           `mapstructure:"app"`
	Server Server        `mapstructure:"server"`
	DB     pg.Config     `mapstructure:"db"`
	OTEL   OTEL          `mapstructure:"otel"`
	Log    Log           `mapstructure:"log"`
	Auth   Auth          `mapstructure:"auth"`
	CORS   CORS          `mapstructure:"cors"`
	Kafka  KafkaOut      `mapstructure:"kafka"`
	Outbox outbox.Config `mapstructure:"outbox"`
}

func (c *Config) LogConfig() obs.LogConfig {
	return obs.LogConfig{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		App:    c.App.Name,
		Env:    c.App.Env,
		Ver:    c.App.Version,
	}
}

func (c *Config) Validate() error {
	switch {
	case c.Auth.JWTSecret == "":
		return ErrConfig("auth.jwt_secret is required")
	case c.Auth.AccessTTL <= 0:
		return ErrConfig("auth.access_ttl must be positive")
	case c.Auth.RefreshTTL < 0:
		return ErrConfig("auth.refresh_ttl must not be negative")
	case c.Auth.ResetTTL <= 0:
		return ErrConfig("auth.reset_ttl must be positive")
	case c.Auth.HeaderName == "":
		return ErrConfig("auth.header_name is required")
	case c.DB.DSN == "":
		return ErrConfig("db.dsn is required")
	case len(c.Kafka.Brokers) == 0:
		return ErrConfig("kafka.brokers is required")
	}
	return nil
}

// CORSConfig resolves the allowed origins for the web layer.
func (c *Config) CORSConfig() web.CORSConfig {
	origins := c.CORS.AllowedOrigins
	if len(origins) == 0 {
		if o := web.OriginOf(c.Auth.CallbackURLBase); o != "" {
			origins = []string{o}
		}
	}
	return web.CORSConfig{AllowedOrigins: origins, MaxAge: c.CORS.MaxAge}
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }
