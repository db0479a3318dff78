package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

const pingTimeout = 5 * time.Second

type Config struct {
	DSN               string        `mapstructure:"dsn"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	QueryTimeout      time.Duration `mapstructure:"query_timeout"`
}

// apply overrides the DSN-derived pool settings with every non-zero field.
func (c Config) apply(pc *pgxpool.Config) {
	setPos(&pc.MaxConns, c.MaxConns)
	setPos(&pc.MinConns, c.MinConns)
	setPos(&pc.MaxConnLifetime, c.MaxConnLifetime)
	setPos(&pc.MaxConnIdleTime, c.MaxConnIdleTime)
	setPos(&pc.HealthCheckPeriod, c.HealthCheckPeriod)
}

func setPos[T int32 | time.Duration](dst *T, v T) {
	if v > 0 {
		*dst = v
	}
}

// DB is the pgx pool shared by every repository in this package.
type DB struct {
	Pool         *pgxpool.Pool
	QueryTimeout time.Duration
}

func New(ctx context.Context, cfg Config) (*DB, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	cfg.apply(pcfg)

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: open pool: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	registerPoolStats(pool)
	return &DB{Pool: pool, QueryTimeout: cfg.QueryTimeout}, nil
}

// registerPoolStats exposes pool gauges; a second pool in the same process
// keeps the first registration.
func registerPoolStats(pool *pgxpool.Pool) {
	gauges := map[string]func(*pgxpool.Stat) float64{
		"db_pool_total_conns":    func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) },
		"db_pool_idle_conns":     func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) },
		"db_pool_acquired_conns": func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) },
	}
	for name, f := range gauges {
		g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: "pgx pool " + name[len("db_pool_"):] + "."},
			func() float64 { return f(pool.Stat()) })
		_ = prometheus.Register(g)
	}
}

func (db *DB) Close() { db.Pool.Close() }

func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

// withTimeout bounds a single statement by QueryTimeout when one is set.
func (db *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.QueryTimeout > 0 {
		return context.WithTimeout(ctx, db.QueryTimeout)
	}
	return ctx, func() {}
}
