package main

import (
	"os"

	"github.com/NordCoder/goodcookie/internal/obs"
	"github.com/NordCoder/goodcookie/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

func main() {
	l, err := obs.NewLogger(obs.LogConfig{Level: "info", App: "goodcookie/migrator"})
	if err != nil {
		panic(err)
	}
	defer func() { _ = l.Sync() }()

	dbURL := os.Getenv("DB_DSN")
	if dbURL == "" {
		l.Fatal("DB_DSN is empty")
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		l.Fatal("set dialect", zap.Error(err))
	}
	db, err := goose.OpenDBWithDriver("pgx", dbURL)
	if err != nil {
		l.Fatal("open db", zap.Error(err))
	}
	defer db.Close()

	if err := goose.Up(db, "."); err != nil {
		l.Fatal("migrate up", zap.Error(err))
	}
	v, err := goose.GetDBVersion(db)
	if err != nil {
		l.Fatal("db version", zap.Error(err))
	}
	l.Info("migrations: up OK", zap.Int64("version", v))
}
