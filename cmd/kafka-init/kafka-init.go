package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/NordCoder/goodcookie/internal/obs"
	"github.com/NordCoder/goodcookie/internal/obs/retry"
	kafkax "github.com/NordCoder/goodcookie/internal/repository/kafka"
	"go.uber.org/zap"
)

func main() {
	l, err := obs.NewLogger(obs.LogConfig{Level: "info", App: "goodcookie/kafka-init"})
	if err != nil {
		panic(err)
	}
	defer func() { _ = l.Sync() }()

	brokers := strings.Split(env("KAFKA_BROKER", "kafka:9092"), ",")
	topics := strings.Split(env("KAFKA_TOPICS", kafkax.DefaultResetTopic), ",")
	partitions := envInt("KAFKA_PARTITIONS", 1)
	rf := envInt("KAFKA_RF", 1)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pol := retry.Policy{
		Name:     "kafka_init",
		Attempts: 8,
		Backoff:  retry.ExpoJitter{Base: 200 * time.Millisecond, Max: 5 * time.Second, Jitter: 0.2},
		OnAttempt: func(attempt int, err error) {
			l.Warn("kafka not ready", zap.Int("attempt", attempt), zap.Error(err))
		},
	}

	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		spec := kafkax.TopicSpec{Name: t, NumPartitions: partitions, ReplicationFactor: rf, MaxWait: 30 * time.Second}
		if err := retry.Do(ctx, func() error { return kafkax.EnsureTopic(ctx, brokers, spec, l) }, pol); err != nil {
			l.Fatal("ensure topic", zap.String("topic", t), zap.Error(err))
		}
	}
	l.Info("kafka-init ok", zap.Strings("topics", topics))
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, _ := strconv.Atoi(v); n > 0 {
			return n
		}
	}
	return def
}
