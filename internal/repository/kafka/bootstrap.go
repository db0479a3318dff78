package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"
)

func singleNodeTopic(name string) TopicSpec {
	return TopicSpec{Name: name, NumPartitions: 1, ReplicationFactor: 1, MaxWait: 5 * time.Second}
}

// BootstrapConsumer makes a best-effort attempt to create the topic; a broker
// that is still starting is not fatal because the reader keeps retrying.
func BootstrapConsumer(ctx context.Context, cfg *ConsumerConfig, logger *zap.Logger) *Consumer {
	if err := EnsureTopic(ctx, cfg.Brokers, singleNodeTopic(cfg.Topic), logger); err != nil && logger != nil {
		logger.Warn("ensure topic", zap.String("topic", cfg.Topic), zap.Error(err))
	}
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	return NewConsumer(cfg)
}

// BootstrapProducer makes sure the topic exists before the first write.
func BootstrapProducer(ctx context.Context, brokers []string, topic string, logger *zap.Logger) *Producer {
	if err := EnsureTopic(ctx, brokers, singleNodeTopic(topic), logger); err != nil && logger != nil {
		logger.Warn("ensure topic", zap.String("topic", topic), zap.Error(err))
	}
	return NewProducer(brokers, topic).WithLogger(logger)
}
