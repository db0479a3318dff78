package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type TopicSpec struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	MaxWait           time.Duration
}

func (s TopicSpec) withDefaults() TopicSpec {
	s.NumPartitions = max(s.NumPartitions, 1)
	s.ReplicationFactor = max(s.ReplicationFactor, 1)
	if s.MaxWait <= 0 {
		s.MaxWait = 5 * time.Second
	}
	return s
}

var (
	ErrNoBrokers     = errors.New("kafka: no brokers configured")
	ErrTopicNotReady = errors.New("kafka topic not ready")
)

const leaderPoll = 200 * time.Millisecond

// EnsureTopic creates spec.Name through the cluster controller and waits
// until every partition has a leader. An existing topic is not an error.
func EnsureTopic(ctx context.Context, brokers []string, spec TopicSpec, log *zap.Logger) error {
	if len(brokers) == 0 {
		return ErrNoBrokers
	}
	if log == nil {
		log = zap.NewNop()
	}
	spec = spec.withDefaults()
	log = log.With(zap.String("topic", spec.Name))

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("kafka dial %s: %w", brokers[0], err)
	}
	defer conn.Close()

	if err := createTopic(ctx, conn, spec); err != nil {
		log.Warn("create topic", zap.Error(err))
		return err
	}
	if err := awaitLeaders(ctx, conn, spec); err != nil {
		log.Warn("topic not ready", zap.Error(err))
		return err
	}
	log.Info("topic ready")
	return nil
}

// createTopic must talk to the controller; any broker can tell us which one it is.
func createTopic(ctx context.Context, conn *kafka.Conn, spec TopicSpec) error {
	ctrl, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("kafka controller lookup: %w", err)
	}
	cc, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(ctrl.Host, strconv.Itoa(ctrl.Port)))
	if err != nil {
		return fmt.Errorf("kafka dial controller: %w", err)
	}
	defer cc.Close()

	err = cc.CreateTopics(kafka.TopicConfig{
		Topic:             spec.Name,
		NumPartitions:     spec.NumPartitions,
		ReplicationFactor: spec.ReplicationFactor,
	})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("kafka create %s: %w", spec.Name, err)
	}
	return nil
}

func awaitLeaders(ctx context.Context, conn *kafka.Conn, spec TopicSpec) error {
	ctx, cancel := context.WithTimeout(ctx, spec.MaxWait)
	defer cancel()

	for {
		if ps, err := conn.ReadPartitions(spec.Name); err == nil && allHaveLeader(ps) {
			return nil
		}
		if !sleep(ctx, leaderPoll) {
			return fmt.Errorf("%w: %s", ErrTopicNotReady, spec.Name)
		}
	}
}

func allHaveLeader(ps []kafka.Partition) bool {
	if len(ps) == 0 {
		return false
	}
	for _, p := range ps {
		if p.Leader.ID == -1 {
			return false
		}
	}
	return true
}
