// Package kafka builds the franz-go client and bootstraps topics.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"willgate/internal/platform/config"
)

// NewProducer returns a client tuned for keyed, ordered audit records.
// Returns nil when no brokers are configured.
func NewProducer(cfg config.KafkaConfig) (*kgo.Client, error) {
	brokers := cfg.BrokerList()
	if len(brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(cfg.AuditTopic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// EnsureTopic creates the topic if it does not exist.
func EnsureTopic(ctx context.Context, client *kgo.Client, cfg config.KafkaConfig, logger *slog.Logger) error {
	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopic(ctx, cfg.Partitions, cfg.ReplicationFactor, nil, cfg.AuditTopic)
	if err == nil {
		err = resp.Err
	}
	if errors.Is(err, kerr.TopicAlreadyExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create topic %s: %w", cfg.AuditTopic, err)
	}
	logger.InfoContext(ctx, "kafka topic created",
		"topic", cfg.AuditTopic,
		"partitions", cfg.Partitions,
	)
	return nil
}
