package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher is the broker surface every outbox relay depends on. Keys are
// partition keys, payloads are marshaled event envelopes.
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, payload []byte) error
}

// KafkaPublisher writes outbox envelopes to Kafka. Partitioning hashes the
// message key so all events for one entity land on one partition.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewKafkaPublisher(brokers []string, logger *slog.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
		logger: logger,
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	if p.logger != nil {
		p.logger.Info("event published",
			"event", "kafka_publish",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"key", key,
		)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NewPublisher picks the broker adapter for the current environment: a real
// Kafka writer when brokers are configured, the in-process bus otherwise.
func NewPublisher(brokers []string, logger *slog.Logger) (Publisher, error) {
	if len(brokers) == 0 {
		if logger != nil {
			logger.Warn("kafka brokers not configured, using in-process bus",
				"event", "kafka_brokers_missing",
				"module", "internal/platform/messaging",
				"layer", "platform",
			)
		}
		return NewBus(logger), nil
	}
	return NewKafkaPublisher(brokers, logger)
}
