package workers

import (
	"context"
	"log/slog"
	"time"

	"warden/contexts/trust-safety/reputation-service/ports"
)

type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	Topic     string
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}
	topic := r.Topic
	if topic == "" {
		topic = "trust-safety.reputation"
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("outbox list pending failed",
			"event", "reputation_outbox_list_failed",
			"module", "trust-safety/reputation-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, message := range pending {
		if err := r.Publisher.Publish(ctx, topic, message.PartitionKey, message.Payload); err != nil {
			logger.Error("outbox publish failed",
				"event", "reputation_outbox_publish_failed",
				"module", "trust-safety/reputation-service",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"event_type", message.EventType,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, message.OutboxID, now); err != nil {
			logger.Error("outbox mark published failed",
				"event", "reputation_outbox_mark_failed",
				"module", "trust-safety/reputation-service",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	if len(pending) > 0 {
		logger.Info("outbox relay cycle completed",
			"event", "reputation_outbox_relay_completed",
			"module", "trust-safety/reputation-service",
			"layer", "worker",
			"sent_count", len(pending),
		)
	}
	return nil
}
