package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"warden/contexts/trust-safety/appeal-service/domain/entities"
	"warden/contexts/trust-safety/appeal-service/ports"
)

// AppealExpiryJob moves appeals that sat unresolved past the review TTL
// into the expired state so they stop blocking fresh submissions.
type AppealExpiryJob struct {
	Repository ports.Repository
	Outbox     ports.OutboxRepository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	ReviewTTL  time.Duration
	BatchSize  int
	Logger     *slog.Logger
}

func (w AppealExpiryJob) RunOnce(ctx context.Context) error {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := w.ReviewTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	limit := w.BatchSize
	if limit <= 0 {
		limit = 100
	}
	now := time.Now().UTC()
	if w.Clock != nil {
		now = w.Clock.Now().UTC()
	}

	stale, err := w.Repository.ListStaleAppeals(ctx, now.Add(-ttl), limit)
	if err != nil {
		logger.Error("stale appeals lookup failed",
			"event", "appeal_expiry_lookup_failed",
			"module", "trust-safety/appeal-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	expired := 0
	for _, appeal := range stale {
		if appeal.Status.Terminal() {
			continue
		}
		appeal.Status = entities.StatusExpired
		appeal.UpdatedAt = now
		if err := w.Repository.UpdateAppeal(ctx, appeal); err != nil {
			return err
		}
		w.appendEvent(ctx, appeal, now)
		expired++
	}

	if expired > 0 {
		logger.Info("appeal expiry sweep completed",
			"event", "appeal_expiry_completed",
			"module", "trust-safety/appeal-service",
			"layer", "worker",
			"expired_count", expired,
		)
	}
	return nil
}

func (w AppealExpiryJob) appendEvent(ctx context.Context, appeal entities.Appeal, now time.Time) {
	if w.Outbox == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"appeal_id":    appeal.ID,
		"user_id":      appeal.UserID,
		"violation_id": appeal.ViolationID,
		"status":       string(appeal.Status),
	})
	if err != nil {
		return
	}
	envelope := ports.EventEnvelope{
		EventID:          w.IDGen.NewID(),
		EventType:        "appeal.expired",
		OccurredAt:       now,
		SourceService:    "appeal-service",
		SchemaVersion:    1,
		PartitionKeyPath: "user_id",
		PartitionKey:     appeal.UserID,
		Data:             payload,
	}
	if err := w.Outbox.AppendOutbox(ctx, envelope); err != nil {
		logger := w.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("outbox append failed",
			"event", "appeal_outbox_append_failed",
			"module", "trust-safety/appeal-service",
			"layer", "worker",
			"event_type", "appeal.expired",
			"error", err.Error(),
		)
	}
}
