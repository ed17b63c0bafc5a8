package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"warden/contexts/trust-safety/report-service/domain/entities"
	"warden/contexts/trust-safety/report-service/domain/services"
	"warden/contexts/trust-safety/report-service/ports"
)

// EscalationSweep re-checks recently reported targets in the background so
// reports that accumulated pressure between submissions still climb the
// priority ladder without waiting for the next intake.
type EscalationSweep struct {
	Repository ports.Repository
	Outbox     ports.OutboxRepository
	Engine     services.PriorityEngine
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Window     time.Duration
	BatchSize  int
	Logger     *slog.Logger
}

func (w EscalationSweep) RunOnce(ctx context.Context) error {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	window := w.Window
	if window <= 0 {
		window = 24 * time.Hour
	}
	limit := w.BatchSize
	if limit <= 0 {
		limit = 100
	}
	now := time.Now().UTC()
	if w.Clock != nil {
		now = w.Clock.Now().UTC()
	}

	targets, err := w.Repository.ListRecentTargets(ctx, now.Add(-window), limit)
	if err != nil {
		logger.Error("recent targets lookup failed",
			"event", "report_sweep_targets_failed",
			"module", "trust-safety/report-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	escalated := 0
	for _, targetID := range targets {
		reports, err := w.Repository.ListReportsByTarget(ctx, targetID)
		if err != nil {
			return err
		}
		total := len(reports)
		for _, report := range reports {
			if report.Status.Terminal() {
				continue
			}
			// Nothing above critical: re-sweeping a critical report would
			// only rewrite the row and emit a duplicate event every pass.
			if report.Priority == entities.PriorityCritical {
				continue
			}
			if !w.Engine.ShouldEscalate(report.Priority, total) {
				continue
			}
			report.Priority = services.EscalatePriority(report.Priority)
			report.EscalatedCount++
			report.UpdatedAt = now
			if err := w.Repository.UpdateReport(ctx, report); err != nil {
				return err
			}
			w.appendEvent(ctx, report, now)
			escalated++
		}
	}

	if escalated > 0 {
		logger.Info("escalation sweep completed",
			"event", "report_sweep_completed",
			"module", "trust-safety/report-service",
			"layer", "worker",
			"target_count", len(targets),
			"escalated_count", escalated,
		)
	}
	return nil
}

func (w EscalationSweep) appendEvent(ctx context.Context, report entities.Report, now time.Time) {
	if w.Outbox == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"report_id": report.ID,
		"target_id": report.TargetID,
		"category":  string(report.Category),
		"priority":  string(report.Priority),
		"status":    string(report.Status),
	})
	if err != nil {
		return
	}
	envelope := ports.EventEnvelope{
		EventID:          w.IDGen.NewID(),
		EventType:        "report.escalated",
		OccurredAt:       now,
		SourceService:    "report-service",
		SchemaVersion:    1,
		PartitionKeyPath: "target_id",
		PartitionKey:     report.TargetID,
		Data:             payload,
	}
	if err := w.Outbox.AppendOutbox(ctx, envelope); err != nil {
		logger := w.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("outbox append failed",
			"event", "report_outbox_append_failed",
			"module", "trust-safety/report-service",
			"layer", "worker",
			"event_type", "report.escalated",
			"error", err.Error(),
		)
	}
}
