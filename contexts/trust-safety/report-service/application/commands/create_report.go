package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "warden/contexts/trust-safety/report-service/application"
	"warden/contexts/trust-safety/report-service/domain/entities"
	domainerrors "warden/contexts/trust-safety/report-service/domain/errors"
	"warden/contexts/trust-safety/report-service/domain/services"
	"warden/contexts/trust-safety/report-service/ports"
)

const (
	additionalReportMarker = "[Additional Report]"
	sourceService          = "report-service"
)

type CreateReportCommand struct {
	TargetType     entities.TargetType
	TargetID       string
	TargetAuthorID string
	ReporterID     string
	Category       string
	Reason         string
	Evidence       string
}

type CreateReportUseCase struct {
	Repository  ports.Repository
	Reputations ports.ReputationReader
	Outbox      ports.OutboxRepository
	Engine      services.PriorityEngine
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

// Execute runs report intake: validation, the banned-reporter gate, dedup
// against existing reports, and the automatic-escalation sweep over the
// target. A repeat (reporter, target, category) submission merges into the
// existing report instead of inserting a duplicate row.
func (uc CreateReportUseCase) Execute(ctx context.Context, cmd CreateReportCommand) (entities.Report, error) {
	logger := application.ResolveLogger(uc.Logger)

	cmd.TargetID = strings.TrimSpace(cmd.TargetID)
	cmd.TargetAuthorID = strings.TrimSpace(cmd.TargetAuthorID)
	cmd.ReporterID = strings.TrimSpace(cmd.ReporterID)
	if cmd.TargetID == "" || cmd.ReporterID == "" || strings.TrimSpace(cmd.Reason) == "" {
		return entities.Report{}, domainerrors.ErrInvalidRequest
	}
	if cmd.TargetType != entities.TargetWhisper && cmd.TargetType != entities.TargetComment {
		return entities.Report{}, domainerrors.ErrInvalidRequest
	}
	category, ok := entities.ParseCategory(cmd.Category)
	if !ok {
		return entities.Report{}, domainerrors.ErrInvalidRequest
	}
	if cmd.TargetAuthorID != "" && cmd.ReporterID == cmd.TargetAuthorID {
		return entities.Report{}, domainerrors.ErrSelfReport
	}

	// The reputation lookup itself degrades to a neutral snapshot, but a
	// reporter known to be banned is a hard permission failure before any
	// store write.
	snapshot := uc.snapshot(ctx, cmd.ReporterID)
	if snapshot != nil && snapshot.Level == "banned" {
		return entities.Report{}, domainerrors.ErrReporterBanned
	}

	now := uc.Clock.Now().UTC()
	existing, err := uc.Repository.FindActiveReport(ctx, cmd.TargetID, cmd.ReporterID, category)
	if err != nil {
		return entities.Report{}, uc.wrap(cmd.TargetType, err)
	}

	var report entities.Report
	if existing != nil {
		existing.Reason = fmt.Sprintf("%s\n%s %s", existing.Reason, additionalReportMarker, strings.TrimSpace(cmd.Reason))
		existing.Priority = services.EscalatePriority(existing.Priority)
		existing.ReportCount++
		existing.EscalatedCount++
		existing.UpdatedAt = now
		if err := uc.Repository.UpdateReport(ctx, *existing); err != nil {
			return entities.Report{}, uc.wrap(cmd.TargetType, err)
		}
		report = *existing
		logger.Info("duplicate report merged",
			"event", "report_merged",
			"module", "trust-safety/report-service",
			"layer", "application",
			"report_id", report.ID,
			"target_id", report.TargetID,
			"category", string(report.Category),
			"priority", string(report.Priority),
		)
	} else {
		level := ""
		if snapshot != nil {
			level = snapshot.Level
		}
		report = entities.Report{
			ID:               uc.IDGen.NewID(),
			TargetType:       cmd.TargetType,
			TargetID:         cmd.TargetID,
			TargetAuthorID:   cmd.TargetAuthorID,
			ReporterID:       cmd.ReporterID,
			ReporterLevel:    level,
			Category:         category,
			Priority:         uc.Engine.CalculatePriority(snapshot, category),
			Status:           entities.StatusPending,
			Reason:           strings.TrimSpace(cmd.Reason),
			Evidence:         strings.TrimSpace(cmd.Evidence),
			ReputationWeight: uc.Engine.CalculateReputationWeight(snapshot),
			ReportCount:      1,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := uc.Repository.CreateReport(ctx, report); err != nil {
			return entities.Report{}, uc.wrap(cmd.TargetType, err)
		}
		uc.appendEvent(ctx, "report.created", report, now)
		logger.Info("report created",
			"event", "report_created",
			"module", "trust-safety/report-service",
			"layer", "application",
			"report_id", report.ID,
			"target_id", report.TargetID,
			"category", string(report.Category),
			"priority", string(report.Priority),
			"reputation_weight", report.ReputationWeight,
		)
	}

	swept, err := uc.sweepTarget(ctx, cmd.TargetID, report.ID, now)
	if err != nil {
		return entities.Report{}, uc.wrap(cmd.TargetType, err)
	}
	if swept != nil {
		report = *swept
	}
	return report, nil
}

// sweepTarget re-evaluates every open report against the target under the
// accumulated report count and escalates the ones that cross their
// threshold. Returns the refreshed view of the triggering report when the
// sweep changed it.
func (uc CreateReportUseCase) sweepTarget(ctx context.Context, targetID string, triggerID string, now time.Time) (*entities.Report, error) {
	reports, err := uc.Repository.ListReportsByTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	total := len(reports)

	var trigger *entities.Report
	for i := range reports {
		report := reports[i]
		if report.Status.Terminal() {
			continue
		}
		if uc.Engine.ShouldEscalate(report.Priority, total) {
			report.Priority = services.EscalatePriority(report.Priority)
			report.EscalatedCount++
			report.UpdatedAt = now
			if err := uc.Repository.UpdateReport(ctx, report); err != nil {
				return nil, err
			}
			uc.appendEvent(ctx, "report.escalated", report, now)
			application.ResolveLogger(uc.Logger).Info("report escalated",
				"event", "report_escalated",
				"module", "trust-safety/report-service",
				"layer", "application",
				"report_id", report.ID,
				"target_id", report.TargetID,
				"priority", string(report.Priority),
				"report_total", total,
			)
		}
		if report.ID == triggerID {
			trigger = &report
		}
	}
	return trigger, nil
}

func (uc CreateReportUseCase) snapshot(ctx context.Context, userID string) *services.ReputationSnapshot {
	if uc.Reputations == nil {
		return nil
	}
	snapshot, err := uc.Reputations.Snapshot(ctx, userID)
	if err != nil {
		application.ResolveLogger(uc.Logger).Warn("reporter reputation lookup degraded",
			"event", "report_reputation_degraded",
			"module", "trust-safety/report-service",
			"layer", "application",
			"user_id", userID,
			"error", err.Error(),
		)
		return nil
	}
	return snapshot
}

func (uc CreateReportUseCase) wrap(targetType entities.TargetType, err error) error {
	if targetType == entities.TargetComment {
		return fmt.Errorf("Failed to create comment report: %w", err)
	}
	return fmt.Errorf("Failed to create whisper report: %w", err)
}

func (uc CreateReportUseCase) appendEvent(ctx context.Context, eventType string, report entities.Report, now time.Time) {
	if uc.Outbox == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"report_id":   report.ID,
		"target_type": string(report.TargetType),
		"target_id":   report.TargetID,
		"reporter_id": report.ReporterID,
		"category":    string(report.Category),
		"priority":    string(report.Priority),
		"status":      string(report.Status),
	})
	if err != nil {
		return
	}
	envelope := ports.EventEnvelope{
		EventID:          uc.IDGen.NewID(),
		EventType:        eventType,
		OccurredAt:       now,
		SourceService:    sourceService,
		SchemaVersion:    1,
		PartitionKeyPath: "target_id",
		PartitionKey:     report.TargetID,
		Data:             payload,
	}
	if err := uc.Outbox.AppendOutbox(ctx, envelope); err != nil {
		application.ResolveLogger(uc.Logger).Error("outbox append failed",
			"event", "report_outbox_append_failed",
			"module", "trust-safety/report-service",
			"layer", "application",
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}
