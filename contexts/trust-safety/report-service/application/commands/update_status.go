package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "warden/contexts/trust-safety/report-service/application"
	"warden/contexts/trust-safety/report-service/domain/entities"
	domainerrors "warden/contexts/trust-safety/report-service/domain/errors"
	"warden/contexts/trust-safety/report-service/ports"
)

const defaultIdempotencyTTL = 24 * time.Hour

type UpdateStatusCommand struct {
	ReportID       string
	NewStatus      string
	ReviewerID     string
	Resolution     string
	IdempotencyKey string
}

type UpdateStatusUseCase struct {
	Repository     ports.Repository
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxRepository
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

// Execute moves a report through its review state machine. Terminal
// transitions stamp the reviewer and resolution. Replays under the same
// Idempotency-Key return the recorded outcome without touching the store.
func (uc UpdateStatusUseCase) Execute(ctx context.Context, cmd UpdateStatusCommand) (entities.Report, error) {
	logger := application.ResolveLogger(uc.Logger)

	cmd.ReportID = strings.TrimSpace(cmd.ReportID)
	cmd.ReviewerID = strings.TrimSpace(cmd.ReviewerID)
	cmd.IdempotencyKey = strings.TrimSpace(cmd.IdempotencyKey)
	if cmd.ReportID == "" || cmd.ReviewerID == "" {
		return entities.Report{}, domainerrors.ErrInvalidRequest
	}
	newStatus, ok := entities.ParseStatus(cmd.NewStatus)
	if !ok {
		return entities.Report{}, domainerrors.ErrInvalidRequest
	}
	if cmd.IdempotencyKey == "" {
		return entities.Report{}, domainerrors.ErrIdempotencyKeyRequired
	}

	now := uc.Clock.Now().UTC()
	requestHash := hashUpdateStatusCommand(cmd)
	if uc.Idempotency != nil {
		record, found, err := uc.Idempotency.GetRecord(ctx, cmd.IdempotencyKey, now)
		if err != nil {
			return entities.Report{}, fmt.Errorf("Failed to update report status: %w", err)
		}
		if found {
			if record.RequestHash != requestHash {
				return entities.Report{}, domainerrors.ErrIdempotencyConflict
			}
			var replayed entities.Report
			if err := json.Unmarshal(record.ResponsePayload, &replayed); err != nil {
				return entities.Report{}, fmt.Errorf("Failed to update report status: %w", err)
			}
			return replayed, nil
		}
	}

	report, err := uc.Repository.GetReport(ctx, cmd.ReportID)
	if err != nil {
		return entities.Report{}, fmt.Errorf("Failed to update report status: %w", err)
	}
	if report == nil {
		return entities.Report{}, domainerrors.ErrReportNotFound
	}
	if !report.Status.CanTransition(newStatus) {
		return entities.Report{}, domainerrors.ErrInvalidTransition
	}

	report.Status = newStatus
	report.UpdatedAt = now
	if newStatus.Terminal() {
		reviewedAt := now
		report.ReviewedAt = &reviewedAt
		report.ReviewedBy = cmd.ReviewerID
		report.Resolution = strings.TrimSpace(cmd.Resolution)
	}
	if err := uc.Repository.UpdateReport(ctx, *report); err != nil {
		return entities.Report{}, fmt.Errorf("Failed to update report status: %w", err)
	}

	uc.appendEvent(ctx, *report, now)

	if uc.Idempotency != nil {
		payload, err := json.Marshal(report)
		if err != nil {
			return entities.Report{}, fmt.Errorf("Failed to update report status: %w", err)
		}
		if err := uc.Idempotency.PutRecord(ctx, ports.IdempotencyRecord{
			Key:             cmd.IdempotencyKey,
			RequestHash:     requestHash,
			ResponsePayload: payload,
			ExpiresAt:       now.Add(uc.resolveIdempotencyTTL()),
		}); err != nil {
			return entities.Report{}, fmt.Errorf("Failed to update report status: %w", err)
		}
	}

	logger.Info("report status updated",
		"event", "report_status_updated",
		"module", "trust-safety/report-service",
		"layer", "application",
		"report_id", report.ID,
		"status", string(report.Status),
		"reviewer_id", cmd.ReviewerID,
	)
	return *report, nil
}

func (uc UpdateStatusUseCase) resolveIdempotencyTTL() time.Duration {
	if uc.IdempotencyTTL > 0 {
		return uc.IdempotencyTTL
	}
	return defaultIdempotencyTTL
}

func (uc UpdateStatusUseCase) appendEvent(ctx context.Context, report entities.Report, now time.Time) {
	if uc.Outbox == nil {
		return
	}
	eventType := "report.status_changed"
	if report.Status == entities.StatusResolved {
		eventType = "report.resolved"
	}
	payload, err := json.Marshal(map[string]any{
		"report_id":   report.ID,
		"target_id":   report.TargetID,
		"status":      string(report.Status),
		"reviewed_by": report.ReviewedBy,
		"resolution":  report.Resolution,
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

func hashUpdateStatusCommand(cmd UpdateStatusCommand) string {
	payload := map[string]any{
		"report_id":   strings.TrimSpace(cmd.ReportID),
		"new_status":  strings.TrimSpace(cmd.NewStatus),
		"reviewer_id": strings.TrimSpace(cmd.ReviewerID),
		"resolution":  strings.TrimSpace(cmd.Resolution),
	}
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
