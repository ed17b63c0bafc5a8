package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "warden/contexts/trust-safety/appeal-service/application"
	"warden/contexts/trust-safety/appeal-service/domain/entities"
	domainerrors "warden/contexts/trust-safety/appeal-service/domain/errors"
	"warden/contexts/trust-safety/appeal-service/ports"
)

const (
	defaultEligibilityWindow = 30 * 24 * time.Hour
	sourceService            = "appeal-service"
)

type SubmitAppealCommand struct {
	UserID      string
	WhisperID   string
	ViolationID string
	Reason      string
	Evidence    string
}

type SubmitAppealUseCase struct {
	Repository        ports.Repository
	Violations        ports.ViolationReader
	Outbox            ports.OutboxRepository
	Clock             ports.Clock
	IDGen             ports.IDGenerator
	EligibilityWindow time.Duration
	Logger            *slog.Logger
}

// Execute files an appeal against a violation. Validation fails fast: the
// violation must exist, belong to the appellant, still be inside the
// eligibility window, and carry no outstanding appeal.
func (uc SubmitAppealUseCase) Execute(ctx context.Context, cmd SubmitAppealCommand) (entities.Appeal, error) {
	logger := application.ResolveLogger(uc.Logger)

	cmd.UserID = strings.TrimSpace(cmd.UserID)
	cmd.WhisperID = strings.TrimSpace(cmd.WhisperID)
	cmd.ViolationID = strings.TrimSpace(cmd.ViolationID)
	if cmd.UserID == "" || cmd.WhisperID == "" || cmd.ViolationID == "" || strings.TrimSpace(cmd.Reason) == "" {
		return entities.Appeal{}, domainerrors.ErrInvalidRequest
	}

	violation, err := uc.Violations.Violation(ctx, cmd.ViolationID)
	if err != nil {
		return entities.Appeal{}, fmt.Errorf("Failed to submit appeal: %w", err)
	}
	if violation == nil {
		return entities.Appeal{}, domainerrors.ErrViolationNotFound
	}
	if violation.UserID != cmd.UserID {
		return entities.Appeal{}, domainerrors.ErrNotViolationOwner
	}

	now := uc.Clock.Now().UTC()
	window := uc.EligibilityWindow
	if window <= 0 {
		window = defaultEligibilityWindow
	}
	if now.Sub(violation.CreatedAt.UTC()) > window {
		return entities.Appeal{}, domainerrors.ErrAppealWindowClosed
	}

	outstanding, err := uc.Repository.FindOutstandingAppeal(ctx, cmd.ViolationID)
	if err != nil {
		return entities.Appeal{}, fmt.Errorf("Failed to submit appeal: %w", err)
	}
	if outstanding != nil {
		return entities.Appeal{}, domainerrors.ErrAppealOutstanding
	}

	appeal := entities.Appeal{
		ID:          uc.IDGen.NewID(),
		UserID:      cmd.UserID,
		WhisperID:   cmd.WhisperID,
		ViolationID: cmd.ViolationID,
		Reason:      strings.TrimSpace(cmd.Reason),
		Evidence:    strings.TrimSpace(cmd.Evidence),
		Status:      entities.StatusPending,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	if err := uc.Repository.CreateAppeal(ctx, appeal); err != nil {
		return entities.Appeal{}, fmt.Errorf("Failed to submit appeal: %w", err)
	}

	appendAppealEvent(ctx, uc.Outbox, uc.IDGen, uc.Logger, "appeal.submitted", appeal, now)
	logger.Info("appeal submitted",
		"event", "appeal_submitted",
		"module", "trust-safety/appeal-service",
		"layer", "application",
		"appeal_id", appeal.ID,
		"user_id", appeal.UserID,
		"violation_id", appeal.ViolationID,
	)
	return appeal, nil
}

func appendAppealEvent(ctx context.Context, outbox ports.OutboxRepository, idGen ports.IDGenerator, logger *slog.Logger, eventType string, appeal entities.Appeal, now time.Time) {
	if outbox == nil {
		return
	}
	data := map[string]any{
		"appeal_id":    appeal.ID,
		"user_id":      appeal.UserID,
		"violation_id": appeal.ViolationID,
		"status":       string(appeal.Status),
	}
	if appeal.Resolution != nil {
		data["action"] = string(appeal.Resolution.Action)
		data["reputation_adjustment"] = appeal.Resolution.ReputationAdjustment
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	envelope := ports.EventEnvelope{
		EventID:          idGen.NewID(),
		EventType:        eventType,
		OccurredAt:       now,
		SourceService:    sourceService,
		SchemaVersion:    1,
		PartitionKeyPath: "user_id",
		PartitionKey:     appeal.UserID,
		Data:             payload,
	}
	if err := outbox.AppendOutbox(ctx, envelope); err != nil {
		application.ResolveLogger(logger).Error("outbox append failed",
			"event", "appeal_outbox_append_failed",
			"module", "trust-safety/appeal-service",
			"layer", "application",
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}
