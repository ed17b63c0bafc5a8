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

	application "warden/contexts/trust-safety/appeal-service/application"
	"warden/contexts/trust-safety/appeal-service/domain/entities"
	domainerrors "warden/contexts/trust-safety/appeal-service/domain/errors"
	"warden/contexts/trust-safety/appeal-service/ports"
)

const defaultIdempotencyTTL = 24 * time.Hour

type ResolveAppealCommand struct {
	AppealID             string
	ModeratorID          string
	Action               string
	Reason               string
	ReputationAdjustment int
	IdempotencyKey       string
}

type ResolveAppealUseCase struct {
	Repository     ports.Repository
	Reputations    ports.ReputationApplier
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxRepository
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

// Execute closes out an appeal with the moderator's decision and performs
// the single reputation mutation with the supplied signed adjustment. A
// replay under the same Idempotency-Key returns the stored outcome without
// touching reputation again; a second resolve with a fresh key fails with
// ErrAppealAlreadyResolved.
func (uc ResolveAppealUseCase) Execute(ctx context.Context, cmd ResolveAppealCommand) (entities.Appeal, error) {
	logger := application.ResolveLogger(uc.Logger)

	cmd.AppealID = strings.TrimSpace(cmd.AppealID)
	cmd.ModeratorID = strings.TrimSpace(cmd.ModeratorID)
	cmd.IdempotencyKey = strings.TrimSpace(cmd.IdempotencyKey)
	if cmd.AppealID == "" || cmd.ModeratorID == "" {
		return entities.Appeal{}, domainerrors.ErrInvalidRequest
	}
	action, ok := entities.ParseResolutionAction(cmd.Action)
	if !ok {
		return entities.Appeal{}, domainerrors.ErrInvalidRequest
	}
	if cmd.IdempotencyKey == "" {
		return entities.Appeal{}, domainerrors.ErrIdempotencyKeyRequired
	}

	now := uc.Clock.Now().UTC()
	requestHash := hashResolveAppealCommand(cmd)
	if uc.Idempotency != nil {
		record, found, err := uc.Idempotency.GetRecord(ctx, cmd.IdempotencyKey, now)
		if err != nil {
			return entities.Appeal{}, fmt.Errorf("Failed to resolve appeal: %w", err)
		}
		if found {
			if record.RequestHash != requestHash {
				return entities.Appeal{}, domainerrors.ErrIdempotencyConflict
			}
			var replayed entities.Appeal
			if err := json.Unmarshal(record.ResponsePayload, &replayed); err != nil {
				return entities.Appeal{}, fmt.Errorf("Failed to resolve appeal: %w", err)
			}
			return replayed, nil
		}
	}

	appeal, err := uc.Repository.GetAppeal(ctx, cmd.AppealID)
	if err != nil {
		return entities.Appeal{}, fmt.Errorf("Failed to resolve appeal: %w", err)
	}
	if appeal == nil {
		return entities.Appeal{}, domainerrors.ErrAppealNotFound
	}
	if appeal.Status.Terminal() {
		return entities.Appeal{}, domainerrors.ErrAppealAlreadyResolved
	}
	if appeal.Status != entities.StatusPending && appeal.Status != entities.StatusUnderReview {
		return entities.Appeal{}, domainerrors.ErrInvalidTransition
	}

	if action == entities.ActionReject {
		appeal.Status = entities.StatusRejected
	} else {
		appeal.Status = entities.StatusApproved
	}
	reviewedAt := now
	appeal.ReviewedAt = &reviewedAt
	appeal.ReviewedBy = cmd.ModeratorID
	appeal.UpdatedAt = now
	appeal.Resolution = &entities.Resolution{
		Action:               action,
		Reason:               strings.TrimSpace(cmd.Reason),
		ModeratorID:          cmd.ModeratorID,
		ReputationAdjustment: cmd.ReputationAdjustment,
	}
	if err := uc.Repository.UpdateAppeal(ctx, *appeal); err != nil {
		return entities.Appeal{}, fmt.Errorf("Failed to resolve appeal: %w", err)
	}

	if uc.Reputations != nil && cmd.ReputationAdjustment != 0 {
		if err := uc.Reputations.ApplyAppealResolution(ctx, appeal.UserID, appeal.ID, cmd.ReputationAdjustment); err != nil {
			return entities.Appeal{}, fmt.Errorf("Failed to resolve appeal: %w", err)
		}
	}

	appendAppealEvent(ctx, uc.Outbox, uc.IDGen, uc.Logger, "appeal.resolved", *appeal, now)

	if uc.Idempotency != nil {
		payload, err := json.Marshal(appeal)
		if err != nil {
			return entities.Appeal{}, fmt.Errorf("Failed to resolve appeal: %w", err)
		}
		if err := uc.Idempotency.PutRecord(ctx, ports.IdempotencyRecord{
			Key:             cmd.IdempotencyKey,
			RequestHash:     requestHash,
			ResponsePayload: payload,
			ExpiresAt:       now.Add(uc.resolveIdempotencyTTL()),
		}); err != nil {
			return entities.Appeal{}, fmt.Errorf("Failed to resolve appeal: %w", err)
		}
	}

	logger.Info("appeal resolved",
		"event", "appeal_resolved",
		"module", "trust-safety/appeal-service",
		"layer", "application",
		"appeal_id", appeal.ID,
		"action", string(action),
		"moderator_id", cmd.ModeratorID,
		"reputation_adjustment", cmd.ReputationAdjustment,
	)
	return *appeal, nil
}

func (uc ResolveAppealUseCase) resolveIdempotencyTTL() time.Duration {
	if uc.IdempotencyTTL > 0 {
		return uc.IdempotencyTTL
	}
	return defaultIdempotencyTTL
}

func hashResolveAppealCommand(cmd ResolveAppealCommand) string {
	payload := map[string]any{
		"appeal_id":             strings.TrimSpace(cmd.AppealID),
		"moderator_id":          strings.TrimSpace(cmd.ModeratorID),
		"action":                strings.ToLower(strings.TrimSpace(cmd.Action)),
		"reason":                strings.TrimSpace(cmd.Reason),
		"reputation_adjustment": cmd.ReputationAdjustment,
	}
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
