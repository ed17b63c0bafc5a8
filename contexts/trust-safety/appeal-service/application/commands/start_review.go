package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "warden/contexts/trust-safety/appeal-service/application"
	"warden/contexts/trust-safety/appeal-service/domain/entities"
	domainerrors "warden/contexts/trust-safety/appeal-service/domain/errors"
	"warden/contexts/trust-safety/appeal-service/ports"
)

type StartReviewCommand struct {
	AppealID   string
	ReviewerID string
}

type StartReviewUseCase struct {
	Repository ports.Repository
	Outbox     ports.OutboxRepository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// Execute claims a pending appeal for review.
func (uc StartReviewUseCase) Execute(ctx context.Context, cmd StartReviewCommand) (entities.Appeal, error) {
	cmd.AppealID = strings.TrimSpace(cmd.AppealID)
	cmd.ReviewerID = strings.TrimSpace(cmd.ReviewerID)
	if cmd.AppealID == "" || cmd.ReviewerID == "" {
		return entities.Appeal{}, domainerrors.ErrInvalidRequest
	}

	appeal, err := uc.Repository.GetAppeal(ctx, cmd.AppealID)
	if err != nil {
		return entities.Appeal{}, fmt.Errorf("Failed to start appeal review: %w", err)
	}
	if appeal == nil {
		return entities.Appeal{}, domainerrors.ErrAppealNotFound
	}
	if appeal.Status != entities.StatusPending {
		return entities.Appeal{}, domainerrors.ErrInvalidTransition
	}

	now := uc.Clock.Now().UTC()
	appeal.Status = entities.StatusUnderReview
	appeal.ReviewedBy = cmd.ReviewerID
	appeal.UpdatedAt = now
	if err := uc.Repository.UpdateAppeal(ctx, *appeal); err != nil {
		return entities.Appeal{}, fmt.Errorf("Failed to start appeal review: %w", err)
	}

	appendAppealEvent(ctx, uc.Outbox, uc.IDGen, uc.Logger, "appeal.review_started", *appeal, now)
	application.ResolveLogger(uc.Logger).Info("appeal review started",
		"event", "appeal_review_started",
		"module", "trust-safety/appeal-service",
		"layer", "application",
		"appeal_id", appeal.ID,
		"reviewer_id", cmd.ReviewerID,
	)
	return *appeal, nil
}
