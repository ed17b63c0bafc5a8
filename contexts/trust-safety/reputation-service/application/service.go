package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"warden/contexts/trust-safety/reputation-service/domain/entities"
	domainerrors "warden/contexts/trust-safety/reputation-service/domain/errors"
	"warden/contexts/trust-safety/reputation-service/domain/services"
	"warden/contexts/trust-safety/reputation-service/ports"
)

const (
	defaultScore        = 50
	defaultViolationTTL = 90 * 24 * time.Hour
	sourceService       = "reputation-service"
)

type Service struct {
	Repo         ports.Repository
	Outbox       ports.OutboxRepository
	Standing     services.Standing
	Clock        ports.Clock
	IDGenerator  ports.IDGenerator
	ViolationTTL time.Duration
	Logger       *slog.Logger
}

// Get resolves a user's reputation, substituting a fresh standard-level
// record when none exists yet. Missing data is a valid state, not an error.
func (s Service) Get(ctx context.Context, userID string) (entities.UserReputation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.UserReputation{}, domainerrors.ErrInvalidRequest
	}
	reputation, err := s.Repo.GetReputation(ctx, userID)
	if err != nil {
		return entities.UserReputation{}, fmt.Errorf("Failed to get user reputation: %w", err)
	}
	if reputation == nil {
		return s.defaultReputation(userID), nil
	}
	return *reputation, nil
}

// RecordViolation creates the immutable violation record, deducts the
// severity penalty from the author's score and recomputes the level under
// current violation pressure.
func (s Service) RecordViolation(ctx context.Context, input ports.RecordViolationInput) (entities.UserViolation, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.ViolationType = strings.TrimSpace(input.ViolationType)
	if input.UserID == "" || input.ViolationType == "" || strings.TrimSpace(input.Reason) == "" {
		return entities.UserViolation{}, domainerrors.ErrInvalidRequest
	}
	severity, ok := entities.ParseSeverity(input.Severity)
	if !ok {
		return entities.UserViolation{}, domainerrors.ErrInvalidRequest
	}

	now := s.now()
	ttl := s.ViolationTTL
	if ttl <= 0 {
		ttl = defaultViolationTTL
	}
	expiresAt := now.Add(ttl)
	violation := entities.UserViolation{
		ID:            s.IDGenerator.NewID(),
		UserID:        input.UserID,
		WhisperID:     strings.TrimSpace(input.WhisperID),
		ViolationType: input.ViolationType,
		Reason:        strings.TrimSpace(input.Reason),
		Severity:      severity,
		ReportCount:   input.ReportCount,
		ModeratorID:   strings.TrimSpace(input.ModeratorID),
		CreatedAt:     now,
		ExpiresAt:     &expiresAt,
	}
	if err := s.Repo.CreateViolation(ctx, violation); err != nil {
		return entities.UserViolation{}, fmt.Errorf("Failed to record violation: %w", err)
	}

	reputation, err := s.loadOrDefault(ctx, input.UserID)
	if err != nil {
		return entities.UserViolation{}, fmt.Errorf("Failed to record violation: %w", err)
	}
	active, err := s.Repo.ListViolations(ctx, input.UserID, true, now)
	if err != nil {
		return entities.UserViolation{}, fmt.Errorf("Failed to record violation: %w", err)
	}

	reputation.Score = services.ClampScore(reputation.Score - s.Standing.PenaltyForSeverity(severity))
	reputation.Level = s.Standing.LevelForScore(reputation.Score, len(active))
	reputation.FlaggedCount++
	if severity == entities.SeverityHigh || severity == entities.SeverityCritical {
		reputation.RejectedCount++
	}
	reputation.ViolationHistory = append(reputation.ViolationHistory, violation.ID)
	reputation.UpdatedAt = now
	if err := s.Repo.SaveReputation(ctx, reputation); err != nil {
		return entities.UserViolation{}, fmt.Errorf("Failed to record violation: %w", err)
	}

	s.appendEvent(ctx, "violation.recorded", input.UserID, map[string]any{
		"violation_id":   violation.ID,
		"user_id":        input.UserID,
		"violation_type": input.ViolationType,
		"severity":       string(severity),
	})
	s.appendEvent(ctx, "reputation.adjusted", input.UserID, map[string]any{
		"user_id": input.UserID,
		"score":   reputation.Score,
		"level":   string(reputation.Level),
		"cause":   "violation",
	})

	resolveLogger(s.Logger).Info("violation recorded",
		"event", "violation_recorded",
		"module", "trust-safety/reputation-service",
		"layer", "application",
		"user_id", input.UserID,
		"violation_id", violation.ID,
		"severity", string(severity),
		"score", reputation.Score,
		"level", string(reputation.Level),
	)
	return violation, nil
}

// ApplyAppealResolution applies the moderator-supplied signed adjustment.
// The appeal workflow owns exactly-once; this engine applies what it is
// told and recomputes the level.
func (s Service) ApplyAppealResolution(ctx context.Context, userID string, appealID string, adjustment int) (entities.UserReputation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.UserReputation{}, domainerrors.ErrInvalidRequest
	}

	now := s.now()
	reputation, err := s.loadOrDefault(ctx, userID)
	if err != nil {
		return entities.UserReputation{}, fmt.Errorf("Failed to apply appeal resolution: %w", err)
	}
	active, err := s.Repo.ListViolations(ctx, userID, true, now)
	if err != nil {
		return entities.UserReputation{}, fmt.Errorf("Failed to apply appeal resolution: %w", err)
	}

	reputation.Score = services.ClampScore(reputation.Score + adjustment)
	reputation.Level = s.Standing.LevelForScore(reputation.Score, len(active))
	reputation.UpdatedAt = now
	if err := s.Repo.SaveReputation(ctx, reputation); err != nil {
		return entities.UserReputation{}, fmt.Errorf("Failed to apply appeal resolution: %w", err)
	}

	s.appendEvent(ctx, "reputation.adjusted", userID, map[string]any{
		"user_id":    userID,
		"appeal_id":  appealID,
		"adjustment": adjustment,
		"score":      reputation.Score,
		"level":      string(reputation.Level),
		"cause":      "appeal_resolution",
	})

	resolveLogger(s.Logger).Info("appeal resolution applied to reputation",
		"event", "reputation_appeal_applied",
		"module", "trust-safety/reputation-service",
		"layer", "application",
		"user_id", userID,
		"appeal_id", appealID,
		"adjustment", adjustment,
		"score", reputation.Score,
		"level", string(reputation.Level),
	)
	return reputation, nil
}

// Weight never fails: any lookup problem degrades to the standard weight so
// report intake is never blocked by a broken reputation row.
func (s Service) Weight(ctx context.Context, userID string) float64 {
	reputation, err := s.Repo.GetReputation(ctx, strings.TrimSpace(userID))
	if err != nil {
		resolveLogger(s.Logger).Warn("reputation weight lookup degraded to default",
			"event", "reputation_weight_degraded",
			"module", "trust-safety/reputation-service",
			"layer", "application",
			"user_id", userID,
			"error", err.Error(),
		)
		return s.Standing.WeightFor(nil)
	}
	return s.Standing.WeightFor(reputation)
}

// Level exposes the trust level for in-process collaborators. Missing users
// read as standard.
func (s Service) Level(ctx context.Context, userID string) (string, error) {
	reputation, err := s.Repo.GetReputation(ctx, strings.TrimSpace(userID))
	if err != nil {
		return "", fmt.Errorf("Failed to read reputation level: %w", err)
	}
	if reputation == nil {
		return string(entities.LevelStandard), nil
	}
	return string(reputation.Level), nil
}

func (s Service) ListViolations(ctx context.Context, userID string, activeOnly bool) ([]entities.UserViolation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	violations, err := s.Repo.ListViolations(ctx, userID, activeOnly, s.now())
	if err != nil {
		return nil, fmt.Errorf("Failed to list violations: %w", err)
	}
	return violations, nil
}

func (s Service) GetViolation(ctx context.Context, violationID string) (*entities.UserViolation, error) {
	violationID = strings.TrimSpace(violationID)
	if violationID == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	violation, err := s.Repo.GetViolation(ctx, violationID)
	if err != nil {
		return nil, fmt.Errorf("Failed to get violation: %w", err)
	}
	return violation, nil
}

// Suspend records a moderator suspension. Permanent suspensions reject an
// end date and drop the account to banned standing immediately.
func (s Service) Suspend(ctx context.Context, input ports.SuspendInput) (entities.Suspension, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.ModeratorID = strings.TrimSpace(input.ModeratorID)
	if input.UserID == "" || input.ModeratorID == "" || strings.TrimSpace(input.Reason) == "" {
		return entities.Suspension{}, domainerrors.ErrInvalidRequest
	}
	if input.UserID == input.ModeratorID {
		return entities.Suspension{}, domainerrors.ErrInvalidRequest
	}
	suspensionType, ok := entities.ParseSuspensionType(input.Type)
	if !ok {
		return entities.Suspension{}, domainerrors.ErrInvalidRequest
	}
	if suspensionType == entities.SuspensionPermanent && input.EndDate != nil {
		return entities.Suspension{}, domainerrors.ErrPermanentHasEndDate
	}
	if suspensionType == entities.SuspensionTemporary && input.EndDate == nil {
		return entities.Suspension{}, domainerrors.ErrTemporaryNeedsEndDate
	}

	now := s.now()
	suspension := entities.Suspension{
		ID:          s.IDGenerator.NewID(),
		UserID:      input.UserID,
		Type:        suspensionType,
		BanType:     strings.TrimSpace(input.BanType),
		Reason:      strings.TrimSpace(input.Reason),
		ModeratorID: input.ModeratorID,
		StartDate:   now,
		EndDate:     input.EndDate,
		IsActive:    true,
	}
	if err := s.Repo.CreateSuspension(ctx, suspension); err != nil {
		return entities.Suspension{}, fmt.Errorf("Failed to create suspension: %w", err)
	}

	if suspensionType == entities.SuspensionPermanent {
		reputation, err := s.loadOrDefault(ctx, input.UserID)
		if err != nil {
			return entities.Suspension{}, fmt.Errorf("Failed to create suspension: %w", err)
		}
		reputation.Score = services.ScoreFloor
		reputation.Level = entities.LevelBanned
		reputation.UpdatedAt = now
		if err := s.Repo.SaveReputation(ctx, reputation); err != nil {
			return entities.Suspension{}, fmt.Errorf("Failed to create suspension: %w", err)
		}
	}

	s.appendEvent(ctx, "user.suspended", input.UserID, map[string]any{
		"suspension_id": suspension.ID,
		"user_id":       input.UserID,
		"type":          string(suspensionType),
		"moderator_id":  input.ModeratorID,
	})

	resolveLogger(s.Logger).Info("user suspended",
		"event", "user_suspended",
		"module", "trust-safety/reputation-service",
		"layer", "application",
		"user_id", input.UserID,
		"suspension_id", suspension.ID,
		"type", string(suspensionType),
	)
	return suspension, nil
}

// LiftSuspension is the explicit moderator override of IsActive.
func (s Service) LiftSuspension(ctx context.Context, suspensionID string, moderatorID string) (entities.Suspension, error) {
	suspensionID = strings.TrimSpace(suspensionID)
	moderatorID = strings.TrimSpace(moderatorID)
	if suspensionID == "" || moderatorID == "" {
		return entities.Suspension{}, domainerrors.ErrInvalidRequest
	}
	suspension, err := s.Repo.GetSuspension(ctx, suspensionID)
	if err != nil {
		return entities.Suspension{}, fmt.Errorf("Failed to lift suspension: %w", err)
	}
	if suspension == nil {
		return entities.Suspension{}, domainerrors.ErrSuspensionNotFound
	}

	now := s.now()
	suspension.IsActive = false
	if suspension.Type == entities.SuspensionTemporary {
		suspension.EndDate = &now
	}
	if err := s.Repo.UpdateSuspension(ctx, *suspension); err != nil {
		return entities.Suspension{}, fmt.Errorf("Failed to lift suspension: %w", err)
	}

	resolveLogger(s.Logger).Info("suspension lifted",
		"event", "suspension_lifted",
		"module", "trust-safety/reputation-service",
		"layer", "application",
		"suspension_id", suspensionID,
		"moderator_id", moderatorID,
	)
	return *suspension, nil
}

// ActiveSuspension resolves to nil when the user has no live suspension.
func (s Service) ActiveSuspension(ctx context.Context, userID string) (*entities.Suspension, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	suspension, err := s.Repo.ActiveSuspensionForUser(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("Failed to read active suspension: %w", err)
	}
	if suspension == nil || !suspension.ActiveAt(s.now()) {
		return nil, nil
	}
	return suspension, nil
}

// ExpireViolations is the worker-facing sweep that retires violations past
// their expiry so they stop exerting level pressure.
func (s Service) ExpireViolations(ctx context.Context, limit int) (int, error) {
	now := s.now()
	expiring, err := s.Repo.ListViolationsExpiringBefore(ctx, now, limit)
	if err != nil {
		return 0, fmt.Errorf("Failed to expire violations: %w", err)
	}

	touched := map[string]struct{}{}
	for _, violation := range expiring {
		if err := s.Repo.MarkViolationExpired(ctx, violation.ID); err != nil {
			return 0, fmt.Errorf("Failed to expire violations: %w", err)
		}
		touched[violation.UserID] = struct{}{}
	}

	for userID := range touched {
		reputation, err := s.loadOrDefault(ctx, userID)
		if err != nil {
			return 0, fmt.Errorf("Failed to expire violations: %w", err)
		}
		active, err := s.Repo.ListViolations(ctx, userID, true, now)
		if err != nil {
			return 0, fmt.Errorf("Failed to expire violations: %w", err)
		}
		level := s.Standing.LevelForScore(reputation.Score, len(active))
		if level == reputation.Level {
			continue
		}
		reputation.Level = level
		reputation.UpdatedAt = now
		if err := s.Repo.SaveReputation(ctx, reputation); err != nil {
			return 0, fmt.Errorf("Failed to expire violations: %w", err)
		}
	}

	if len(expiring) > 0 {
		resolveLogger(s.Logger).Info("violations expired",
			"event", "violations_expired",
			"module", "trust-safety/reputation-service",
			"layer", "application",
			"expired_count", len(expiring),
			"users_touched", len(touched),
		)
	}
	return len(expiring), nil
}

func (s Service) loadOrDefault(ctx context.Context, userID string) (entities.UserReputation, error) {
	reputation, err := s.Repo.GetReputation(ctx, userID)
	if err != nil {
		return entities.UserReputation{}, err
	}
	if reputation == nil {
		return s.defaultReputation(userID), nil
	}
	return *reputation, nil
}

func (s Service) defaultReputation(userID string) entities.UserReputation {
	now := s.now()
	return entities.UserReputation{
		UserID:           userID,
		Score:            defaultScore,
		Level:            entities.LevelStandard,
		ViolationHistory: []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (s Service) appendEvent(ctx context.Context, eventType string, userID string, data map[string]any) {
	if s.Outbox == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	envelope := ports.EventEnvelope{
		EventID:          s.IDGenerator.NewID(),
		EventType:        eventType,
		OccurredAt:       s.now(),
		SourceService:    sourceService,
		SchemaVersion:    1,
		PartitionKeyPath: "user_id",
		PartitionKey:     userID,
		Data:             payload,
	}
	if err := s.Outbox.AppendOutbox(ctx, envelope); err != nil {
		resolveLogger(s.Logger).Error("outbox append failed",
			"event", "reputation_outbox_append_failed",
			"module", "trust-safety/reputation-service",
			"layer", "application",
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
