package bootstrap

import (
	"context"

	appealports "warden/contexts/trust-safety/appeal-service/ports"
	analysisentities "warden/contexts/trust-safety/content-analysis-service/domain/entities"
	reportservices "warden/contexts/trust-safety/report-service/domain/services"
	reputationapp "warden/contexts/trust-safety/reputation-service/application"
	reputationports "warden/contexts/trust-safety/reputation-service/ports"
)

// The trust-safety services collaborate in process. These adapters bridge
// each consumer port onto the reputation service without letting the
// contexts import each other.

type reputationSnapshots struct {
	service reputationapp.Service
}

func (a reputationSnapshots) Snapshot(ctx context.Context, userID string) (*reportservices.ReputationSnapshot, error) {
	reputation, err := a.service.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &reportservices.ReputationSnapshot{
		Level: string(reputation.Level),
		Score: reputation.Score,
	}, nil
}

type reputationLevels struct {
	service reputationapp.Service
}

func (a reputationLevels) Level(ctx context.Context, userID string) (string, error) {
	return a.service.Level(ctx, userID)
}

type reputationAdjuster struct {
	service reputationapp.Service
}

func (a reputationAdjuster) ApplyAppealResolution(ctx context.Context, userID string, appealID string, adjustment int) error {
	_, err := a.service.ApplyAppealResolution(ctx, userID, appealID, adjustment)
	return err
}

type violationDirectory struct {
	service reputationapp.Service
}

func (a violationDirectory) Violation(ctx context.Context, violationID string) (*appealports.ViolationSnapshot, error) {
	violation, err := a.service.GetViolation(ctx, violationID)
	if err != nil {
		return nil, err
	}
	if violation == nil {
		return nil, nil
	}
	return &appealports.ViolationSnapshot{
		ID:        violation.ID,
		UserID:    violation.UserID,
		WhisperID: violation.WhisperID,
		CreatedAt: violation.CreatedAt,
		Expired:   violation.Expired,
	}, nil
}

type violationSink struct {
	service reputationapp.Service
}

func (a violationSink) RecordViolations(ctx context.Context, drafts []analysisentities.ViolationDraft) error {
	for _, draft := range drafts {
		_, err := a.service.RecordViolation(ctx, reputationports.RecordViolationInput{
			UserID:        draft.UserID,
			WhisperID:     draft.WhisperID,
			ViolationType: string(draft.ViolationType),
			Reason:        draft.Reason,
			Severity:      string(draft.Severity),
		})
		if err != nil {
			return err
		}
	}
	return nil
}
