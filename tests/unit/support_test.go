package unit

import (
	"context"

	appealports "warden/contexts/trust-safety/appeal-service/ports"
	reportservices "warden/contexts/trust-safety/report-service/domain/services"
	reputationapp "warden/contexts/trust-safety/reputation-service/application"
)

// In-process adapters mirroring the composition-root glue: the report and
// appeal modules read reporter standing and violations from the live
// reputation module instead of fixtures.

type liveSnapshots struct {
	service reputationapp.Service
}

func (a liveSnapshots) Snapshot(ctx context.Context, userID string) (*reportservices.ReputationSnapshot, error) {
	reputation, err := a.service.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &reportservices.ReputationSnapshot{Level: string(reputation.Level), Score: reputation.Score}, nil
}

type liveAdjuster struct {
	service reputationapp.Service
}

func (a liveAdjuster) ApplyAppealResolution(ctx context.Context, userID string, appealID string, adjustment int) error {
	_, err := a.service.ApplyAppealResolution(ctx, userID, appealID, adjustment)
	return err
}

type liveViolations struct {
	service reputationapp.Service
}

func (a liveViolations) Violation(ctx context.Context, violationID string) (*appealports.ViolationSnapshot, error) {
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
