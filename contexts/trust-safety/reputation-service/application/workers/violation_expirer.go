package workers

import (
	"context"
	"log/slog"

	"warden/contexts/trust-safety/reputation-service/application"
)

// ViolationExpirer retires violations past their expiry so old infractions
// stop exerting level pressure.
type ViolationExpirer struct {
	Service   application.Service
	BatchSize int
	Logger    *slog.Logger
}

func (e ViolationExpirer) RunOnce(ctx context.Context) error {
	limit := e.BatchSize
	if limit <= 0 {
		limit = 100
	}
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	expired, err := e.Service.ExpireViolations(ctx, limit)
	if err != nil {
		logger.Error("violation expiry sweep failed",
			"event", "violation_expiry_failed",
			"module", "trust-safety/reputation-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if expired > 0 {
		logger.Info("violation expiry sweep completed",
			"event", "violation_expiry_completed",
			"module", "trust-safety/reputation-service",
			"layer", "worker",
			"expired_count", expired,
		)
	}
	return nil
}
