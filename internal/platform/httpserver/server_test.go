package httpserver

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appealservice "warden/contexts/trust-safety/appeal-service"
	appealports "warden/contexts/trust-safety/appeal-service/ports"
	contentanalysisservice "warden/contexts/trust-safety/content-analysis-service"
	reportservice "warden/contexts/trust-safety/report-service"
	reportservices "warden/contexts/trust-safety/report-service/domain/services"
	reputationservice "warden/contexts/trust-safety/reputation-service"
	reputationapp "warden/contexts/trust-safety/reputation-service/application"
)

const testJWTSecret = "test-secret"

type testSnapshots struct {
	service reputationapp.Service
}

func (a testSnapshots) Snapshot(ctx context.Context, userID string) (*reportservices.ReputationSnapshot, error) {
	reputation, err := a.service.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &reportservices.ReputationSnapshot{Level: string(reputation.Level), Score: reputation.Score}, nil
}

type testAdjuster struct {
	service reputationapp.Service
}

func (a testAdjuster) ApplyAppealResolution(ctx context.Context, userID string, appealID string, adjustment int) error {
	_, err := a.service.ApplyAppealResolution(ctx, userID, appealID, adjustment)
	return err
}

func newTestServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	analysis := contentanalysisservice.NewInMemoryModule(logger)
	reputation := reputationservice.NewInMemoryModule(logger)
	reports := reportservice.NewInMemoryModule(testSnapshots{service: reputation.Service}, logger)
	appeals := appealservice.NewInMemoryModule(testAdjuster{service: reputation.Service}, logger)

	appeals.Store.PrimeViolation(appealports.ViolationSnapshot{
		ID:        "violation-1",
		UserID:    "user_123",
		WhisperID: "whisper-1",
		CreatedAt: time.Now().UTC().Add(-24 * time.Hour),
	})

	return New(analysis, reputation, reports, appeals, testJWTSecret, logger, ":0")
}

func testToken(t *testing.T, subject string, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return signed
}
