package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"warden/contexts/trust-safety/report-service/adapters/memory"
	"warden/contexts/trust-safety/report-service/domain/entities"
	domainerrors "warden/contexts/trust-safety/report-service/domain/errors"
)

func newUpdateUseCase(store *memory.Store) UpdateStatusUseCase {
	return UpdateStatusUseCase{
		Repository:  store,
		Idempotency: store,
		Outbox:      store,
		Clock:       store,
		IDGen:       store,
	}
}

func primePendingReport(store *memory.Store, reportID string) {
	now := time.Now().UTC()
	store.PrimeReport(entities.Report{
		ID:          reportID,
		TargetType:  entities.TargetWhisper,
		TargetID:    "whisper-1",
		ReporterID:  "reporter-1",
		Category:    entities.CategorySpam,
		Priority:    entities.PriorityMedium,
		Status:      entities.StatusPending,
		Reason:      "spam",
		ReportCount: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func TestUpdateStatusResolvesReport(t *testing.T) {
	store := memory.NewStore()
	uc := newUpdateUseCase(store)
	primePendingReport(store, "report-1")

	report, err := uc.Execute(context.Background(), UpdateStatusCommand{
		ReportID:       "report-1",
		NewStatus:      "under_review",
		ReviewerID:     "mod-1",
		IdempotencyKey: "idem-review-1",
	})
	if err != nil {
		t.Fatalf("move to under_review: %v", err)
	}
	if report.Status != entities.StatusUnderReview {
		t.Fatalf("expected under_review, got %s", report.Status)
	}
	if report.ReviewedAt != nil {
		t.Fatal("non-terminal transition must not stamp reviewed_at")
	}

	report, err = uc.Execute(context.Background(), UpdateStatusCommand{
		ReportID:       "report-1",
		NewStatus:      "resolved",
		ReviewerID:     "mod-1",
		Resolution:     "content removed",
		IdempotencyKey: "idem-resolve-1",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if report.Status != entities.StatusResolved {
		t.Fatalf("expected resolved, got %s", report.Status)
	}
	if report.ReviewedAt == nil || report.ReviewedBy != "mod-1" || report.Resolution != "content removed" {
		t.Fatalf("terminal transition must stamp review fields: %+v", report)
	}

	resolved := false
	for _, eventType := range store.OutboxEvents() {
		if eventType == "report.resolved" {
			resolved = true
		}
	}
	if !resolved {
		t.Fatal("expected report.resolved event in outbox")
	}
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	store := memory.NewStore()
	uc := newUpdateUseCase(store)
	primePendingReport(store, "report-1")

	if _, err := uc.Execute(context.Background(), UpdateStatusCommand{
		ReportID:       "report-1",
		NewStatus:      "resolved",
		ReviewerID:     "mod-1",
		IdempotencyKey: "idem-1",
	}); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	_, err := uc.Execute(context.Background(), UpdateStatusCommand{
		ReportID:       "report-1",
		NewStatus:      "under_review",
		ReviewerID:     "mod-1",
		IdempotencyKey: "idem-2",
	})
	if !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestUpdateStatusIdempotentReplay(t *testing.T) {
	store := memory.NewStore()
	uc := newUpdateUseCase(store)
	primePendingReport(store, "report-1")

	first, err := uc.Execute(context.Background(), UpdateStatusCommand{
		ReportID:       "report-1",
		NewStatus:      "dismissed",
		ReviewerID:     "mod-1",
		Resolution:     "not actionable",
		IdempotencyKey: "idem-dismiss-1",
	})
	if err != nil {
		t.Fatalf("dismiss: %v", err)
	}

	replayed, err := uc.Execute(context.Background(), UpdateStatusCommand{
		ReportID:       "report-1",
		NewStatus:      "dismissed",
		ReviewerID:     "mod-1",
		Resolution:     "not actionable",
		IdempotencyKey: "idem-dismiss-1",
	})
	if err != nil {
		t.Fatalf("replay must succeed: %v", err)
	}
	if replayed.ID != first.ID || replayed.Status != first.Status {
		t.Fatalf("replay must return the recorded outcome: %+v vs %+v", replayed, first)
	}
}

func TestUpdateStatusIdempotencyConflict(t *testing.T) {
	store := memory.NewStore()
	uc := newUpdateUseCase(store)
	primePendingReport(store, "report-1")

	if _, err := uc.Execute(context.Background(), UpdateStatusCommand{
		ReportID:       "report-1",
		NewStatus:      "under_review",
		ReviewerID:     "mod-1",
		IdempotencyKey: "idem-shared",
	}); err != nil {
		t.Fatalf("first update: %v", err)
	}

	_, err := uc.Execute(context.Background(), UpdateStatusCommand{
		ReportID:       "report-1",
		NewStatus:      "resolved",
		ReviewerID:     "mod-1",
		IdempotencyKey: "idem-shared",
	})
	if !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("expected ErrIdempotencyConflict, got %v", err)
	}
}

func TestUpdateStatusRequiresIdempotencyKey(t *testing.T) {
	store := memory.NewStore()
	uc := newUpdateUseCase(store)
	primePendingReport(store, "report-1")

	_, err := uc.Execute(context.Background(), UpdateStatusCommand{
		ReportID:   "report-1",
		NewStatus:  "under_review",
		ReviewerID: "mod-1",
	})
	if !errors.Is(err, domainerrors.ErrIdempotencyKeyRequired) {
		t.Fatalf("expected ErrIdempotencyKeyRequired, got %v", err)
	}
}

func TestUpdateStatusUnknownReport(t *testing.T) {
	store := memory.NewStore()
	uc := newUpdateUseCase(store)

	_, err := uc.Execute(context.Background(), UpdateStatusCommand{
		ReportID:       "missing",
		NewStatus:      "under_review",
		ReviewerID:     "mod-1",
		IdempotencyKey: "idem-1",
	})
	if !errors.Is(err, domainerrors.ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
}
