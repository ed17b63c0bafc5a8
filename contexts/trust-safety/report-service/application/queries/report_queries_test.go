package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"warden/contexts/trust-safety/report-service/adapters/memory"
	"warden/contexts/trust-safety/report-service/domain/entities"
	domainerrors "warden/contexts/trust-safety/report-service/domain/errors"
)

func seedReports(store *memory.Store) {
	now := time.Now().UTC()
	store.PrimeReport(entities.Report{
		ID: "report-1", TargetID: "whisper-1", ReporterID: "reporter-1",
		Category: entities.CategorySpam, Priority: entities.PriorityMedium,
		Status: entities.StatusPending, EscalatedCount: 1,
		CreatedAt: now.Add(-2 * time.Hour), UpdatedAt: now,
	})
	store.PrimeReport(entities.Report{
		ID: "report-2", TargetID: "whisper-1", ReporterID: "reporter-2",
		Category: entities.CategoryHarassment, Priority: entities.PriorityHigh,
		Status: entities.StatusUnderReview,
		CreatedAt: now.Add(-time.Hour), UpdatedAt: now,
	})
	store.PrimeReport(entities.Report{
		ID: "report-3", TargetID: "whisper-2", ReporterID: "reporter-1",
		Category: entities.CategorySpam, Priority: entities.PriorityLow,
		Status: entities.StatusResolved,
		CreatedAt: now, UpdatedAt: now,
	})
}

func TestGetReportNotFound(t *testing.T) {
	uc := QueryUseCase{Repository: memory.NewStore()}
	if _, err := uc.GetReport(context.Background(), "missing"); !errors.Is(err, domainerrors.ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
}

func TestListReportsFilters(t *testing.T) {
	store := memory.NewStore()
	seedReports(store)
	uc := QueryUseCase{Repository: store}

	byTarget, err := uc.ListReports(context.Background(), ListReportsQuery{TargetID: "whisper-1"})
	if err != nil {
		t.Fatalf("list by target: %v", err)
	}
	if len(byTarget) != 2 {
		t.Fatalf("expected 2 reports for whisper-1, got %d", len(byTarget))
	}

	byStatus, err := uc.ListReports(context.Background(), ListReportsQuery{Status: "resolved"})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].ID != "report-3" {
		t.Fatalf("expected only report-3 resolved, got %+v", byStatus)
	}

	if _, err := uc.ListReports(context.Background(), ListReportsQuery{Status: "archived"}); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("unknown status must be rejected, got %v", err)
	}
	if _, err := uc.ListReports(context.Background(), ListReportsQuery{Category: "gossip"}); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("unknown category must be rejected, got %v", err)
	}
}

func TestTargetStatsAggregation(t *testing.T) {
	store := memory.NewStore()
	seedReports(store)
	uc := QueryUseCase{Repository: store}

	stats, err := uc.TargetStats(context.Background(), "whisper-1")
	if err != nil {
		t.Fatalf("target stats: %v", err)
	}
	if stats.Total != 2 {
		t.Fatalf("expected 2 total, got %d", stats.Total)
	}
	if stats.UniqueReporters != 2 {
		t.Fatalf("expected 2 unique reporters, got %d", stats.UniqueReporters)
	}
	if stats.ByCategory[entities.CategorySpam] != 1 || stats.ByCategory[entities.CategoryHarassment] != 1 {
		t.Fatalf("unexpected category breakdown: %+v", stats.ByCategory)
	}
	if stats.EscalationRate != 0.5 {
		t.Fatalf("one of two reports escalated, expected rate 0.5, got %.2f", stats.EscalationRate)
	}
}

func TestTargetStatsRequiresTarget(t *testing.T) {
	uc := QueryUseCase{Repository: memory.NewStore()}
	if _, err := uc.TargetStats(context.Background(), "  "); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
