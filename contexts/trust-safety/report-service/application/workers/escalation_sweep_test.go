package workers

import (
	"context"
	"testing"
	"time"

	"warden/contexts/trust-safety/report-service/adapters/memory"
	"warden/contexts/trust-safety/report-service/domain/entities"
	"warden/contexts/trust-safety/report-service/domain/services"
)

func countEvents(store *memory.Store, eventType string) int {
	count := 0
	for _, event := range store.OutboxEvents() {
		if event == eventType {
			count++
		}
	}
	return count
}

func TestEscalationSweepPromotesAccumulatedPressure(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	for _, id := range []string{"report-1", "report-2", "report-3"} {
		store.PrimeReport(entities.Report{
			ID:         id,
			TargetType: entities.TargetWhisper,
			TargetID:   "whisper-9",
			ReporterID: "reporter-" + id,
			Category:   entities.CategorySpam,
			Priority:   entities.PriorityHigh,
			Status:     entities.StatusPending,
			CreatedAt:  now.Add(-time.Hour),
			UpdatedAt:  now.Add(-time.Hour),
		})
	}

	sweep := EscalationSweep{
		Repository: store,
		Outbox:     store,
		Engine:     services.NewPriorityEngine(services.PriorityConfig{}),
		Clock:      store,
		IDGen:      store,
	}
	if err := sweep.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	report, err := store.GetReport(context.Background(), "report-1")
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if report.Priority != entities.PriorityCritical {
		t.Fatalf("three high reports must escalate to critical, got %s", report.Priority)
	}
	if report.EscalatedCount != 1 {
		t.Fatalf("expected one escalation, got %d", report.EscalatedCount)
	}
	if got := countEvents(store, "report.escalated"); got != 3 {
		t.Fatalf("expected one event per escalated report, got %d", got)
	}
}

func TestEscalationSweepSecondPassIsNoOp(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	store.PrimeReport(entities.Report{
		ID:         "report-critical",
		TargetType: entities.TargetWhisper,
		TargetID:   "whisper-9",
		ReporterID: "reporter-1",
		Category:   entities.CategoryViolence,
		Priority:   entities.PriorityCritical,
		Status:     entities.StatusPending,
		CreatedAt:  now.Add(-time.Hour),
		UpdatedAt:  now.Add(-time.Hour),
	})

	sweep := EscalationSweep{
		Repository: store,
		Outbox:     store,
		Engine:     services.NewPriorityEngine(services.PriorityConfig{}),
		Clock:      store,
		IDGen:      store,
	}
	for i := 0; i < 3; i++ {
		if err := sweep.RunOnce(context.Background()); err != nil {
			t.Fatalf("sweep pass %d: %v", i+1, err)
		}
	}

	report, err := store.GetReport(context.Background(), "report-critical")
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if report.EscalatedCount != 0 {
		t.Fatalf("critical report must not churn, escalated %d times", report.EscalatedCount)
	}
	if got := countEvents(store, "report.escalated"); got != 0 {
		t.Fatalf("critical report must not emit escalation events, got %d", got)
	}
}
