package services

import (
	"testing"

	"warden/contexts/trust-safety/report-service/domain/entities"
)

func TestCalculatePriorityEndToEnd(t *testing.T) {
	engine := NewPriorityEngine(DefaultPriorityConfig())
	trusted := &ReputationSnapshot{Level: "trusted", Score: 95}

	if got := engine.CalculatePriority(trusted, entities.CategoryViolence); got != entities.PriorityCritical {
		t.Fatalf("trusted/95 + violence: expected CRITICAL, got %s", got)
	}
	if got := engine.CalculatePriority(trusted, entities.CategoryHarassment); got != entities.PriorityHigh {
		t.Fatalf("trusted/95 + harassment: expected HIGH, got %s", got)
	}

	flagged := &ReputationSnapshot{Level: "flagged", Score: 30}
	if got := engine.CalculatePriority(flagged, entities.CategorySpam); got != entities.PriorityLow {
		t.Fatalf("flagged/30 + spam: expected LOW, got %s", got)
	}
}

func TestCalculatePriorityAlwaysReturnsDefinedTier(t *testing.T) {
	engine := NewPriorityEngine(DefaultPriorityConfig())
	levels := []string{"trusted", "verified", "standard", "flagged", "banned"}
	categories := []entities.Category{
		entities.CategoryHarassment, entities.CategoryHateSpeech, entities.CategoryViolence,
		entities.CategorySexualContent, entities.CategorySpam, entities.CategoryScam,
		entities.CategoryCopyright, entities.CategoryPersonalInfo, entities.CategoryMinorSafety,
		entities.CategoryOther,
	}
	for _, level := range levels {
		for _, score := range []int{0, 20, 21, 50, 89, 90, 100} {
			for _, category := range categories {
				priority := engine.CalculatePriority(&ReputationSnapshot{Level: level, Score: score}, category)
				if !entities.IsValidPriority(priority) {
					t.Fatalf("level=%s score=%d category=%s produced invalid priority %q", level, score, category, priority)
				}
			}
		}
	}
}

func TestCalculatePriorityFailsToMedium(t *testing.T) {
	engine := NewPriorityEngine(DefaultPriorityConfig())

	if got := engine.CalculatePriority(nil, entities.CategorySpam); got != entities.PriorityMedium {
		t.Fatalf("nil reputation must resolve to MEDIUM, got %s", got)
	}
	if got := engine.CalculatePriority(&ReputationSnapshot{Level: "wizard", Score: 50}, entities.CategorySpam); got != entities.PriorityMedium {
		t.Fatalf("unknown level must resolve to MEDIUM, got %s", got)
	}
	if got := engine.CalculatePriority(&ReputationSnapshot{Level: "standard", Score: 50}, "gossip"); got != entities.PriorityMedium {
		t.Fatalf("unknown category must resolve to MEDIUM, got %s", got)
	}
}

func TestReputationScoreFineAdjustment(t *testing.T) {
	engine := NewPriorityEngine(DefaultPriorityConfig())

	// standard baseline 45 x harassment 1.5 = 67.5 -> MEDIUM before adjustment.
	if got := engine.CalculatePriority(&ReputationSnapshot{Level: "standard", Score: 50}, entities.CategoryHarassment); got != entities.PriorityMedium {
		t.Fatalf("mid-score standard must stay MEDIUM, got %s", got)
	}
	if got := engine.CalculatePriority(&ReputationSnapshot{Level: "standard", Score: 90}, entities.CategoryHarassment); got != entities.PriorityHigh {
		t.Fatalf("score 90 must boost one step to HIGH, got %s", got)
	}
	if got := engine.CalculatePriority(&ReputationSnapshot{Level: "standard", Score: 20}, entities.CategoryHarassment); got != entities.PriorityLow {
		t.Fatalf("score 20 must reduce one step to LOW, got %s", got)
	}
}

func TestCalculateReputationWeight(t *testing.T) {
	engine := NewPriorityEngine(DefaultPriorityConfig())

	cases := []struct {
		level  string
		weight float64
	}{
		{"trusted", 2.0},
		{"verified", 1.5},
		{"standard", 1.0},
		{"flagged", 0.5},
		{"banned", 0.0},
	}
	for _, tc := range cases {
		if got := engine.CalculateReputationWeight(&ReputationSnapshot{Level: tc.level}); got != tc.weight {
			t.Fatalf("weight for %s: expected %.1f, got %.1f", tc.level, tc.weight, got)
		}
	}
	if got := engine.CalculateReputationWeight(nil); got != 1.0 {
		t.Fatalf("nil reputation weight must be 1.0, got %.1f", got)
	}
	if got := engine.CalculateReputationWeight(&ReputationSnapshot{Level: "mystery"}); got != 1.0 {
		t.Fatalf("unrecognized level weight must be 1.0, got %.1f", got)
	}
}

func TestEscalatePriorityMonotoneAndIdempotentAtCeiling(t *testing.T) {
	steps := map[entities.Priority]entities.Priority{
		entities.PriorityLow:      entities.PriorityMedium,
		entities.PriorityMedium:   entities.PriorityHigh,
		entities.PriorityHigh:     entities.PriorityCritical,
		entities.PriorityCritical: entities.PriorityCritical,
	}
	for from, to := range steps {
		if got := EscalatePriority(from); got != to {
			t.Fatalf("escalate %s: expected %s, got %s", from, to, got)
		}
	}
	for from := range steps {
		once := EscalatePriority(from)
		twice := EscalatePriority(once)
		if twice.Rank() < once.Rank() {
			t.Fatalf("escalation must be monotone: %s -> %s -> %s", from, once, twice)
		}
	}
	if got := EscalatePriority("URGENT"); got != entities.PriorityMedium {
		t.Fatalf("unrecognized priority must escalate to MEDIUM, got %s", got)
	}
}

func TestShouldEscalateThresholds(t *testing.T) {
	engine := NewPriorityEngine(DefaultPriorityConfig())

	cases := []struct {
		priority entities.Priority
		count    int
		expect   bool
	}{
		{entities.PriorityCritical, 1, true},
		{entities.PriorityHigh, 2, false},
		{entities.PriorityHigh, 3, true},
		{entities.PriorityMedium, 4, false},
		{entities.PriorityMedium, 5, true},
		{entities.PriorityLow, 9, false},
		{entities.PriorityLow, 10, true},
	}
	for _, tc := range cases {
		if got := engine.ShouldEscalate(tc.priority, tc.count); got != tc.expect {
			t.Fatalf("shouldEscalate(%s, %d): expected %v, got %v", tc.priority, tc.count, tc.expect, got)
		}
	}
}

func TestPriorityDescriptionCoversAllTiers(t *testing.T) {
	for _, priority := range []entities.Priority{
		entities.PriorityLow, entities.PriorityMedium, entities.PriorityHigh, entities.PriorityCritical,
	} {
		if PriorityDescription(priority) == "" {
			t.Fatalf("missing description for %s", priority)
		}
	}
	if PriorityDescription("URGENT") != PriorityDescription(entities.PriorityMedium) {
		t.Fatal("unknown priority must describe as MEDIUM")
	}
}
