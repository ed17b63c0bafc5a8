package services

import (
	"testing"

	"warden/contexts/trust-safety/reputation-service/domain/entities"
)

func TestWeightTable(t *testing.T) {
	standing := NewStanding(DefaultStandingConfig())

	cases := []struct {
		level  entities.Level
		weight float64
	}{
		{entities.LevelTrusted, 2.0},
		{entities.LevelVerified, 1.5},
		{entities.LevelStandard, 1.0},
		{entities.LevelFlagged, 0.5},
		{entities.LevelBanned, 0.0},
	}
	for _, tc := range cases {
		if got := standing.WeightForLevel(tc.level); got != tc.weight {
			t.Fatalf("weight for %s: expected %.1f, got %.1f", tc.level, tc.weight, got)
		}
	}
}

func TestWeightFailsOpen(t *testing.T) {
	standing := NewStanding(DefaultStandingConfig())

	if got := standing.WeightFor(nil); got != 1.0 {
		t.Fatalf("nil reputation must carry standard weight, got %.1f", got)
	}
	if got := standing.WeightForLevel("superuser"); got != 1.0 {
		t.Fatalf("unrecognized level must carry standard weight, got %.1f", got)
	}
}

func TestLevelForScoreIsMonotone(t *testing.T) {
	standing := NewStanding(DefaultStandingConfig())

	cases := []struct {
		score      int
		violations int
		level      entities.Level
	}{
		{95, 0, entities.LevelTrusted},
		{95, 1, entities.LevelVerified},
		{80, 0, entities.LevelVerified},
		{80, 2, entities.LevelStandard},
		{50, 0, entities.LevelStandard},
		{50, 3, entities.LevelFlagged},
		{20, 0, entities.LevelFlagged},
		{5, 0, entities.LevelBanned},
	}
	for _, tc := range cases {
		if got := standing.LevelForScore(tc.score, tc.violations); got != tc.level {
			t.Fatalf("score=%d violations=%d: expected %s, got %s", tc.score, tc.violations, tc.level, got)
		}
	}
}

func TestPenaltyForSeverity(t *testing.T) {
	standing := NewStanding(DefaultStandingConfig())

	if low, critical := standing.PenaltyForSeverity(entities.SeverityLow), standing.PenaltyForSeverity(entities.SeverityCritical); low >= critical {
		t.Fatalf("critical penalty must exceed low: low=%d critical=%d", low, critical)
	}
	if got := standing.PenaltyForSeverity("unheard-of"); got != 10 {
		t.Fatalf("unknown severity must use the default penalty, got %d", got)
	}
}

func TestClampScore(t *testing.T) {
	if got := ClampScore(-5); got != 0 {
		t.Fatalf("expected floor clamp, got %d", got)
	}
	if got := ClampScore(140); got != 100 {
		t.Fatalf("expected ceiling clamp, got %d", got)
	}
	if got := ClampScore(42); got != 42 {
		t.Fatalf("in-range score must be untouched, got %d", got)
	}
}
