package services

import (
	"strings"
	"testing"

	"warden/contexts/trust-safety/content-analysis-service/domain/entities"
)

func classification(flagged bool, scores map[string]float64) entities.ClassificationResult {
	categories := make(map[string]bool, len(scores))
	for category, score := range scores {
		categories[category] = score > 0.5
	}
	return entities.ClassificationResult{
		Flagged:        flagged,
		Categories:     categories,
		CategoryScores: scores,
	}
}

func TestConvertToViolationsRespectsThresholds(t *testing.T) {
	adapter := NewSignalAdapter(SignalAdapterConfig{})

	response := classification(false, map[string]float64{
		"harassment": 0.71,
		"hate":       0.70, // at threshold, not above
		"violence":   0.69,
	})

	drafts := adapter.ConvertToViolations(response, "user-1", "whisper-1")
	if len(drafts) != 1 {
		t.Fatalf("expected one draft, got %d", len(drafts))
	}
	if drafts[0].ViolationType != entities.ViolationHarassment {
		t.Fatalf("expected harassment draft, got %s", drafts[0].ViolationType)
	}
	if drafts[0].Confidence != 0.71 {
		t.Fatalf("expected confidence 0.71, got %.2f", drafts[0].Confidence)
	}
}

func TestConvertToViolationsCollapsesSubCategories(t *testing.T) {
	adapter := NewSignalAdapter(SignalAdapterConfig{})

	response := classification(true, map[string]float64{
		"self-harm/intent":       0.92,
		"self-harm/instructions": 0.88,
		"sexual/minors":          0.95,
	})

	drafts := adapter.ConvertToViolations(response, "user-1", "whisper-1")
	if len(drafts) != 3 {
		t.Fatalf("expected three drafts, got %d", len(drafts))
	}
	selfHarm := 0
	for _, draft := range drafts {
		if draft.ViolationType == entities.ViolationSelfHarm {
			selfHarm++
		}
	}
	if selfHarm != 2 {
		t.Fatalf("both self-harm sub-categories should map to %s, got %d drafts", entities.ViolationSelfHarm, selfHarm)
	}
	for _, draft := range drafts {
		if draft.ViolationType == entities.ViolationMinorSafety && draft.Severity != entities.SeverityCritical {
			t.Fatalf("sexual/minors at 0.95 should be critical, got %s", draft.Severity)
		}
	}
}

func TestConvertToViolationsCustomThreshold(t *testing.T) {
	adapter := NewSignalAdapter(SignalAdapterConfig{
		CategoryThresholds: map[string]float64{"harassment": 0.4},
	})

	response := classification(false, map[string]float64{
		"harassment":             0.5,
		"harassment/threatening": 0.5, // inherits the family root threshold
		"violence":               0.5, // unconfigured, default 0.7 applies
	})

	drafts := adapter.ConvertToViolations(response, "user-1", "whisper-1")
	if len(drafts) != 2 {
		t.Fatalf("expected two drafts with the lowered threshold, got %d", len(drafts))
	}
	for _, draft := range drafts {
		if draft.ViolationType != entities.ViolationHarassment {
			t.Fatalf("unexpected draft type %s", draft.ViolationType)
		}
	}
}

func TestConvertToViolationsUnrecognizedCategory(t *testing.T) {
	adapter := NewSignalAdapter(SignalAdapterConfig{})

	response := classification(false, map[string]float64{
		"graphic-conspiracy": 0.96,
	})

	drafts := adapter.ConvertToViolations(response, "user-1", "whisper-1")
	if len(drafts) != 1 {
		t.Fatalf("expected one draft, got %d", len(drafts))
	}
	if drafts[0].ViolationType != entities.ViolationOther {
		t.Fatalf("unrecognized category should map to %s, got %s", entities.ViolationOther, drafts[0].ViolationType)
	}
	if drafts[0].Severity != entities.SeverityCritical {
		t.Fatalf("score 0.96 should band to critical generically, got %s", drafts[0].Severity)
	}
}

func TestSeverityFamilies(t *testing.T) {
	cases := []struct {
		name   string
		family severityFamily
		score  float64
		want   entities.Severity
	}{
		{"severe critical", familySevere, 0.91, entities.SeverityCritical},
		{"severe high", familySevere, 0.75, entities.SeverityHigh},
		{"severe floor", familySevere, 0.2, entities.SeverityMedium},
		{"moderate peaks at high", familyModerate, 0.99, entities.SeverityHigh},
		{"moderate medium", familyModerate, 0.75, entities.SeverityMedium},
		{"moderate floor", familyModerate, 0.2, entities.SeverityLow},
		{"generic critical", familyGeneric, 0.95, entities.SeverityCritical},
		{"generic high", familyGeneric, 0.85, entities.SeverityHigh},
		{"generic medium", familyGeneric, 0.65, entities.SeverityMedium},
		{"generic low", familyGeneric, 0.64, entities.SeverityLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := severityFor(tc.family, tc.score); got != tc.want {
				t.Fatalf("severityFor(%d, %.2f) = %s, want %s", tc.family, tc.score, got, tc.want)
			}
		})
	}
}

func TestShouldReject(t *testing.T) {
	adapter := NewSignalAdapter(SignalAdapterConfig{})

	if !adapter.ShouldReject(classification(true, nil)) {
		t.Fatal("globally flagged response must reject")
	}
	if !adapter.ShouldReject(classification(false, map[string]float64{"sexual/minors": 0.81})) {
		t.Fatal("critical category above 0.8 must reject")
	}
	if adapter.ShouldReject(classification(false, map[string]float64{"sexual/minors": 0.8})) {
		t.Fatal("0.8 exactly is not above the gate")
	}
	if adapter.ShouldReject(classification(false, map[string]float64{"harassment": 0.99})) {
		t.Fatal("non-critical categories never reject on their own")
	}
}

func TestActionForViolation(t *testing.T) {
	cases := []struct {
		name          string
		violationType entities.ViolationType
		confidence    float64
		want          entities.SuggestedAction
	}{
		{"harassment high confidence bans", entities.ViolationHarassment, 0.95, entities.ActionBan},
		{"hate mid confidence rejects", entities.ViolationHateSpeech, 0.8, entities.ActionReject},
		{"harassment low confidence warns", entities.ViolationHarassment, 0.5, entities.ActionWarn},
		{"sexual high confidence rejects", entities.ViolationSexualContent, 0.95, entities.ActionReject},
		{"sexual mid confidence flags", entities.ViolationSexualContent, 0.8, entities.ActionFlag},
		{"sexual low confidence warns", entities.ViolationSexualContent, 0.6, entities.ActionWarn},
		{"default rejects at threshold", entities.ViolationViolence, 0.7, entities.ActionReject},
		{"default warns below threshold", entities.ViolationViolence, 0.69, entities.ActionWarn},
		{"unknown type uses default", entities.ViolationType("mystery"), 0.9, entities.ActionReject},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ActionForViolation(tc.violationType, tc.confidence); got != tc.want {
				t.Fatalf("ActionForViolation(%s, %.2f) = %s, want %s", tc.violationType, tc.confidence, got, tc.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	adapter := NewSignalAdapter(SignalAdapterConfig{})

	summary := adapter.Summarize(classification(true, map[string]float64{
		"harassment": 0.72,
		"hate":       0.91,
		"violence":   0.1,
	}))
	if !strings.HasPrefix(summary, "classifier flagged: hate (0.91)") {
		t.Fatalf("expected descending score order, got %q", summary)
	}
	if !strings.Contains(summary, "harassment (0.72)") {
		t.Fatalf("expected harassment in summary, got %q", summary)
	}
	if strings.Contains(summary, "violence") {
		t.Fatalf("sub-threshold categories must not appear, got %q", summary)
	}

	clean := adapter.Summarize(classification(false, map[string]float64{"violence": 0.1}))
	if clean != "classifier reported no concerning categories" {
		t.Fatalf("unexpected clean summary %q", clean)
	}
}
