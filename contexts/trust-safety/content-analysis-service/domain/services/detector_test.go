package services

import (
	"strings"
	"testing"
	"time"

	"warden/contexts/trust-safety/content-analysis-service/domain/entities"
)

func activityWindow(base time.Time, gapSeconds float64, contents ...string) []entities.ActivityItem {
	items := make([]entities.ActivityItem, 0, len(contents))
	for i, content := range contents {
		items = append(items, entities.ActivityItem{
			WhisperID: "whisper-" + strings.Repeat("x", i+1),
			Content:   content,
			PostedAt:  base.Add(time.Duration(float64(i) * gapSeconds * float64(time.Second))),
		})
	}
	return items
}

func TestAnalyzeCleanContentProducesNoFlags(t *testing.T) {
	detector := NewDetector(DetectorConfig{})

	result := detector.Analyze("had a quiet walk by the river this morning", nil)

	if len(result.ContentFlags) != 0 || len(result.BehavioralFlags) != 0 {
		t.Fatalf("expected no flags, got content=%d behavioral=%d", len(result.ContentFlags), len(result.BehavioralFlags))
	}
	if result.IsSpam || result.IsScam {
		t.Fatalf("expected clean verdict, got spam=%v scam=%v", result.IsSpam, result.IsScam)
	}
	if result.SpamScore != 0 || result.ScamScore != 0 {
		t.Fatalf("expected zero scores, got spam=%.2f scam=%.2f", result.SpamScore, result.ScamScore)
	}
}

func TestAnalyzeFinancialLureRaisesScamScore(t *testing.T) {
	detector := NewDetector(DetectorConfig{})

	result := detector.Analyze("guaranteed returns on this investment opportunity, act now before it expires today", nil)

	if !result.IsScam {
		t.Fatalf("expected scam verdict, score %.2f", result.ScamScore)
	}
	if result.ScamScore <= result.SpamScore {
		t.Fatalf("expected scam score above spam score, got scam=%.2f spam=%.2f", result.ScamScore, result.SpamScore)
	}
	if !strings.HasPrefix(result.Reason, "Potential scam detected") {
		t.Fatalf("expected scam framing in reason, got %q", result.Reason)
	}
	found := false
	for _, flag := range result.ContentFlags {
		if flag.Type == entities.FlagFinancialLure {
			found = true
			if flag.Confidence <= 0 || flag.Confidence > 0.95 {
				t.Fatalf("confidence out of range: %.2f", flag.Confidence)
			}
			if len(flag.Evidence) == 0 {
				t.Fatal("expected matched phrases as evidence")
			}
		}
	}
	if !found {
		t.Fatal("expected a financial_lure flag")
	}
}

func TestAnalyzeDuplicateContentFlagged(t *testing.T) {
	detector := NewDetector(DetectorConfig{})
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	window := activityWindow(base, 3600,
		"check out my new garden photos from the weekend trip",
	)

	result := detector.Analyze("check out my new garden photos from the weekend trip", window)

	var duplicate *entities.BehavioralFlag
	for i := range result.BehavioralFlags {
		if result.BehavioralFlags[i].Type == entities.FlagDuplicateContent {
			duplicate = &result.BehavioralFlags[i]
		}
	}
	if duplicate == nil {
		t.Fatal("expected duplicate_content flag for identical text")
	}
	if duplicate.Confidence < 0.99 {
		t.Fatalf("identical text should score ~1.0, got %.2f", duplicate.Confidence)
	}
}

func TestAnalyzeNearMissSimilarityNotFlagged(t *testing.T) {
	detector := NewDetector(DetectorConfig{})
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	window := activityWindow(base, 3600,
		"alpha beta gamma delta epsilon zeta eta theta iota kappa",
	)

	// Half the tokens replaced, overlap well below the 0.8 gate.
	result := detector.Analyze("alpha beta gamma delta epsilon one two three four five", window)

	for _, flag := range result.BehavioralFlags {
		if flag.Type == entities.FlagDuplicateContent {
			t.Fatalf("did not expect duplicate flag, confidence %.2f", flag.Confidence)
		}
	}
}

func TestAnalyzeRapidAndPeriodicPosting(t *testing.T) {
	detector := NewDetector(DetectorConfig{})
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	// Four posts exactly 10s apart: rapid (gap < 30s) and perfectly periodic.
	window := activityWindow(base, 10,
		"first unrelated message about cooking",
		"second note entirely on hiking trails",
		"third thought regarding library books",
		"fourth remark about the weather today",
	)

	result := detector.Analyze("fifth distinct message on astronomy", window)

	var rapid, periodic bool
	for _, flag := range result.BehavioralFlags {
		switch flag.Type {
		case entities.FlagRapidPosting:
			rapid = true
		case entities.FlagPeriodicPosting:
			periodic = true
		}
	}
	if !rapid {
		t.Fatal("expected rapid_posting flag for 10s gaps")
	}
	if !periodic {
		t.Fatal("expected periodic_posting flag for zero-variance gaps")
	}
}

func TestAnalyzeEngagementBaitWithoutWindow(t *testing.T) {
	detector := NewDetector(DetectorConfig{})

	result := detector.Analyze("tag a friend and like and share if you agree", nil)

	found := false
	for _, flag := range result.BehavioralFlags {
		if flag.Type == entities.FlagEngagementBait {
			found = true
		}
	}
	if !found {
		t.Fatal("expected engagement_bait flag without an activity window")
	}
}

func TestCalculateSpamScoreEmptyInputIsZero(t *testing.T) {
	if got := CalculateSpamScore(nil, nil); got != 0 {
		t.Fatalf("expected 0 for empty input, got %.4f", got)
	}
	if got := CalculateScamScore(nil); got != 0 {
		t.Fatalf("expected 0 for empty input, got %.4f", got)
	}
}

func TestCalculateSpamScoreNonemptyStaysInUnitInterval(t *testing.T) {
	flags := []entities.ContentFlag{
		{Type: entities.FlagClickbait, Severity: entities.SeverityLow, Confidence: 0.5},
	}
	score := CalculateSpamScore(flags, nil)
	if score <= 0 || score > 1 {
		t.Fatalf("expected score in (0,1], got %.4f", score)
	}

	// Pile on enough weight to exceed 1 before clamping.
	behavioral := []entities.BehavioralFlag{
		{Type: entities.FlagDuplicateContent, Severity: entities.SeverityCritical, Confidence: 0.95},
		{Type: entities.FlagRapidPosting, Severity: entities.SeverityCritical, Confidence: 0.95},
	}
	score = CalculateSpamScore(flags, behavioral)
	if score != 1 {
		t.Fatalf("expected clamp to 1, got %.4f", score)
	}
}

func TestCalculateScamScoreIgnoresSpamOnlyFlags(t *testing.T) {
	flags := []entities.ContentFlag{
		{Type: entities.FlagClickbait, Severity: entities.SeverityHigh, Confidence: 0.9},
	}
	if got := CalculateScamScore(flags); got != 0 {
		t.Fatalf("clickbait should not bear on scam score, got %.4f", got)
	}
}

func TestDetermineSuggestedActionBands(t *testing.T) {
	cases := []struct {
		name  string
		spam  float64
		scam  float64
		level string
		want  entities.SuggestedAction
	}{
		{"low score warns", 0.2, 0.1, "standard", entities.ActionWarn},
		{"mid band stays warn", 0.5, 0.4, "standard", entities.ActionWarn},
		{"high score rejects", 0.75, 0.2, "standard", entities.ActionReject},
		{"scam drives the band", 0.1, 0.85, "standard", entities.ActionReject},
		{"trusted downgrades reject", 0.9, 0.0, "trusted", entities.ActionFlag},
		{"trusted keeps warn", 0.2, 0.0, "trusted", entities.ActionWarn},
		{"banned upgrades warn", 0.2, 0.0, "banned", entities.ActionFlag},
		{"banned keeps reject", 0.9, 0.0, "banned", entities.ActionReject},
		{"unknown level neutral", 0.9, 0.0, "mystery", entities.ActionReject},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetermineSuggestedAction(tc.spam, tc.scam, tc.level)
			if got != tc.want {
				t.Fatalf("spam=%.2f scam=%.2f level=%s: got %s want %s", tc.spam, tc.scam, tc.level, got, tc.want)
			}
		})
	}
}

func TestConvertToViolationsBothVerdictsYieldTwoDrafts(t *testing.T) {
	result := entities.SpamAnalysisResult{
		IsSpam:    true,
		IsScam:    true,
		SpamScore: 0.6,
		ScamScore: 0.95,
		ContentFlags: []entities.ContentFlag{
			{Type: entities.FlagPhishing, Severity: entities.SeverityHigh, Confidence: 0.8},
			{Type: entities.FlagUrgency, Severity: entities.SeverityMedium, Confidence: 0.5},
		},
		SuggestedAction: entities.ActionReject,
	}

	drafts := ConvertToViolations(result, "user-1", "whisper-1")

	if len(drafts) != 2 {
		t.Fatalf("expected exactly two drafts, got %d", len(drafts))
	}
	if drafts[0].ViolationType != entities.ViolationSpam {
		t.Fatalf("expected spam draft first, got %s", drafts[0].ViolationType)
	}
	if drafts[1].ViolationType != entities.ViolationScam {
		t.Fatalf("expected scam draft second, got %s", drafts[1].ViolationType)
	}
	if drafts[1].Severity != entities.SeverityCritical {
		t.Fatalf("scam score 0.95 should map to critical, got %s", drafts[1].Severity)
	}
	for _, draft := range drafts {
		if draft.UserID != "user-1" || draft.WhisperID != "whisper-1" {
			t.Fatalf("draft lost identifiers: %+v", draft)
		}
		if draft.SuggestedAction != entities.ActionReject {
			t.Fatalf("draft lost suggested action: %+v", draft)
		}
	}
}

func TestConvertToViolationsCleanResultYieldsNone(t *testing.T) {
	drafts := ConvertToViolations(entities.SpamAnalysisResult{}, "user-1", "whisper-1")
	if len(drafts) != 0 {
		t.Fatalf("expected no drafts for a clean result, got %d", len(drafts))
	}
}

func TestPatternConfidenceCapsBelowCertainty(t *testing.T) {
	if got := patternConfidence(0); got != 0 {
		t.Fatalf("zero hits should score 0, got %.2f", got)
	}
	if got := patternConfidence(1); got != 0.5 {
		t.Fatalf("one hit should score 0.5, got %.2f", got)
	}
	if got := patternConfidence(10); got != 0.95 {
		t.Fatalf("many hits should cap at 0.95, got %.2f", got)
	}
}

func TestGenerateReasonFallback(t *testing.T) {
	reason := GenerateReason(entities.SpamAnalysisResult{})
	if reason != "Content flagged by automated review" {
		t.Fatalf("unexpected fallback reason: %q", reason)
	}
}
