package entities

import (
	"strings"
	"time"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func IsValidSeverity(severity Severity) bool {
	switch severity {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

type SuggestedAction string

const (
	ActionWarn   SuggestedAction = "warn"
	ActionFlag   SuggestedAction = "flag"
	ActionReject SuggestedAction = "reject"
	ActionBan    SuggestedAction = "ban"
)

type ContentFlagType string

const (
	FlagFinancialLure ContentFlagType = "financial_lure"
	FlagPhishing      ContentFlagType = "phishing"
	FlagClickbait     ContentFlagType = "clickbait"
	FlagUrgency       ContentFlagType = "manufactured_urgency"
	FlagAbsoluteClaim ContentFlagType = "absolute_claim"
)

type BehavioralFlagType string

const (
	FlagDuplicateContent BehavioralFlagType = "duplicate_content"
	FlagRapidPosting     BehavioralFlagType = "rapid_posting"
	FlagCrossSimilarity  BehavioralFlagType = "cross_post_similarity"
	FlagPeriodicPosting  BehavioralFlagType = "periodic_posting"
	FlagEngagementBait   BehavioralFlagType = "engagement_bait"
)

// ContentFlag is a transient lexical finding over a single whisper body.
type ContentFlag struct {
	Type        ContentFlagType
	Severity    Severity
	Confidence  float64
	Description string
	Evidence    []string
}

// BehavioralFlag is a transient finding over an author's recent activity.
type BehavioralFlag struct {
	Type        BehavioralFlagType
	Severity    Severity
	Confidence  float64
	Description string
	Evidence    []string
}

// ActivityItem is one element of the caller-supplied recent-activity window.
type ActivityItem struct {
	WhisperID string
	Content   string
	PostedAt  time.Time
}

// SpamAnalysisResult is produced per analysis call and consumed immediately;
// the service never persists it.
type SpamAnalysisResult struct {
	IsSpam          bool
	IsScam          bool
	SpamScore       float64
	ScamScore       float64
	ContentFlags    []ContentFlag
	BehavioralFlags []BehavioralFlag
	SuggestedAction SuggestedAction
	Reason          string
}

type ViolationType string

const (
	ViolationSpam          ViolationType = "spam"
	ViolationScam          ViolationType = "scam"
	ViolationHarassment    ViolationType = "harassment"
	ViolationHateSpeech    ViolationType = "hate_speech"
	ViolationViolence      ViolationType = "violence"
	ViolationSexualContent ViolationType = "sexual_content"
	ViolationMinorSafety   ViolationType = "minor_safety"
	ViolationSelfHarm      ViolationType = "self_harm_risk"
	ViolationOther         ViolationType = "other"
)

// ViolationDraft is a violation record emitted by analysis before any
// persistence decision is taken by the caller.
type ViolationDraft struct {
	UserID          string
	WhisperID       string
	ViolationType   ViolationType
	Reason          string
	Severity        Severity
	Confidence      float64
	SuggestedAction SuggestedAction
}

// ClassificationResult is the response shape consumed from the external
// content-classification service.
type ClassificationResult struct {
	Flagged        bool
	Categories     map[string]bool
	CategoryScores map[string]float64
}

func (r ClassificationResult) Score(category string) float64 {
	if r.CategoryScores == nil {
		return 0
	}
	return r.CategoryScores[strings.TrimSpace(category)]
}
