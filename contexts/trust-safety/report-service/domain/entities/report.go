package entities

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryHarassment    Category = "harassment"
	CategoryHateSpeech    Category = "hate_speech"
	CategoryViolence      Category = "violence"
	CategorySexualContent Category = "sexual_content"
	CategorySpam          Category = "spam"
	CategoryScam          Category = "scam"
	CategoryCopyright     Category = "copyright"
	CategoryPersonalInfo  Category = "personal_info"
	CategoryMinorSafety   Category = "minor_safety"
	CategoryOther         Category = "other"
)

func ParseCategory(raw string) (Category, bool) {
	category := Category(strings.ToLower(strings.TrimSpace(raw)))
	if IsValidCategory(category) {
		return category, true
	}
	return "", false
}

func IsValidCategory(category Category) bool {
	switch category {
	case CategoryHarassment, CategoryHateSpeech, CategoryViolence,
		CategorySexualContent, CategorySpam, CategoryScam,
		CategoryCopyright, CategoryPersonalInfo, CategoryMinorSafety,
		CategoryOther:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Rank orders the four tiers; unknown priorities rank below LOW.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	default:
		return 0
	}
}

func IsValidPriority(priority Priority) bool {
	return priority.Rank() > 0
}

type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusResolved    Status = "resolved"
	StatusDismissed   Status = "dismissed"
	StatusFlagged     Status = "flagged"
)

func ParseStatus(raw string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case StatusPending, StatusUnderReview, StatusResolved, StatusDismissed, StatusFlagged:
		return status, true
	default:
		return "", false
	}
}

// CanTransition encodes the report state machine. Terminal statuses
// (resolved, dismissed) accept no further transitions.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusUnderReview || next == StatusResolved || next == StatusDismissed || next == StatusFlagged
	case StatusUnderReview:
		return next == StatusResolved || next == StatusDismissed || next == StatusFlagged
	case StatusFlagged:
		return next == StatusUnderReview || next == StatusResolved || next == StatusDismissed
	default:
		return false
	}
}

func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusDismissed
}

type TargetType string

const (
	TargetWhisper TargetType = "whisper"
	TargetComment TargetType = "comment"
)

// Report is a human complaint against a whisper or comment. At most one
// active report exists per (reporter, target, category); repeat submissions
// merge into the existing row.
type Report struct {
	ID               string
	TargetType       TargetType
	TargetID         string
	TargetAuthorID   string
	ReporterID       string
	ReporterLevel    string
	Category         Category
	Priority         Priority
	Status           Status
	Reason           string
	Evidence         string
	ReputationWeight float64
	ReportCount      int
	EscalatedCount   int
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ReviewedAt       *time.Time
	ReviewedBy       string
	Resolution       string
}

// ReportStats is a pure aggregation over a target's reports.
type ReportStats struct {
	TargetID        string
	Total           int
	UniqueReporters int
	ByCategory      map[Category]int
	ByPriority      map[Priority]int
	ByStatus        map[Status]int
	EscalationRate  float64
}
