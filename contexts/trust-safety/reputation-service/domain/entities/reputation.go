package entities

import (
	"strings"
	"time"
)

type Level string

const (
	LevelTrusted  Level = "trusted"
	LevelVerified Level = "verified"
	LevelStandard Level = "standard"
	LevelFlagged  Level = "flagged"
	LevelBanned   Level = "banned"
)

func ParseLevel(raw string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(LevelTrusted):
		return LevelTrusted, true
	case string(LevelVerified):
		return LevelVerified, true
	case string(LevelStandard):
		return LevelStandard, true
	case string(LevelFlagged):
		return LevelFlagged, true
	case string(LevelBanned):
		return LevelBanned, true
	default:
		return "", false
	}
}

func IsValidLevel(level Level) bool {
	switch level {
	case LevelTrusted, LevelVerified, LevelStandard, LevelFlagged, LevelBanned:
		return true
	default:
		return false
	}
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func ParseSeverity(raw string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(SeverityLow):
		return SeverityLow, true
	case string(SeverityMedium):
		return SeverityMedium, true
	case string(SeverityHigh):
		return SeverityHigh, true
	case string(SeverityCritical):
		return SeverityCritical, true
	default:
		return "", false
	}
}

// UserReputation is mutated only by this service, in response to violations
// or appeal resolutions.
type UserReputation struct {
	UserID           string
	Score            int
	Level            Level
	WhisperCount     int
	ApprovedCount    int
	FlaggedCount     int
	RejectedCount    int
	ViolationHistory []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// UserViolation is immutable after creation except for expiry.
type UserViolation struct {
	ID            string
	UserID        string
	WhisperID     string
	ViolationType string
	Reason        string
	Severity      Severity
	ReportCount   int
	ModeratorID   string
	CreatedAt     time.Time
	ExpiresAt     *time.Time
	Expired       bool
}

// Active reports whether the violation still exerts standing pressure.
func (v UserViolation) Active(now time.Time) bool {
	if v.Expired {
		return false
	}
	if v.ExpiresAt == nil {
		return true
	}
	return now.UTC().Before(v.ExpiresAt.UTC())
}

type SuspensionType string

const (
	SuspensionWarning   SuspensionType = "warning"
	SuspensionTemporary SuspensionType = "temporary"
	SuspensionPermanent SuspensionType = "permanent"
)

func ParseSuspensionType(raw string) (SuspensionType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(SuspensionWarning):
		return SuspensionWarning, true
	case string(SuspensionTemporary):
		return SuspensionTemporary, true
	case string(SuspensionPermanent):
		return SuspensionPermanent, true
	default:
		return "", false
	}
}

// Suspension records a moderator action against an account. Permanent
// suspensions never carry an EndDate.
type Suspension struct {
	ID          string
	UserID      string
	Type        SuspensionType
	BanType     string
	Reason      string
	ModeratorID string
	StartDate   time.Time
	EndDate     *time.Time
	IsActive    bool
}

// ActiveAt derives activity from EndDate for temporary suspensions while
// honoring an explicit moderator lift.
func (s Suspension) ActiveAt(now time.Time) bool {
	if !s.IsActive {
		return false
	}
	if s.Type == SuspensionTemporary && s.EndDate != nil {
		return now.UTC().Before(s.EndDate.UTC())
	}
	return true
}
