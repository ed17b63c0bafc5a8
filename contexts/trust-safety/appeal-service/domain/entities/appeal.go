package entities

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusExpired     Status = "expired"
)

func ParseStatus(raw string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected, StatusExpired:
		return status, true
	default:
		return "", false
	}
}

// Terminal statuses accept no further transitions.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusExpired
}

type ResolutionAction string

const (
	ActionApprove        ResolutionAction = "approve"
	ActionReject         ResolutionAction = "reject"
	ActionPartialApprove ResolutionAction = "partial_approve"
)

func ParseResolutionAction(raw string) (ResolutionAction, bool) {
	action := ResolutionAction(strings.ToLower(strings.TrimSpace(raw)))
	switch action {
	case ActionApprove, ActionReject, ActionPartialApprove:
		return action, true
	default:
		return "", false
	}
}

// Resolution records the moderator's final decision on an appeal. The
// reputation adjustment is the signed delta the moderator supplied, applied
// exactly once when the appeal resolves.
type Resolution struct {
	Action               ResolutionAction
	Reason               string
	ModeratorID          string
	ReputationAdjustment int
}

// Appeal is a user's challenge against a violation recorded on their
// account. At most one outstanding appeal exists per violation.
type Appeal struct {
	ID          string
	UserID      string
	WhisperID   string
	ViolationID string
	Reason      string
	Evidence    string
	Status      Status
	SubmittedAt time.Time
	UpdatedAt   time.Time
	ReviewedAt  *time.Time
	ReviewedBy  string
	Resolution  *Resolution
}
