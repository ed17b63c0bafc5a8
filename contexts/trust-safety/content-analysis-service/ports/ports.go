package ports

import (
	"context"
	"time"

	"warden/contexts/trust-safety/content-analysis-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

// ClassifierClient calls the external classification service with raw text.
type ClassifierClient interface {
	Classify(ctx context.Context, content string) (entities.ClassificationResult, error)
}

// ActivityStore keeps the rolling per-author window of recent whispers that
// the behavioral checks read.
type ActivityStore interface {
	RecentActivity(ctx context.Context, userID string, limit int) ([]entities.ActivityItem, error)
	RecordActivity(ctx context.Context, userID string, item entities.ActivityItem) error
}

// ReputationReader exposes the trust level of an author. Implementations
// typically delegate to the reputation service in process.
type ReputationReader interface {
	Level(ctx context.Context, userID string) (string, error)
}

// ViolationRecorder hands confirmed violation drafts to the reputation
// service for persistence and standing adjustment.
type ViolationRecorder interface {
	RecordViolations(ctx context.Context, drafts []entities.ViolationDraft) error
}

type AnalyzeInput struct {
	UserID    string
	WhisperID string
	Content   string
}

type IngestInput struct {
	UserID    string
	WhisperID string
	Content   string
}

// IngestResult is the outcome of running the external classifier over a
// whisper and converting its response.
type IngestResult struct {
	Rejected   bool
	Summary    string
	Violations []entities.ViolationDraft
}
