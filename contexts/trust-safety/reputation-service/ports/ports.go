package ports

import (
	"context"
	"encoding/json"
	"time"

	"warden/contexts/trust-safety/reputation-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() string
}

// Repository is the narrow persistence contract the service needs. Lookups
// resolve missing rows to a nil result, not an error.
type Repository interface {
	GetReputation(ctx context.Context, userID string) (*entities.UserReputation, error)
	SaveReputation(ctx context.Context, reputation entities.UserReputation) error

	CreateViolation(ctx context.Context, violation entities.UserViolation) error
	GetViolation(ctx context.Context, violationID string) (*entities.UserViolation, error)
	ListViolations(ctx context.Context, userID string, activeOnly bool, now time.Time) ([]entities.UserViolation, error)
	MarkViolationExpired(ctx context.Context, violationID string) error
	ListViolationsExpiringBefore(ctx context.Context, cutoff time.Time, limit int) ([]entities.UserViolation, error)

	CreateSuspension(ctx context.Context, suspension entities.Suspension) error
	GetSuspension(ctx context.Context, suspensionID string) (*entities.Suspension, error)
	UpdateSuspension(ctx context.Context, suspension entities.Suspension) error
	ActiveSuspensionForUser(ctx context.Context, userID string, now time.Time) (*entities.Suspension, error)
}

// OutboxRepository appends events alongside state changes for the worker
// relay to publish.
type OutboxRepository interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// EventPublisher is satisfied by the platform messaging adapters.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, payload []byte) error
}

type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type RecordViolationInput struct {
	UserID        string
	WhisperID     string
	ViolationType string
	Reason        string
	Severity      string
	ReportCount   int
	ModeratorID   string
}

type SuspendInput struct {
	UserID      string
	Type        string
	BanType     string
	Reason      string
	ModeratorID string
	EndDate     *time.Time
}
