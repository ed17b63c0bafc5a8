package ports

import (
	"context"
	"encoding/json"
	"time"

	"warden/contexts/trust-safety/appeal-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() string
}

// AppealFilter narrows appeal listings. Zero values mean "no constraint".
type AppealFilter struct {
	UserID string
	Status entities.Status
	Limit  int
	Offset int
}

// Repository is the persistence contract for appeals. Lookups resolve
// missing rows to nil, not an error.
type Repository interface {
	CreateAppeal(ctx context.Context, appeal entities.Appeal) error
	GetAppeal(ctx context.Context, appealID string) (*entities.Appeal, error)
	UpdateAppeal(ctx context.Context, appeal entities.Appeal) error
	ListAppeals(ctx context.Context, filter AppealFilter) ([]entities.Appeal, error)
	FindOutstandingAppeal(ctx context.Context, violationID string) (*entities.Appeal, error)
	ListStaleAppeals(ctx context.Context, cutoff time.Time, limit int) ([]entities.Appeal, error)
}

// ViolationSnapshot is the slice of a violation the appeal workflow needs:
// ownership and age.
type ViolationSnapshot struct {
	ID        string
	UserID    string
	WhisperID string
	CreatedAt time.Time
	Expired   bool
}

// ViolationReader resolves the appealed violation from the reputation
// engine. Missing violations resolve to nil.
type ViolationReader interface {
	Violation(ctx context.Context, violationID string) (*ViolationSnapshot, error)
}

// ReputationApplier performs the single reputation mutation of an appeal
// resolution. The adjustment is signed and supplied by the caller.
type ReputationApplier interface {
	ApplyAppealResolution(ctx context.Context, userID string, appealID string, adjustment int) error
}

type IdempotencyRecord struct {
	Key             string
	RequestHash     string
	ResponsePayload []byte
	ExpiresAt       time.Time
}

type IdempotencyStore interface {
	GetRecord(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	PutRecord(ctx context.Context, record IdempotencyRecord) error
}

type OutboxRepository interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

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
