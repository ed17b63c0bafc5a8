package ports

import (
	"context"
	"encoding/json"
	"time"

	"warden/contexts/trust-safety/report-service/domain/entities"
	"warden/contexts/trust-safety/report-service/domain/services"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() string
}

// ReportFilter is the field-filtered query surface over stored reports.
// Zero values mean "no constraint".
type ReportFilter struct {
	TargetID   string
	ReporterID string
	Status     entities.Status
	Category   entities.Category
	Priority   entities.Priority
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// Repository is the persistence contract for reports. Lookups resolve
// missing rows to nil, not an error.
type Repository interface {
	CreateReport(ctx context.Context, report entities.Report) error
	GetReport(ctx context.Context, reportID string) (*entities.Report, error)
	UpdateReport(ctx context.Context, report entities.Report) error
	ListReports(ctx context.Context, filter ReportFilter) ([]entities.Report, error)
	ListReportsByTarget(ctx context.Context, targetID string) ([]entities.Report, error)
	FindActiveReport(ctx context.Context, targetID string, reporterID string, category entities.Category) (*entities.Report, error)
	ListRecentTargets(ctx context.Context, since time.Time, limit int) ([]string, error)
}

// ReputationReader resolves the reporter's standing at submission time.
// Snapshot never fails hard: implementations degrade to nil on lookup
// problems so intake is never blocked.
type ReputationReader interface {
	Snapshot(ctx context.Context, userID string) (*services.ReputationSnapshot, error)
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
