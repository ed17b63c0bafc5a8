package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"warden/contexts/trust-safety/report-service/domain/entities"
	"warden/contexts/trust-safety/report-service/ports"
)

// Store implements the repository, idempotency and outbox ports in memory
// for tests and single-node runs.
type Store struct {
	mu sync.Mutex

	reports     map[string]entities.Report
	idempotency map[string]ports.IdempotencyRecord
	outbox      []ports.OutboxMessage
	published   map[string]time.Time
	sequence    int
}

func NewStore() *Store {
	return &Store{
		reports:     map[string]entities.Report{},
		idempotency: map[string]ports.IdempotencyRecord{},
		published:   map[string]time.Time{},
	}
}

func (s *Store) CreateReport(ctx context.Context, report entities.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = report
	return nil
}

func (s *Store) GetReport(ctx context.Context, reportID string) (*entities.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[reportID]
	if !ok {
		return nil, nil
	}
	copied := report
	return &copied, nil
}

func (s *Store) UpdateReport(ctx context.Context, report entities.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[report.ID]; !ok {
		return nil
	}
	s.reports[report.ID] = report
	return nil
}

func (s *Store) ListReports(ctx context.Context, filter ports.ReportFilter) ([]entities.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.Report, 0)
	for _, report := range s.reports {
		if filter.TargetID != "" && report.TargetID != filter.TargetID {
			continue
		}
		if filter.ReporterID != "" && report.ReporterID != filter.ReporterID {
			continue
		}
		if filter.Status != "" && report.Status != filter.Status {
			continue
		}
		if filter.Category != "" && report.Category != filter.Category {
			continue
		}
		if filter.Priority != "" && report.Priority != filter.Priority {
			continue
		}
		if !filter.From.IsZero() && report.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && report.CreatedAt.After(filter.To) {
			continue
		}
		items = append(items, report)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(items) {
			return []entities.Report{}, nil
		}
		items = items[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(items) {
		items = items[:filter.Limit]
	}
	return items, nil
}

func (s *Store) ListReportsByTarget(ctx context.Context, targetID string) ([]entities.Report, error) {
	return s.ListReports(ctx, ports.ReportFilter{TargetID: targetID})
}

func (s *Store) FindActiveReport(ctx context.Context, targetID string, reporterID string, category entities.Category) (*entities.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, report := range s.reports {
		if report.TargetID != targetID || report.ReporterID != reporterID || report.Category != category {
			continue
		}
		if report.Status.Terminal() {
			continue
		}
		copied := report
		return &copied, nil
	}
	return nil, nil
}

func (s *Store) ListRecentTargets(ctx context.Context, since time.Time, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	seen := map[string]struct{}{}
	targets := make([]string, 0)
	for _, report := range s.reports {
		if report.UpdatedAt.Before(since) {
			continue
		}
		if _, ok := seen[report.TargetID]; ok {
			continue
		}
		seen[report.TargetID] = struct{}{}
		targets = append(targets, report.TargetID)
	}
	sort.Strings(targets)
	if len(targets) > limit {
		targets = targets[:limit]
	}
	return targets, nil
}

// PrimeReport seeds a report row for in-memory runs.
func (s *Store) PrimeReport(report entities.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = report
}

func (s *Store) GetRecord(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.idempotency[key]
	if !ok {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.IsZero() && record.ExpiresAt.Before(now) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) PutRecord(ctx context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox = append(s.outbox, ports.OutboxMessage{
		OutboxID:     envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      append([]byte(nil), envelope.Data...),
		CreatedAt:    envelope.OccurredAt,
	})
	return nil
}

func (s *Store) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.outbox) {
		limit = len(s.outbox)
	}
	items := make([]ports.OutboxMessage, 0, limit)
	for _, message := range s.outbox {
		if _, ok := s.published[message.OutboxID]; ok {
			continue
		}
		items = append(items, message)
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published[outboxID] = publishedAt.UTC()
	return nil
}

// OutboxEvents returns the event types appended so far, for assertions.
func (s *Store) OutboxEvents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]string, 0, len(s.outbox))
	for _, message := range s.outbox {
		types = append(types, message.EventType)
	}
	return types
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence++
	return fmt.Sprintf("report-%d", s.sequence)
}

var _ ports.Repository = (*Store)(nil)
var _ ports.IdempotencyStore = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
