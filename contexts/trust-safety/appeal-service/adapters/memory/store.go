package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"warden/contexts/trust-safety/appeal-service/domain/entities"
	"warden/contexts/trust-safety/appeal-service/ports"
)

// Store implements the repository, idempotency and outbox ports in memory
// for tests and single-node runs.
type Store struct {
	mu sync.Mutex

	appeals     map[string]entities.Appeal
	violations  map[string]ports.ViolationSnapshot
	idempotency map[string]ports.IdempotencyRecord
	outbox      []ports.OutboxMessage
	published   map[string]time.Time
	sequence    int
}

func NewStore() *Store {
	return &Store{
		appeals:     map[string]entities.Appeal{},
		violations:  map[string]ports.ViolationSnapshot{},
		idempotency: map[string]ports.IdempotencyRecord{},
		published:   map[string]time.Time{},
	}
}

func (s *Store) CreateAppeal(ctx context.Context, appeal entities.Appeal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appeals[appeal.ID] = copyAppeal(appeal)
	return nil
}

func (s *Store) GetAppeal(ctx context.Context, appealID string) (*entities.Appeal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	appeal, ok := s.appeals[appealID]
	if !ok {
		return nil, nil
	}
	copied := copyAppeal(appeal)
	return &copied, nil
}

func (s *Store) UpdateAppeal(ctx context.Context, appeal entities.Appeal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appeals[appeal.ID]; !ok {
		return nil
	}
	s.appeals[appeal.ID] = copyAppeal(appeal)
	return nil
}

func (s *Store) ListAppeals(ctx context.Context, filter ports.AppealFilter) ([]entities.Appeal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.Appeal, 0)
	for _, appeal := range s.appeals {
		if filter.UserID != "" && appeal.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && appeal.Status != filter.Status {
			continue
		}
		items = append(items, copyAppeal(appeal))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].SubmittedAt.Equal(items[j].SubmittedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].SubmittedAt.Before(items[j].SubmittedAt)
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(items) {
			return []entities.Appeal{}, nil
		}
		items = items[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(items) {
		items = items[:filter.Limit]
	}
	return items, nil
}

func (s *Store) FindOutstandingAppeal(ctx context.Context, violationID string) (*entities.Appeal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, appeal := range s.appeals {
		if appeal.ViolationID != violationID {
			continue
		}
		if appeal.Status != entities.StatusPending && appeal.Status != entities.StatusUnderReview {
			continue
		}
		copied := copyAppeal(appeal)
		return &copied, nil
	}
	return nil, nil
}

func (s *Store) ListStaleAppeals(ctx context.Context, cutoff time.Time, limit int) ([]entities.Appeal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	items := make([]entities.Appeal, 0)
	for _, appeal := range s.appeals {
		if appeal.Status != entities.StatusPending && appeal.Status != entities.StatusUnderReview {
			continue
		}
		if appeal.SubmittedAt.After(cutoff) {
			continue
		}
		items = append(items, copyAppeal(appeal))
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

// PrimeAppeal seeds an appeal row for in-memory runs.
func (s *Store) PrimeAppeal(appeal entities.Appeal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appeals[appeal.ID] = copyAppeal(appeal)
}

// PrimeViolation seeds a violation snapshot for the in-memory reader.
func (s *Store) PrimeViolation(violation ports.ViolationSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.violations[violation.ID] = violation
}

func (s *Store) Violation(ctx context.Context, violationID string) (*ports.ViolationSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	violation, ok := s.violations[violationID]
	if !ok {
		return nil, nil
	}
	copied := violation
	return &copied, nil
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
	return fmt.Sprintf("appeal-%d", s.sequence)
}

func copyAppeal(appeal entities.Appeal) entities.Appeal {
	copied := appeal
	if appeal.ReviewedAt != nil {
		reviewedAt := *appeal.ReviewedAt
		copied.ReviewedAt = &reviewedAt
	}
	if appeal.Resolution != nil {
		resolution := *appeal.Resolution
		copied.Resolution = &resolution
	}
	return copied
}

var _ ports.Repository = (*Store)(nil)
var _ ports.ViolationReader = (*Store)(nil)
var _ ports.IdempotencyStore = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
