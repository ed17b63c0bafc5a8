package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"warden/contexts/trust-safety/reputation-service/domain/entities"
	"warden/contexts/trust-safety/reputation-service/ports"
)

// Store implements the repository and outbox ports in memory for tests and
// single-node runs.
type Store struct {
	mu sync.Mutex

	reputations map[string]entities.UserReputation
	violations  map[string]entities.UserViolation
	suspensions map[string]entities.Suspension
	outbox      []ports.OutboxMessage
	published   map[string]time.Time
	sequence    int
}

func NewStore() *Store {
	return &Store{
		reputations: map[string]entities.UserReputation{},
		violations:  map[string]entities.UserViolation{},
		suspensions: map[string]entities.Suspension{},
		published:   map[string]time.Time{},
	}
}

func (s *Store) GetReputation(ctx context.Context, userID string) (*entities.UserReputation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reputation, ok := s.reputations[userID]
	if !ok {
		return nil, nil
	}
	copied := reputation
	copied.ViolationHistory = append([]string(nil), reputation.ViolationHistory...)
	return &copied, nil
}

func (s *Store) SaveReputation(ctx context.Context, reputation entities.UserReputation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reputation.ViolationHistory = append([]string(nil), reputation.ViolationHistory...)
	s.reputations[reputation.UserID] = reputation
	return nil
}

// PrimeReputation seeds a reputation row for in-memory runs.
func (s *Store) PrimeReputation(reputation entities.UserReputation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reputations[reputation.UserID] = reputation
}

func (s *Store) CreateViolation(ctx context.Context, violation entities.UserViolation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.violations[violation.ID] = violation
	return nil
}

func (s *Store) GetViolation(ctx context.Context, violationID string) (*entities.UserViolation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	violation, ok := s.violations[violationID]
	if !ok {
		return nil, nil
	}
	copied := violation
	return &copied, nil
}

func (s *Store) ListViolations(ctx context.Context, userID string, activeOnly bool, now time.Time) ([]entities.UserViolation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.UserViolation, 0)
	for _, violation := range s.violations {
		if violation.UserID != userID {
			continue
		}
		if activeOnly && !violation.Active(now) {
			continue
		}
		items = append(items, violation)
	}
	return items, nil
}

func (s *Store) MarkViolationExpired(ctx context.Context, violationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	violation, ok := s.violations[violationID]
	if !ok {
		return nil
	}
	violation.Expired = true
	s.violations[violationID] = violation
	return nil
}

func (s *Store) ListViolationsExpiringBefore(ctx context.Context, cutoff time.Time, limit int) ([]entities.UserViolation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	items := make([]entities.UserViolation, 0)
	for _, violation := range s.violations {
		if violation.Expired || violation.ExpiresAt == nil {
			continue
		}
		if violation.ExpiresAt.UTC().After(cutoff.UTC()) {
			continue
		}
		items = append(items, violation)
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (s *Store) CreateSuspension(ctx context.Context, suspension entities.Suspension) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suspensions[suspension.ID] = suspension
	return nil
}

func (s *Store) GetSuspension(ctx context.Context, suspensionID string) (*entities.Suspension, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	suspension, ok := s.suspensions[suspensionID]
	if !ok {
		return nil, nil
	}
	copied := suspension
	return &copied, nil
}

func (s *Store) UpdateSuspension(ctx context.Context, suspension entities.Suspension) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.suspensions[suspension.ID]; !ok {
		return nil
	}
	s.suspensions[suspension.ID] = suspension
	return nil
}

func (s *Store) ActiveSuspensionForUser(ctx context.Context, userID string, now time.Time) (*entities.Suspension, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, suspension := range s.suspensions {
		if suspension.UserID != userID {
			continue
		}
		if !suspension.ActiveAt(now) {
			continue
		}
		copied := suspension
		return &copied, nil
	}
	return nil, nil
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
	return fmt.Sprintf("rep-%d", s.sequence)
}

var _ ports.Repository = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
