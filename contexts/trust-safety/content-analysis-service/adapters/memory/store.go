package memory

import (
	"context"
	"sync"
	"time"

	"warden/contexts/trust-safety/content-analysis-service/domain/entities"
	"warden/contexts/trust-safety/content-analysis-service/ports"
)

// Store implements every content-analysis port in memory. Classifier
// responses are primed per content string; anything unprimed comes back
// clean.
type Store struct {
	mu sync.RWMutex

	activity        map[string][]entities.ActivityItem
	levels          map[string]string
	violations      []entities.ViolationDraft
	classifications map[string]entities.ClassificationResult
}

func NewStore() *Store {
	return &Store{
		activity: map[string][]entities.ActivityItem{},
		levels: map[string]string{
			"user-trusted":  "trusted",
			"user-standard": "standard",
			"user-banned":   "banned",
		},
		classifications: map[string]entities.ClassificationResult{},
	}
}

func (s *Store) RecentActivity(ctx context.Context, userID string, limit int) ([]entities.ActivityItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.activity[userID]
	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}
	// Newest entries sit at the end; return the most recent limit items.
	recent := make([]entities.ActivityItem, limit)
	copy(recent, items[len(items)-limit:])
	return recent, nil
}

func (s *Store) RecordActivity(ctx context.Context, userID string, item entities.ActivityItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity[userID] = append(s.activity[userID], item)
	return nil
}

func (s *Store) Level(ctx context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.levels[userID], nil
}

// SetLevel primes a user's trust level for in-memory runs.
func (s *Store) SetLevel(userID string, level string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[userID] = level
}

func (s *Store) RecordViolations(ctx context.Context, drafts []entities.ViolationDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.violations = append(s.violations, drafts...)
	return nil
}

// Violations returns a copy of everything recorded so far.
func (s *Store) Violations() []entities.ViolationDraft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.ViolationDraft(nil), s.violations...)
}

func (s *Store) Classify(ctx context.Context, content string) (entities.ClassificationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if result, ok := s.classifications[content]; ok {
		return result, nil
	}
	return entities.ClassificationResult{
		Categories:     map[string]bool{},
		CategoryScores: map[string]float64{},
	}, nil
}

// PrimeClassification fixes the classifier response for an exact content
// string.
func (s *Store) PrimeClassification(content string, result entities.ClassificationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classifications[content] = result
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

var _ ports.ActivityStore = (*Store)(nil)
var _ ports.ReputationReader = (*Store)(nil)
var _ ports.ViolationRecorder = (*Store)(nil)
var _ ports.ClassifierClient = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
