package redisadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainerrors "warden/contexts/trust-safety/appeal-service/domain/errors"
	"warden/contexts/trust-safety/appeal-service/ports"
)

const idempotencyKeyPrefix = "warden:appeals:idem:"

type idempotencyRecord struct {
	RequestHash     string `json:"request_hash"`
	ResponsePayload []byte `json:"response_payload"`
	ExpiresAt       int64  `json:"expires_at"`
}

// IdempotencyStore keeps resolution replay records in Redis with the
// record's own TTL so replays expire without a sweeper.
type IdempotencyStore struct {
	client *redis.Client
}

func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

func (s *IdempotencyStore) GetRecord(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	raw, err := s.client.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, fmt.Errorf("redis idempotency read: %w", err)
	}
	var record idempotencyRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return ports.IdempotencyRecord{}, false, fmt.Errorf("redis idempotency decode: %w", err)
	}
	expiresAt := time.Unix(record.ExpiresAt, 0).UTC()
	if record.ExpiresAt > 0 && expiresAt.Before(now.UTC()) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return ports.IdempotencyRecord{
		Key:             key,
		RequestHash:     record.RequestHash,
		ResponsePayload: append([]byte(nil), record.ResponsePayload...),
		ExpiresAt:       expiresAt,
	}, true, nil
}

func (s *IdempotencyStore) PutRecord(ctx context.Context, record ports.IdempotencyRecord) error {
	encoded, err := json.Marshal(idempotencyRecord{
		RequestHash:     record.RequestHash,
		ResponsePayload: record.ResponsePayload,
		ExpiresAt:       record.ExpiresAt.UTC().Unix(),
	})
	if err != nil {
		return fmt.Errorf("redis idempotency encode: %w", err)
	}
	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}
	set, err := s.client.SetNX(ctx, idempotencyKeyPrefix+record.Key, encoded, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis idempotency write: %w", err)
	}
	if set {
		return nil
	}

	existing, err := s.client.Get(ctx, idempotencyKeyPrefix+record.Key).Bytes()
	if err != nil {
		return fmt.Errorf("redis idempotency reread: %w", err)
	}
	if !bytes.Equal(existing, encoded) {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)
