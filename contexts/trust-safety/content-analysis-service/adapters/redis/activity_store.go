package redisadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"warden/contexts/trust-safety/content-analysis-service/domain/entities"
	"warden/contexts/trust-safety/content-analysis-service/ports"
)

const (
	activityKeyPrefix  = "warden:analysis:activity:"
	defaultMaxItems    = 50
	defaultActivityTTL = 24 * time.Hour
)

type activityRecord struct {
	WhisperID string `json:"whisper_id"`
	Content   string `json:"content"`
	PostedAt  int64  `json:"posted_at"`
}

// ActivityStore keeps each author's recent whispers in a capped Redis list,
// newest first.
type ActivityStore struct {
	client   *redis.Client
	maxItems int
	ttl      time.Duration
}

func NewActivityStore(client *redis.Client) *ActivityStore {
	return &ActivityStore{
		client:   client,
		maxItems: defaultMaxItems,
		ttl:      defaultActivityTTL,
	}
}

func (s *ActivityStore) RecentActivity(ctx context.Context, userID string, limit int) ([]entities.ActivityItem, error) {
	if limit <= 0 || limit > s.maxItems {
		limit = s.maxItems
	}
	raw, err := s.client.LRange(ctx, activityKeyPrefix+userID, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis activity read: %w", err)
	}
	items := make([]entities.ActivityItem, 0, len(raw))
	for _, encoded := range raw {
		var record activityRecord
		if err := json.Unmarshal([]byte(encoded), &record); err != nil {
			continue
		}
		items = append(items, entities.ActivityItem{
			WhisperID: record.WhisperID,
			Content:   record.Content,
			PostedAt:  time.Unix(record.PostedAt, 0).UTC(),
		})
	}
	// LPUSH stores newest first; hand back oldest first.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

func (s *ActivityStore) RecordActivity(ctx context.Context, userID string, item entities.ActivityItem) error {
	encoded, err := json.Marshal(activityRecord{
		WhisperID: item.WhisperID,
		Content:   item.Content,
		PostedAt:  item.PostedAt.UTC().Unix(),
	})
	if err != nil {
		return fmt.Errorf("redis activity encode: %w", err)
	}
	key := activityKeyPrefix + userID
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, key, encoded)
		p.LTrim(ctx, key, 0, int64(s.maxItems-1))
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis activity write: %w", err)
	}
	return nil
}

var _ ports.ActivityStore = (*ActivityStore)(nil)
