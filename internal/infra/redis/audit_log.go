package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"quiz-rewards-engine/internal/domain"
)

// AuditLog appends JSON records to a Redis list; maxLen > 0 trims the oldest entries.
type AuditLog struct {
	client *redis.Client
	key    string
	maxLen int64
	clock  func() time.Time
}

func NewAuditLog(client *redis.Client, key string, maxLen int64) *AuditLog {
	return &AuditLog{client: client, key: key, maxLen: maxLen, clock: time.Now}
}

func (l *AuditLog) Add(ctx context.Context, event, username string, meta map[string]any) error {
	if meta == nil {
		meta = map[string]any{}
	}
	data, err := json.Marshal(domain.AuditRecord{
		ID:        uuid.NewString(),
		Timestamp: l.clock().Truncate(time.Second),
		Event:     event,
		Username:  username,
		Meta:      meta,
	})
	if err != nil {
		return fmt.Errorf("encode audit record: %w", err)
	}

	pipe := l.client.Pipeline()
	pipe.RPush(ctx, l.key, data)
	if l.maxLen > 0 {
		pipe.LTrim(ctx, l.key, -l.maxLen, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

// Tail returns the last n records, oldest first.
func (l *AuditLog) Tail(ctx context.Context, n int) ([]domain.AuditRecord, error) {
	if n <= 0 {
		return []domain.AuditRecord{}, nil
	}
	raw, err := l.client.LRange(ctx, l.key, int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	out := make([]domain.AuditRecord, 0, len(raw))
	for _, item := range raw {
		var rec domain.AuditRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
