package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"quiz-rewards-engine/internal/domain"
)

// LedgerStore keeps the ledger in one Redis hash: HSET {key} {username} {json record}.
// Save replaces the hash atomically (DEL + HSET in MULTI).
type LedgerStore struct {
	client *redis.Client
	key    string
}

func NewLedgerStore(client *redis.Client, key string) *LedgerStore {
	return &LedgerStore{client: client, key: key}
}

func (s *LedgerStore) Load(ctx context.Context) (map[string]domain.LedgerRecord, error) {
	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	ledger := make(map[string]domain.LedgerRecord, len(raw))
	for username, data := range raw {
		var rec domain.LedgerRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decode ledger record %s: %w", username, err)
		}
		ledger[username] = rec
	}
	return ledger, nil
}

func (s *LedgerStore) Save(ctx context.Context, ledger map[string]domain.LedgerRecord) error {
	fields := make(map[string]interface{}, len(ledger))
	for username, rec := range ledger {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode ledger record %s: %w", username, err)
		}
		fields[username] = data
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key)
	if len(fields) > 0 {
		pipe.HSet(ctx, s.key, fields)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}
