package memory

import (
	"context"
	"slices"
	"sync"

	"quiz-rewards-engine/internal/domain"
)

// LedgerStore is an in-memory implementation of app.LedgerStore.
type LedgerStore struct {
	mu     sync.RWMutex
	ledger map[string]domain.LedgerRecord
}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		ledger: make(map[string]domain.LedgerRecord),
	}
}

func (s *LedgerStore) Load(_ context.Context) (map[string]domain.LedgerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLedger(s.ledger), nil
}

func (s *LedgerStore) Save(_ context.Context, ledger map[string]domain.LedgerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = cloneLedger(ledger)
	return nil
}

func cloneLedger(in map[string]domain.LedgerRecord) map[string]domain.LedgerRecord {
	out := make(map[string]domain.LedgerRecord, len(in))
	for name, rec := range in {
		rec.Medals = slices.Clone(rec.Medals)
		out[name] = rec
	}
	return out
}
