// Package file keeps the ledger, audit log and challenge catalog on local disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"quiz-rewards-engine/internal/domain"
)

// LedgerStore is a flat JSON file rewritten in full on every Save.
type LedgerStore struct {
	path string
	mu   sync.Mutex
}

// NewLedgerStore creates the file with an empty object if it does not exist.
func NewLedgerStore(path string) (*LedgerStore, error) {
	if err := ensureFile(path, []byte("{}")); err != nil {
		return nil, err
	}
	return &LedgerStore{path: path}, nil
}

func (s *LedgerStore) Load(_ context.Context) (map[string]domain.LedgerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	ledger := map[string]domain.LedgerRecord{}
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	return ledger, nil
}

func (s *LedgerStore) Save(_ context.Context, ledger map[string]domain.LedgerRecord) error {
	if ledger == nil {
		ledger = map[string]domain.LedgerRecord{}
	}
	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

func ensureFile(path string, initial []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return os.WriteFile(path, initial, 0o644)
	}
	return err
}
