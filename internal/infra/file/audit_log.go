package file

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"quiz-rewards-engine/internal/domain"
)

// AuditLog appends one JSON object per line.
type AuditLog struct {
	path  string
	clock func() time.Time
	mu    sync.Mutex
}

func NewAuditLog(path string) (*AuditLog, error) {
	if err := ensureFile(path, nil); err != nil {
		return nil, err
	}
	return &AuditLog{path: path, clock: time.Now}, nil
}

func (l *AuditLog) Add(_ context.Context, event, username string, meta map[string]any) error {
	if meta == nil {
		meta = map[string]any{}
	}
	line, err := json.Marshal(domain.AuditRecord{
		ID:        uuid.NewString(),
		Timestamp: l.clock().Truncate(time.Second),
		Event:     event,
		Username:  username,
		Meta:      meta,
	})
	if err != nil {
		return fmt.Errorf("encode audit record: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

// Tail returns up to n records, oldest first. Blank and malformed lines are skipped.
func (l *AuditLog) Tail(_ context.Context, n int) ([]domain.AuditRecord, error) {
	if n <= 0 {
		return []domain.AuditRecord{}, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.AuditRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > n {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	out := make([]domain.AuditRecord, 0, len(lines))
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		var rec domain.AuditRecord
		if err := json.Unmarshal([]byte(ln), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
