// Package sqlite stores the ledger in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // driver: sqlite
	"quiz-rewards-engine/internal/domain"
)

const DefaultDSN = "file:gamify.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"

const schema = `
CREATE TABLE IF NOT EXISTS ledger (
  username TEXT PRIMARY KEY,
  role TEXT NOT NULL,
  points INTEGER NOT NULL DEFAULT 0,
  level INTEGER NOT NULL DEFAULT 1,
  medals_json TEXT NOT NULL DEFAULT '[]'
);
`

type LedgerStore struct {
	db *sql.DB
}

// Open opens the database and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*LedgerStore, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &LedgerStore{db: db}, nil
}

func (s *LedgerStore) Close() error {
	return s.db.Close()
}

func (s *LedgerStore) Load(ctx context.Context) (map[string]domain.LedgerRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT username, role, points, level, medals_json FROM ledger`)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	defer rows.Close()

	ledger := make(map[string]domain.LedgerRecord)
	for rows.Next() {
		var (
			username, role, medals string
			rec                    domain.LedgerRecord
		)
		if err := rows.Scan(&username, &role, &rec.Points, &rec.Level, &medals); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		rec.Role = domain.Role(role)
		if err := json.Unmarshal([]byte(medals), &rec.Medals); err != nil {
			return nil, fmt.Errorf("decode medals for %s: %w", username, err)
		}
		ledger[username] = rec
	}
	return ledger, rows.Err()
}

func (s *LedgerStore) Save(ctx context.Context, ledger map[string]domain.LedgerRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger`); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ledger (username, role, points, level, medals_json) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for username, rec := range ledger {
		medals := rec.Medals
		if medals == nil {
			medals = []string{}
		}
		data, err := json.Marshal(medals)
		if err != nil {
			return fmt.Errorf("encode medals for %s: %w", username, err)
		}
		if _, err := stmt.ExecContext(ctx, username, string(rec.Role), rec.Points, rec.Level, string(data)); err != nil {
			return fmt.Errorf("insert %s: %w", username, err)
		}
	}
	return tx.Commit()
}
