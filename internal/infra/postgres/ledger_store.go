package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quiz-rewards-engine/internal/domain"
)

// LedgerStore persists the ledger in the ledger table, one row per user.
// Save replaces every row in a single transaction.
type LedgerStore struct {
	pool *pgxpool.Pool
}

func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

func (s *LedgerStore) Load(ctx context.Context) (map[string]domain.LedgerRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT username, role, points, level, medals FROM ledger`)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	defer rows.Close()

	ledger := make(map[string]domain.LedgerRecord)
	for rows.Next() {
		var (
			username string
			role     string
			medals   []byte
			rec      domain.LedgerRecord
		)
		if err := rows.Scan(&username, &role, &rec.Points, &rec.Level, &medals); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		rec.Role = domain.Role(role)
		if err := json.Unmarshal(medals, &rec.Medals); err != nil {
			return nil, fmt.Errorf("decode medals for %s: %w", username, err)
		}
		ledger[username] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return ledger, nil
}

func (s *LedgerStore) Save(ctx context.Context, ledger map[string]domain.LedgerRecord) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM ledger`); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	for username, rec := range ledger {
		medals := rec.Medals
		if medals == nil {
			medals = []string{}
		}
		data, err := json.Marshal(medals)
		if err != nil {
			return fmt.Errorf("encode medals for %s: %w", username, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO ledger (username, role, points, level, medals) VALUES ($1, $2, $3, $4, $5)`,
			username, string(rec.Role), rec.Points, rec.Level, data)
		if err != nil {
			return fmt.Errorf("insert %s: %w", username, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
