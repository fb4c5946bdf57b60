package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quiz-rewards-engine/internal/domain"
)

// ChallengeLoader loads challenge JSONB from Postgres.
type ChallengeLoader struct {
	pool *pgxpool.Pool
}

func NewChallengeLoader(pool *pgxpool.Pool) *ChallengeLoader {
	return &ChallengeLoader{pool: pool}
}

func (l *ChallengeLoader) LoadChallenge(ctx context.Context, id string) (domain.Challenge, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM challenges WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Challenge{}, fmt.Errorf("%w: %s", domain.ErrChallengeNotFound, id)
	}
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("load challenge: %w", err)
	}
	var ch domain.Challenge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return domain.Challenge{}, fmt.Errorf("unmarshal challenge: %w", err)
	}
	if ch.ID == "" {
		ch.ID = id
	}
	if err := ch.Validate(); err != nil {
		return domain.Challenge{}, err
	}
	return ch, nil
}

// SaveChallenge upserts a challenge document.
func (l *ChallengeLoader) SaveChallenge(ctx context.Context, ch domain.Challenge) error {
	if err := ch.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO challenges (id, data) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`, ch.ID, data)
	if err != nil {
		return fmt.Errorf("save challenge: %w", err)
	}
	return nil
}
