package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quiz-rewards-engine/internal/domain"
)

func TestLedgerStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "data.json")

	store, err := NewLedgerStore(path)
	require.NoError(t, err)

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	ledger := map[string]domain.LedgerRecord{
		"alice": {Role: domain.RoleStudent, Points: 510, Level: 6, Medals: []string{"Iniciante 100+", "Intermediário 500+"}},
	}
	require.NoError(t, store.Save(ctx, ledger))
	require.NoError(t, store.Save(ctx, map[string]domain.LedgerRecord{"bob": {Role: domain.RoleVisitor, Level: 1}}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1, "save overwrites, never merges")
	assert.Equal(t, domain.RoleVisitor, got["bob"].Role)
}

func TestLedgerStoreReadsLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	legacy := `{"ana": {"role": "ALUNO", "points": 130, "level": 2, "medals": ["Iniciante 100+"]}}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	store, err := NewLedgerStore(path)
	require.NoError(t, err)
	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 130, got["ana"].Points)
	assert.Equal(t, domain.Role("ALUNO"), got["ana"].Role)
}

func TestLedgerStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o644))
	store, err := NewLedgerStore(path)
	require.NoError(t, err)
	_, err = store.Load(context.Background())
	assert.Error(t, err)
}

func TestAuditLogAppendAndTail(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "audit.log")
	log, err := NewAuditLog(path)
	require.NoError(t, err)
	log.clock = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	for i, event := range []string{"A", "B", "C", "D"} {
		require.NoError(t, log.Add(ctx, event, "alice", map[string]any{"i": i}))
	}

	recs, err := log.Tail(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "C", recs[0].Event)
	assert.Equal(t, "D", recs[1].Event)
	assert.Equal(t, "alice", recs[1].Username)
	assert.EqualValues(t, 3, recs[1].Meta["i"])
	assert.NotEmpty(t, recs[1].ID)
	assert.True(t, recs[1].Timestamp.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))

	all, err := log.Tail(ctx, 50)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestAuditTailSkipsMalformedLines(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "audit.log")
	log, err := NewAuditLog(path)
	require.NoError(t, err)
	require.NoError(t, log.Add(ctx, "A", "alice", nil))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, _ = f.WriteString("not json\n\n")
	require.NoError(t, f.Close())
	require.NoError(t, log.Add(ctx, "B", "alice", nil))

	recs, err := log.Tail(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "A", recs[0].Event)
	assert.NotNil(t, recs[0].Meta)
}

func TestAuditTailMissingFile(t *testing.T) {
	log := &AuditLog{path: filepath.Join(t.TempDir(), "gone.log"), clock: time.Now}
	recs, err := log.Tail(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestChallengeLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "challenges.yaml")
	yml := `
challenges:
  - id: q1
    title: Weighted
    difficulty: 2
    questions:
      - prompt: first
        options: [a, b]
        correct_index: 1
        weight: 2
      - prompt: second
        options: [a, b]
        correct_index: 0
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	loader, err := NewChallengeLoader(path)
	require.NoError(t, err)
	ch, err := loader.LoadChallenge(context.Background(), "q1")
	require.NoError(t, err)
	require.Len(t, ch.Questions, 2)
	require.NotNil(t, ch.Questions[0].Weight)
	assert.Equal(t, 2.0, *ch.Questions[0].Weight)
	assert.Nil(t, ch.Questions[1].Weight)
	assert.Equal(t, 2.0/3.0, ch.Evaluate([]int{1, 1}).Accuracy)

	_, err = loader.LoadChallenge(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrChallengeNotFound))
}

func TestChallengeLoaderRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "challenges.yaml")
	require.NoError(t, os.WriteFile(path, []byte("challenges:\n  - id: bad\n    difficulty: 0\n"), 0o644))
	_, err := NewChallengeLoader(path)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestChallengeLoaderRejectsOutOfRangeCorrectIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "challenges.yaml")
	yml := `
challenges:
  - id: q1
    difficulty: 1
    questions:
      - prompt: first
        options: [a, b]
        correct_index: -1
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	_, err := NewChallengeLoader(path)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
