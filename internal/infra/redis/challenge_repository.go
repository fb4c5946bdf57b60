package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"quiz-rewards-engine/internal/domain"
	"quiz-rewards-engine/internal/infra/memory"
)

// ChallengeRepository caches challenge JSON in Redis and falls back to a loader on cache miss.
// Challenges are stored as: SET challenge:{id} {json} EX ttl
type ChallengeRepository struct {
	client *redis.Client
	loader memory.ChallengeLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewChallengeRepository(client *redis.Client, loader memory.ChallengeLoader, ttl time.Duration) *ChallengeRepository {
	return &ChallengeRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ChallengeRepository) GetChallenge(ctx context.Context, id string) (domain.Challenge, error) {
	if ch, ok := r.cached(ctx, id); ok {
		return ch, nil
	}

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if ch, ok := r.cached(ctx, id); ok {
			return ch, nil
		}

		ch, err := r.loader.LoadChallenge(ctx, id)
		if err != nil {
			return domain.Challenge{}, err
		}

		if data, err := json.Marshal(ch); err == nil {
			// best-effort fill; a failed write only costs another load
			_ = r.client.Set(ctx, r.key(id), data, r.ttlWithJitter()).Err()
		}
		return ch, nil
	})
	if err != nil {
		return domain.Challenge{}, err
	}
	return result.(domain.Challenge), nil
}

func (r *ChallengeRepository) cached(ctx context.Context, id string) (domain.Challenge, bool) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		return domain.Challenge{}, false
	}
	var ch domain.Challenge
	if err := json.Unmarshal(data, &ch); err != nil {
		return domain.Challenge{}, false
	}
	return ch, true
}

func (r *ChallengeRepository) key(id string) string {
	return "challenge:" + id
}

func (r *ChallengeRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
