package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"quiz-rewards-engine/internal/domain"
)

// ChallengeLoader fetches challenge content from a backing store (file, DB).
type ChallengeLoader interface {
	LoadChallenge(ctx context.Context, id string) (domain.Challenge, error)
}

// ChallengeRepository caches challenges with TTL to avoid repeated loads.
type ChallengeRepository struct {
	loader ChallengeLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedChallenge
}

type cachedChallenge struct {
	challenge domain.Challenge
	expiresAt time.Time
}

func NewChallengeRepository(loader ChallengeLoader, ttl time.Duration) *ChallengeRepository {
	return &ChallengeRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedChallenge),
	}
}

func (r *ChallengeRepository) GetChallenge(ctx context.Context, id string) (domain.Challenge, error) {
	if ch, ok := r.lookup(id); ok {
		return ch, nil
	}

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		if ch, ok := r.lookup(id); ok {
			return ch, nil
		}

		ch, err := r.loader.LoadChallenge(ctx, id)
		if err != nil {
			return domain.Challenge{}, err
		}

		r.mu.Lock()
		r.cache[id] = cachedChallenge{
			challenge: ch,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return ch, nil
	})
	if err != nil {
		return domain.Challenge{}, err
	}
	return result.(domain.Challenge), nil
}

func (r *ChallengeRepository) lookup(id string) (domain.Challenge, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[id]
	if !ok || !entry.expiresAt.After(now) {
		return domain.Challenge{}, false
	}
	return entry.challenge, true
}

func (r *ChallengeRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticChallengeLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticChallengeLoader struct {
	challenges map[string]domain.Challenge
}

func NewStaticChallengeLoader(challenges map[string]domain.Challenge) *StaticChallengeLoader {
	return &StaticChallengeLoader{challenges: challenges}
}

func (l *StaticChallengeLoader) LoadChallenge(_ context.Context, id string) (domain.Challenge, error) {
	if ch, ok := l.challenges[id]; ok {
		return ch, nil
	}
	return domain.Challenge{}, domain.ErrChallengeNotFound
}

// DemoChallenges is the built-in catalog used when no challenge file is configured.
func DemoChallenges() map[string]domain.Challenge {
	q := func(prompt string, correct int, weight float64, options ...string) domain.Question {
		return domain.Question{Prompt: prompt, Options: options, CorrectIndex: correct, Weight: domain.Weight(weight)}
	}
	return map[string]domain.Challenge{
		"quiz1": {
			ID:         "quiz1",
			Title:      "Design Patterns Quiz (Advanced)",
			Difficulty: 3,
			Questions: []domain.Question{
				q("Which pattern guarantees a single instance of an object?", 1, 1.0, "Factory", "Singleton", "Observer", "Builder"),
				q("Which pattern notifies many listeners when state changes?", 0, 1.2, "Observer", "Adapter", "Decorator", "Facade"),
				q("Which pattern converts one interface into the one a client expects?", 0, 1.0, "Adapter", "Strategy", "Composite", "Proxy"),
				q("Which pattern encapsulates interchangeable algorithms?", 0, 1.3, "Strategy", "Decorator", "Factory Method", "Prototype"),
				q("Which pattern gives a unified interface to a subsystem?", 1, 0.8, "Bridge", "Facade", "Flyweight", "Mediator"),
				q("Which pattern adds responsibilities to objects dynamically?", 0, 1.4, "Decorator", "Observer", "Chain of Responsibility", "State"),
				q("Which pattern composes objects into part-whole trees?", 0, 1.2, "Composite", "Prototype", "Builder", "Iterator"),
				q("Which pattern records commands so operations can be undone?", 0, 0.9, "Command", "Observer", "Interpreter", "Visitor"),
			},
		},
		"basics": {
			ID:         "basics",
			Title:      "Design Patterns Quiz",
			Difficulty: 2,
			Questions: []domain.Question{
				{Prompt: "Which pattern guarantees a single instance?", Options: []string{"Factory", "Singleton", "Observer"}, CorrectIndex: 1},
				{Prompt: "Which pattern notifies dependents?", Options: []string{"Observer", "Adapter", "Facade"}, CorrectIndex: 0},
			},
		},
	}
}
