package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"quiz-rewards-engine/internal/achievements"
	"quiz-rewards-engine/internal/app"
	"quiz-rewards-engine/internal/config"
	"quiz-rewards-engine/internal/events"
	filestore "quiz-rewards-engine/internal/infra/file"
	"quiz-rewards-engine/internal/infra/memory"
	pgstore "quiz-rewards-engine/internal/infra/postgres"
	redisstore "quiz-rewards-engine/internal/infra/redis"
	sqlitestore "quiz-rewards-engine/internal/infra/sqlite"
	"quiz-rewards-engine/internal/logging"
	"quiz-rewards-engine/internal/reports"
	"quiz-rewards-engine/internal/rewards"
)

const defaultCacheTTL = 10 * time.Minute

// runtime is a fully wired service plus the connections it owns.
type runtime struct {
	cfg     config.Config
	log     *logrus.Logger
	service *app.GameService
	closers []func()
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func loadRuntime(ctx context.Context, configPath string, out io.Writer) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return buildRuntime(ctx, cfg, out)
}

// buildRuntime connects the configured backends and wires the game service.
// Notifications go to out.
func buildRuntime(ctx context.Context, cfg config.Config, out io.Writer) (*runtime, error) {
	rt := &runtime{cfg: cfg, log: logging.New(cfg.Log.Level, cfg.Log.Format)}
	if err := rt.wire(ctx, out); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (r *runtime) wire(ctx context.Context, out io.Writer) error {
	cfg := r.cfg

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		r.closers = append(r.closers, func() { _ = redisClient.Close() })
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		r.closers = append(r.closers, pool.Close)
	}

	challenges, err := r.challengeRepository(redisClient, pool)
	if err != nil {
		return err
	}
	store, err := r.ledgerStore(ctx, redisClient, pool)
	if err != nil {
		return err
	}
	audit, err := r.auditLog(redisClient)
	if err != nil {
		return err
	}

	engine := rewards.NewEngine(events.NewBus(r.log), cfg.Rewards.Thresholds)
	engine.Attach(events.NewConsoleNotifier(out))
	engine.Attach(events.NewAuditObserver(audit))

	tree := achievements.Default()
	if cfg.Achievements != nil {
		tree = achievements.Build(*cfg.Achievements)
	}

	r.service = app.NewGameService(app.Deps{
		Log:          r.log,
		Engine:       engine,
		Challenges:   challenges,
		Store:        store,
		Audit:        audit,
		Achievements: tree,
		Reports:      reports.NewFacade(reports.DemoExternalRanking()),
	})
	r.log.WithFields(logrus.Fields{
		"storage": cfg.Storage.Driver,
		"audit":   cfg.Audit.Driver,
		"redis":   redisClient != nil,
		"pg":      pool != nil,
	}).Debug("runtime wired")
	return nil
}

// challengeRepository picks the loader (YAML file, then Postgres, then the demo catalog)
// and puts a Redis or in-process cache in front of it.
func (r *runtime) challengeRepository(client *redis.Client, pool *pgxpool.Pool) (app.ChallengeRepository, error) {
	var loader memory.ChallengeLoader = memory.NewStaticChallengeLoader(memory.DemoChallenges())
	switch {
	case r.cfg.Challenges.File != "":
		fl, err := filestore.NewChallengeLoader(r.cfg.Challenges.File)
		if err != nil {
			return nil, err
		}
		loader = fl
	case pool != nil:
		loader = pgstore.NewChallengeLoader(pool)
	}

	ttl := config.TTLDuration(r.cfg.Challenges.TTL, defaultCacheTTL)
	if client != nil {
		return redisstore.NewChallengeRepository(client, loader, ttl), nil
	}
	return memory.NewChallengeRepository(loader, ttl), nil
}

func (r *runtime) ledgerStore(ctx context.Context, client *redis.Client, pool *pgxpool.Pool) (app.LedgerStore, error) {
	switch r.cfg.Storage.Driver {
	case "memory":
		return memory.NewLedgerStore(), nil
	case "file":
		return filestore.NewLedgerStore(r.cfg.Storage.Path)
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("storage driver redis: redis addr not configured")
		}
		return redisstore.NewLedgerStore(client, r.cfg.Storage.Key), nil
	case "postgres":
		if pool == nil {
			return nil, fmt.Errorf("storage driver postgres: postgres url not configured")
		}
		return pgstore.NewLedgerStore(pool), nil
	case "sqlite":
		store, err := sqlitestore.Open(ctx, r.cfg.SQLite.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		r.closers = append(r.closers, func() { _ = store.Close() })
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", r.cfg.Storage.Driver)
	}
}

func (r *runtime) auditLog(client *redis.Client) (app.AuditLog, error) {
	switch r.cfg.Audit.Driver {
	case "file":
		return filestore.NewAuditLog(r.cfg.Audit.Path)
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("audit driver redis: redis addr not configured")
		}
		return redisstore.NewAuditLog(client, r.cfg.Audit.Key, r.cfg.Audit.MaxLen), nil
	default:
		return nil, fmt.Errorf("unsupported audit driver: %s", r.cfg.Audit.Driver)
	}
}
