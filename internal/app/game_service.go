package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"quiz-rewards-engine/internal/achievements"
	"quiz-rewards-engine/internal/domain"
	"quiz-rewards-engine/internal/events"
	"quiz-rewards-engine/internal/history"
	"quiz-rewards-engine/internal/reports"
	"quiz-rewards-engine/internal/rewards"
	"quiz-rewards-engine/internal/scoring"
	"quiz-rewards-engine/internal/session"
)

// LedgerStore persists the whole user registry; Save overwrites everything.
type LedgerStore interface {
	Load(ctx context.Context) (map[string]domain.LedgerRecord, error)
	Save(ctx context.Context, ledger map[string]domain.LedgerRecord) error
}

// AuditLog is an append-only record of user actions.
type AuditLog interface {
	Add(ctx context.Context, event, username string, meta map[string]any) error
	Tail(ctx context.Context, n int) ([]domain.AuditRecord, error)
}

// ChallengeRepository loads challenge content (from cache/backing store).
type ChallengeRepository interface {
	GetChallenge(ctx context.Context, id string) (domain.Challenge, error)
}

// Audit events written by the service itself rather than by observers.
const (
	AuditQuizAnswered = "QUIZ_ANSWERED"
	AuditUndo         = "UNDO"
)

var errNoStore = errors.New("no ledger store configured")

// Deps wires a GameService.
type Deps struct {
	Log          logrus.FieldLogger
	Engine       *rewards.Engine
	Strategy     scoring.Strategy
	Challenges   ChallengeRepository
	Store        LedgerStore
	Audit        AuditLog
	Achievements achievements.Component
	Reports      *reports.Facade
}

// GameService holds one session's registry, history and login state.
// All methods are serialized behind a single mutex.
type GameService struct {
	log          logrus.FieldLogger
	engine       *rewards.Engine
	strategy     scoring.Strategy
	challenges   ChallengeRepository
	store        LedgerStore
	audit        AuditLog
	achievements achievements.Component
	reports      *reports.Facade

	mu      sync.Mutex
	users   map[string]*domain.User
	history *history.History
	session *session.Holder
}

func NewGameService(d Deps) *GameService {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.Strategy == nil {
		d.Strategy = scoring.Default()
	}
	if d.Engine == nil {
		d.Engine = rewards.NewEngine(events.NewBus(d.Log), nil)
	}
	if d.Achievements == nil {
		d.Achievements = achievements.Default()
	}
	if d.Reports == nil {
		d.Reports = reports.NewFacade(reports.DemoExternalRanking())
	}
	return &GameService{
		log:          d.Log,
		engine:       d.Engine,
		strategy:     d.Strategy,
		challenges:   d.Challenges,
		store:        d.Store,
		audit:        d.Audit,
		achievements: d.Achievements,
		reports:      d.Reports,
		users:        make(map[string]*domain.User),
		history:      history.New(),
		session:      session.New(),
	}
}

// Register creates a user with the given role name.
func (s *GameService) Register(username, role string) (domain.User, error) {
	r, err := domain.ParseRole(role)
	if err != nil {
		return domain.User{}, err
	}
	user, err := domain.NewUser(username, r)
	if err != nil {
		return domain.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return domain.User{}, fmt.Errorf("%w: %s", domain.ErrUserExists, user.Username)
	}
	s.users[user.Username] = user
	s.log.WithFields(logrus.Fields{"username": user.Username, "role": user.Role}).Info("user registered")
	return user.Snapshot(), nil
}

// Login makes username the current user.
func (s *GameService) Login(username string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[strings.TrimSpace(username)]
	if !ok {
		return domain.User{}, fmt.Errorf("%w: %s", domain.ErrUserNotFound, username)
	}
	s.session.Login(user.Username, user.Role)
	return user.Snapshot(), nil
}

func (s *GameService) Logout() {
	s.session.Logout()
}

// CurrentUser returns a snapshot of the logged-in user.
func (s *GameService) CurrentUser() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, err := s.currentLocked()
	if err != nil {
		return domain.User{}, false
	}
	return user.Snapshot(), true
}

// User returns a snapshot of one user.
func (s *GameService) User(username string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return domain.User{}, fmt.Errorf("%w: %s", domain.ErrUserNotFound, username)
	}
	return user.Snapshot(), nil
}

// Users lists snapshots ordered by username.
func (s *GameService) Users() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// Challenge fetches challenge content so a front end can present the questions.
func (s *GameService) Challenge(ctx context.Context, id string) (domain.Challenge, error) {
	if s.challenges == nil {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	return s.challenges.GetChallenge(ctx, id)
}

// QuizSubmission is what a front end collects for one attempt.
type QuizSubmission struct {
	ChallengeID string
	Answers     []int
	Elapsed     time.Duration // zero means unknown
	DoubleXP    bool
	StreakDays  int
}

// QuizOutcome summarizes a graded and rewarded attempt.
type QuizOutcome struct {
	Challenge domain.Challenge
	Grade     domain.GradeResult
	RawPoints int
	Credited  int
	User      domain.User
}

// SubmitQuiz grades the answers, scores them and awards the points as an undoable command.
func (s *GameService) SubmitQuiz(ctx context.Context, sub QuizSubmission) (QuizOutcome, error) {
	if sub.StreakDays < 0 {
		return QuizOutcome{}, &domain.ValidationError{Field: "streak days", Value: fmt.Sprint(sub.StreakDays), Reason: "must not be negative"}
	}
	if s.challenges == nil {
		return QuizOutcome{}, domain.ErrChallengeNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user, err := s.currentLocked()
	if err != nil {
		return QuizOutcome{}, err
	}

	ch, err := s.challenges.GetChallenge(ctx, sub.ChallengeID)
	if err != nil {
		return QuizOutcome{}, err
	}

	grade := ch.Evaluate(sub.Answers)
	sctx := scoring.Context{Difficulty: ch.Difficulty, Accuracy: grade.Accuracy}
	if sub.Elapsed > 0 {
		sctx = scoring.NewContext(ch.Difficulty, grade.Accuracy, sub.Elapsed)
	}
	raw := s.strategy.Score(sctx)

	s.auditLocked(ctx, AuditQuizAnswered, user.Username, map[string]any{
		"challenge_id": ch.ID,
		"accuracy":     grade.Accuracy,
		"time_sec":     int(sub.Elapsed.Seconds()),
	})

	cmd := history.NewQuizAttempt(user, s.engine, raw, rewards.AwardOptions{DoubleXP: sub.DoubleXP, StreakDays: sub.StreakDays})
	s.history.PushAndExec(cmd)

	s.log.WithFields(logrus.Fields{
		"username":  user.Username,
		"challenge": ch.ID,
		"raw":       raw,
		"credited":  cmd.Credited(),
	}).Info("quiz attempt rewarded")

	return QuizOutcome{
		Challenge: ch,
		Grade:     grade,
		RawPoints: raw,
		Credited:  cmd.Credited(),
		User:      user.Snapshot(),
	}, nil
}

// AwardPoints credits a flat amount to the current user, undoable.
func (s *GameService) AwardPoints(amount int) (domain.User, error) {
	if amount < 0 {
		return domain.User{}, &domain.ValidationError{Field: "amount", Value: fmt.Sprint(amount), Reason: "must not be negative"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, err := s.currentLocked()
	if err != nil {
		return domain.User{}, err
	}
	s.history.PushAndExec(history.NewPointAward(user, amount))
	return user.Snapshot(), nil
}

// GrantMedal gives the current user a medal, undoable.
func (s *GameService) GrantMedal(medal string) (domain.User, error) {
	medal = strings.TrimSpace(medal)
	if medal == "" {
		return domain.User{}, &domain.ValidationError{Field: "medal", Reason: "must not be empty"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, err := s.currentLocked()
	if err != nil {
		return domain.User{}, err
	}
	s.history.PushAndExec(history.NewMedalAward(user, medal))
	return user.Snapshot(), nil
}

// Undo reverses the last command. An empty history is reported, not failed.
func (s *GameService) Undo(ctx context.Context) history.UndoResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.history.UndoLast()
	if res.Undone {
		// The stack is shared by the session, so the owner may not be the current user.
		s.auditLocked(ctx, AuditUndo, res.Username, map[string]any{"command": string(res.Kind)})
	}
	s.log.WithField("result", res.Message()).Debug("undo")
	return res
}

// Save writes the whole registry to the ledger store.
func (s *GameService) Save(ctx context.Context) error {
	s.mu.Lock()
	ledger := make(map[string]domain.LedgerRecord, len(s.users))
	for name, u := range s.users {
		ledger[name] = u.Record()
	}
	s.mu.Unlock()

	if s.store == nil {
		return errNoStore
	}
	if err := s.store.Save(ctx, ledger); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	s.log.WithField("users", len(ledger)).Info("ledger saved")
	return nil
}

// Load reads the ledger store into the registry. Known users are refreshed in
// place so pending undo commands keep pointing at the live entity. Records with
// an unknown role are skipped.
func (s *GameService) Load(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, errNoStore
	}
	ledger, err := s.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load ledger: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	loaded := 0
	for name, rec := range ledger {
		role, err := domain.ParseRole(string(rec.Role))
		if err != nil {
			s.log.WithError(err).WithField("username", name).Warn("skipping ledger record")
			continue
		}
		user, ok := s.users[name]
		if !ok {
			user, err = domain.NewUser(name, role)
			if err != nil {
				s.log.WithError(err).WithField("username", name).Warn("skipping ledger record")
				continue
			}
			s.users[user.Username] = user
		}
		user.Restore(rec)
		if rec.Level != 0 && rec.Level != user.Level {
			s.log.WithFields(logrus.Fields{"username": name, "stored": rec.Level, "derived": user.Level}).Warn("stored level disagrees with points")
		}
		loaded++
	}
	s.log.WithField("users", loaded).Info("ledger loaded")
	return loaded, nil
}

// Leaderboard ranks registered users by points.
func (s *GameService) Leaderboard(limit int) []reports.Entry {
	users := s.Users()
	entries := make([]reports.Entry, 0, len(users))
	for _, u := range users {
		entries = append(entries, reports.Entry{Username: u.Username, Points: u.Points})
	}
	return reports.Rank(entries, limit)
}

// ExternalLeaderboard returns the adapted third-party ranking.
func (s *GameService) ExternalLeaderboard(limit int) []reports.Entry {
	return s.reports.Leaderboard(limit)
}

// ReportRows flattens every user for export.
func (s *GameService) ReportRows() []reports.Row {
	users := s.Users()
	rows := make([]reports.Row, 0, len(users))
	for _, u := range users {
		rows = append(rows, reports.RowFromUser(u))
	}
	return rows
}

// Export writes base.csv, base.json and base.txt.
func (s *GameService) Export(base string) (map[string]string, error) {
	return s.reports.ExportAll(base, s.ReportRows())
}

// AuditTail returns the last n audit records, oldest first.
func (s *GameService) AuditTail(ctx context.Context, n int) ([]domain.AuditRecord, error) {
	if s.audit == nil {
		return nil, nil
	}
	return s.audit.Tail(ctx, n)
}

// Achievements returns the display tree.
func (s *GameService) Achievements() achievements.Component {
	return s.achievements
}

// UndoDepth reports how many commands can be undone.
func (s *GameService) UndoDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}

func (s *GameService) currentLocked() (*domain.User, error) {
	p, ok := s.session.Current()
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	user, ok := s.users[p.Username]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, p.Username)
	}
	return user, nil
}

// audit writes are fire-and-forget; a failing log never blocks a reward.
func (s *GameService) auditLocked(ctx context.Context, event, username string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Add(ctx, event, username, meta); err != nil {
		s.log.WithError(err).WithField("event", event).Warn("audit append failed")
	}
}
