package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"quiz-rewards-engine/internal/app"
	"quiz-rewards-engine/internal/events"
	filestore "quiz-rewards-engine/internal/infra/file"
	"quiz-rewards-engine/internal/infra/memory"
	"quiz-rewards-engine/internal/rewards"
)

func TestConsoleQuizAndUndo(t *testing.T) {
	script := strings.Join([]string{
		"register alice student",
		"login alice",
		"quiz basics",
		"2",
		"1",
		"undo",
		"points 50",
		"medal Gold Star",
		"audit 5",
		"quit",
	}, "\n")
	console, out, svc := newTestConsole(t, script)

	if err := console.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"registered alice (STUDENT)",
		"[NOTIF] alice gained 500 points (total=500).",
		"[NOTIF] alice unlocked medal: Iniciante 100+.",
		"[NOTIF] alice unlocked medal: Intermediário 500+.",
		"score: 2/2 correct, accuracy 100%, 12s",
		"points: raw 500, credited 500",
		"undone: QuizAttempt",
		"QUIZ_ANSWERED",
		"bye",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, text)
		}
	}

	alice, err := svc.User("alice")
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	if alice.Points != 50 || alice.Level != 1 {
		t.Fatalf("expected 50 points at level 1 after undo and award, got %+v", alice)
	}
	if len(alice.Medals) != 1 || alice.Medals[0] != "Gold Star" {
		t.Fatalf("expected only the granted medal, got %v", alice.Medals)
	}
	if svc.UndoDepth() != 2 {
		t.Fatalf("expected 2 undoable commands, got %d", svc.UndoDepth())
	}
}

func TestConsoleQuizBonuses(t *testing.T) {
	script := "register bob aluno\nlogin bob\nquiz basics --double --streak 3\n2\n1\nquit\n"
	console, _, svc := newTestConsole(t, script)

	if err := console.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := rewards.Credit(500, rewards.AwardOptions{DoubleXP: true, StreakDays: 3})
	bob, err := svc.User("bob")
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	if bob.Points != want {
		t.Fatalf("expected %d points, got %d", want, bob.Points)
	}
}

func TestConsoleErrorsDoNotStopSession(t *testing.T) {
	script := strings.Join([]string{
		"quiz",
		"frobnicate",
		"register carol wizard",
		"register carol visitor",
		"login carol",
		"points -5",
		"points many",
		"quiz missing",
		"undo",
		"quiz basics",
		"x",
		"9",
		"whoami",
	}, "\n")
	console, out, svc := newTestConsole(t, script)

	// End of input ends the session without error.
	if err := console.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"error: no user logged in",
		`error: unknown command "frobnicate"`,
		`error: invalid role "wizard"`,
		`error: invalid amount "-5"`,
		`error: invalid amount "many"`,
		"error: challenge not found",
		"nothing to undo",
		"score: 0/2 correct, accuracy 0%",
		"carol [VISITOR] points=",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, text)
		}
	}

	carol, _ := svc.User("carol")
	// difficulty 2 (100) + accuracy 0 (0) + 12s (200)
	if carol.Points != 300 {
		t.Fatalf("expected 300 points for a fast wrong attempt, got %d", carol.Points)
	}
}

func TestParseAnswer(t *testing.T) {
	cases := map[string]int{"1": 0, "3": 2, " 2 ": 1, "0": -1, "4": -1, "": -1, "b": -1}
	for raw, want := range cases {
		if got := parseAnswer(raw, 3); got != want {
			t.Fatalf("parseAnswer(%q) = %d, want %d", raw, got, want)
		}
	}
}

func newTestConsole(t *testing.T, script string) (*Console, *bytes.Buffer, *app.GameService) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	out := &bytes.Buffer{}
	audit, err := filestore.NewAuditLog(filepath.Join(t.TempDir(), "audit.log"))
	if err != nil {
		t.Fatalf("audit log: %v", err)
	}
	engine := rewards.NewEngine(events.NewBus(log), nil)
	engine.Attach(events.NewConsoleNotifier(out))
	engine.Attach(events.NewAuditObserver(audit))

	svc := app.NewGameService(app.Deps{
		Log:        log,
		Engine:     engine,
		Challenges: memory.NewChallengeRepository(memory.NewStaticChallengeLoader(memory.DemoChallenges()), time.Minute),
		Store:      memory.NewLedgerStore(),
		Audit:      audit,
	})

	console := NewConsole(svc, strings.NewReader(script), out, "quiz1")
	console.now = steppingClock(12 * time.Second)
	return console, out, svc
}

// steppingClock advances by step on every call.
func steppingClock(step time.Duration) func() time.Time {
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		current := now
		now = now.Add(step)
		return current
	}
}
