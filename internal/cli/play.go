package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"quiz-rewards-engine/internal/app"
	"quiz-rewards-engine/internal/domain"
)

// NewPlayCmd starts an interactive session on stdin/stdout.
func NewPlayCmd(configPath *string) *cobra.Command {
	var load bool
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Start an interactive scoring session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := loadRuntime(ctx, *configPath, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer rt.Close()

			if load {
				if _, err := rt.service.Load(ctx); err != nil {
					return err
				}
			}
			console := NewConsole(rt.service, cmd.InOrStdin(), cmd.OutOrStdout(), rt.cfg.Challenges.Default)
			return console.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&load, "load", false, "load the saved ledger before the first prompt")
	return cmd
}

const consoleHelp = `commands:
  register <username> <role>    create a user (STUDENT, TEACHER, VISITOR)
  login <username>              switch the current user
  logout
  whoami                        show the current user
  users                         list every user
  quiz [id] [--double] [--streak N]
  points <amount>               award points directly
  medal <name>                  grant a medal directly
  undo                          reverse the last action
  achievements                  show the achievement tree
  leaderboard [n]               rank registered users
  external [n]                  show the external ranking
  export <base>                 write base.csv, base.json and base.txt
  audit [n]                     show the last audit records
  save | load                   persist or reload the ledger
  quit
`

var errQuit = errors.New("quit")

// Console is the line-oriented front end over a GameService.
type Console struct {
	svc              *app.GameService
	in               *bufio.Scanner
	out              io.Writer
	defaultChallenge string
	now              func() time.Time
}

func NewConsole(svc *app.GameService, in io.Reader, out io.Writer, defaultChallenge string) *Console {
	return &Console{
		svc:              svc,
		in:               bufio.NewScanner(in),
		out:              out,
		defaultChallenge: defaultChallenge,
		now:              time.Now,
	}
}

// Run reads commands until quit or end of input.
func (c *Console) Run(ctx context.Context) error {
	c.printf("Type 'help' for commands.\n")
	for {
		c.prompt()
		line, ok := c.readLine()
		if !ok {
			return c.in.Err()
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		err := c.dispatch(ctx, strings.ToLower(fields[0]), fields[1:])
		if errors.Is(err, errQuit) {
			c.printf("bye\n")
			return nil
		}
		if err != nil {
			c.printf("error: %v\n", err)
		}
	}
}

func (c *Console) dispatch(ctx context.Context, name string, args []string) error {
	switch name {
	case "help", "?":
		c.printf("%s", consoleHelp)
	case "quit", "exit":
		return errQuit
	case "register":
		if len(args) != 2 {
			return usage("register <username> <role>")
		}
		u, err := c.svc.Register(args[0], args[1])
		if err != nil {
			return err
		}
		c.printf("registered %s (%s)\n", u.Username, u.Role)
	case "login":
		if len(args) != 1 {
			return usage("login <username>")
		}
		u, err := c.svc.Login(args[0])
		if err != nil {
			return err
		}
		c.printf("logged in as %s (%s)\n", u.Username, u.Role)
	case "logout":
		c.svc.Logout()
		c.printf("logged out\n")
	case "whoami":
		u, ok := c.svc.CurrentUser()
		if !ok {
			c.printf("not logged in\n")
			return nil
		}
		c.printUser(u)
	case "users":
		users := c.svc.Users()
		if len(users) == 0 {
			c.printf("no users\n")
		}
		for _, u := range users {
			c.printUser(u)
		}
	case "quiz":
		return c.quiz(ctx, args)
	case "points":
		if len(args) != 1 {
			return usage("points <amount>")
		}
		amount, err := strconv.Atoi(args[0])
		if err != nil {
			return &domain.ValidationError{Field: "amount", Value: args[0], Reason: "not a number"}
		}
		u, err := c.svc.AwardPoints(amount)
		if err != nil {
			return err
		}
		c.printUser(u)
	case "medal":
		u, err := c.svc.GrantMedal(strings.Join(args, " "))
		if err != nil {
			return err
		}
		c.printUser(u)
	case "undo":
		c.printf("%s\n", c.svc.Undo(ctx).Message())
	case "achievements":
		tree := c.svc.Achievements()
		c.printf("%s (%d medals)\n", tree.Name(), tree.TotalMedals())
		for _, m := range tree.ListMedals() {
			c.printf("  - %s\n", m)
		}
	case "leaderboard", "external":
		limit, err := optionalInt(args, 10)
		if err != nil {
			return err
		}
		entries := c.svc.Leaderboard(limit)
		if name == "external" {
			entries = c.svc.ExternalLeaderboard(limit)
		}
		for i, e := range entries {
			c.printf("%2d. %-16s %d\n", i+1, e.Username, e.Points)
		}
	case "export":
		if len(args) != 1 {
			return usage("export <base>")
		}
		paths, err := c.svc.Export(args[0])
		if err != nil {
			return err
		}
		for _, format := range []string{"csv", "json", "txt"} {
			if p, ok := paths[format]; ok {
				c.printf("%s: %s\n", format, p)
			}
		}
	case "audit":
		n, err := optionalInt(args, 10)
		if err != nil {
			return err
		}
		records, err := c.svc.AuditTail(ctx, n)
		if err != nil {
			return err
		}
		for _, rec := range records {
			c.printf("%s %-15s %-10s %v\n", rec.Timestamp.Format(time.RFC3339), rec.Event, rec.Username, rec.Meta)
		}
	case "save":
		if err := c.svc.Save(ctx); err != nil {
			return err
		}
		c.printf("saved\n")
	case "load":
		n, err := c.svc.Load(ctx)
		if err != nil {
			return err
		}
		c.printf("loaded %d users\n", n)
	default:
		return fmt.Errorf("unknown command %q, try 'help'", name)
	}
	return nil
}

func (c *Console) quiz(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("quiz", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	double := fs.Bool("double", false, "double the points")
	streak := fs.Int("streak", 0, "consecutive days played")
	if err := fs.Parse(args); err != nil {
		return usage("quiz [id] [--double] [--streak N]")
	}
	id := c.defaultChallenge
	if fs.NArg() > 0 {
		id = fs.Arg(0)
	}

	if _, ok := c.svc.CurrentUser(); !ok {
		return domain.ErrNotAuthenticated
	}
	ch, err := c.svc.Challenge(ctx, id)
	if err != nil {
		return err
	}

	c.printf("== %s (difficulty %d) ==\n", ch.Title, ch.Difficulty)
	answers := make([]int, len(ch.Questions))
	start := c.now()
	for i, q := range ch.Questions {
		c.printf("Q%d. %s\n", i+1, q.Prompt)
		for j, opt := range q.Options {
			c.printf("  %d) %s\n", j+1, opt)
		}
		c.printf("answer: ")
		line, ok := c.readLine()
		if !ok {
			return io.ErrUnexpectedEOF
		}
		answers[i] = parseAnswer(line, len(q.Options))
	}
	elapsed := c.now().Sub(start)

	outcome, err := c.svc.SubmitQuiz(ctx, app.QuizSubmission{
		ChallengeID: ch.ID,
		Answers:     answers,
		Elapsed:     elapsed,
		DoubleXP:    *double,
		StreakDays:  *streak,
	})
	if err != nil {
		return err
	}
	c.printf("score: %d/%d correct, accuracy %.0f%%, %.0fs\n",
		outcome.Grade.Correct, outcome.Grade.Total, outcome.Grade.Accuracy*100, elapsed.Seconds())
	c.printf("points: raw %d, credited %d\n", outcome.RawPoints, outcome.Credited)
	c.printUser(outcome.User)
	return nil
}

func (c *Console) printUser(u domain.User) {
	medals := "-"
	if len(u.Medals) > 0 {
		medals = strings.Join(u.Medals, ", ")
	}
	c.printf("%s [%s] points=%d level=%d medals=%s\n", u.Username, u.Role, u.Points, u.Level, medals)
}

func (c *Console) prompt() {
	if u, ok := c.svc.CurrentUser(); ok {
		c.printf("%s> ", u.Username)
		return
	}
	c.printf("> ")
}

func (c *Console) readLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// parseAnswer maps a 1-based choice to an option index; anything else is -1 (wrong).
func parseAnswer(raw string, options int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > options {
		return -1
	}
	return n - 1
}

func optionalInt(args []string, fallback int) (int, error) {
	if len(args) == 0 {
		return fallback, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return 0, &domain.ValidationError{Field: "count", Value: args[0], Reason: "must be a non-negative number"}
	}
	return n, nil
}

func usage(text string) error {
	return fmt.Errorf("usage: %s", text)
}
