// Package history runs reward actions as undoable commands.
package history

import (
	"slices"

	"quiz-rewards-engine/internal/domain"
	"quiz-rewards-engine/internal/rewards"
)

// Kind tags the concrete command type.
type Kind string

const (
	KindPointAward  Kind = "PointAward"
	KindMedalAward  Kind = "MedalAward"
	KindQuizAttempt Kind = "QuizAttempt"
)

// Command performs one reward action and can reverse it exactly.
// Undo is only valid after Execute.
type Command interface {
	Kind() Kind
	Username() string
	Execute()
	Undo()
}

// PointAward adds a fixed amount with no bonuses and no events.
type PointAward struct {
	user   *domain.User
	amount int

	before int
}

func NewPointAward(user *domain.User, amount int) *PointAward {
	return &PointAward{user: user, amount: amount}
}

func (c *PointAward) Kind() Kind { return KindPointAward }

func (c *PointAward) Username() string { return c.user.Username }

func (c *PointAward) Execute() {
	c.before = c.user.Points
	c.user.AddPoints(c.amount)
}

func (c *PointAward) Undo() {
	c.user.SetPoints(c.before)
}

// MedalAward grants a medal if the user does not hold it yet.
type MedalAward struct {
	user  *domain.User
	medal string

	granted bool
}

func NewMedalAward(user *domain.User, medal string) *MedalAward {
	return &MedalAward{user: user, medal: medal}
}

func (c *MedalAward) Kind() Kind { return KindMedalAward }

func (c *MedalAward) Username() string { return c.user.Username }

func (c *MedalAward) Execute() {
	c.granted = c.user.AddMedal(c.medal)
}

// Undo removes the medal only when this command granted it.
func (c *MedalAward) Undo() {
	if c.granted {
		c.user.RemoveMedal(c.medal)
	}
}

// QuizAttempt awards points through the engine and snapshots the whole ledger
// so that undo also reverts any medals the award unlocked.
type QuizAttempt struct {
	user   *domain.User
	engine *rewards.Engine
	raw    int
	opts   rewards.AwardOptions

	executed     bool
	beforePoints int
	beforeLevel  int
	beforeMedals []string
	credited     int
}

func NewQuizAttempt(user *domain.User, engine *rewards.Engine, raw int, opts rewards.AwardOptions) *QuizAttempt {
	return &QuizAttempt{user: user, engine: engine, raw: raw, opts: opts}
}

func (c *QuizAttempt) Kind() Kind { return KindQuizAttempt }

func (c *QuizAttempt) Username() string { return c.user.Username }

func (c *QuizAttempt) Execute() {
	c.beforePoints = c.user.Points
	c.beforeLevel = c.user.Level
	c.beforeMedals = slices.Clone(c.user.Medals)
	c.executed = true
	c.credited = c.engine.Award(c.user, c.raw, c.opts)
}

func (c *QuizAttempt) Undo() {
	if !c.executed {
		return
	}
	c.user.Points = c.beforePoints
	c.user.Level = c.beforeLevel
	c.user.Medals = slices.Clone(c.beforeMedals)
	if c.user.Medals == nil {
		c.user.Medals = []string{}
	}
}

// Credited is the decorated amount the last Execute added.
func (c *QuizAttempt) Credited() int { return c.credited }
