package rewards

import (
	"slices"

	"quiz-rewards-engine/internal/domain"
	"quiz-rewards-engine/internal/events"
)

const (
	MedalBeginner     = "Iniciante 100+"
	MedalIntermediate = "Intermediário 500+"
)

// Threshold grants Medal once a user's total reaches Points.
type Threshold struct {
	Points int    `yaml:"points"`
	Medal  string `yaml:"medal"`
}

// DefaultThresholds returns the built-in auto-medal rules.
func DefaultThresholds() []Threshold {
	return []Threshold{
		{Points: 100, Medal: MedalBeginner},
		{Points: 500, Medal: MedalIntermediate},
	}
}

// AwardOptions selects the bonus layers for one award.
type AwardOptions struct {
	DoubleXP   bool
	StreakDays int
}

// Engine credits points, unlocks threshold medals and publishes events.
type Engine struct {
	bus        *events.Bus
	thresholds []Threshold
}

// NewEngine sorts thresholds ascending; nil means DefaultThresholds.
func NewEngine(bus *events.Bus, thresholds []Threshold) *Engine {
	if thresholds == nil {
		thresholds = DefaultThresholds()
	}
	sorted := slices.Clone(thresholds)
	slices.SortStableFunc(sorted, func(a, b Threshold) int { return a.Points - b.Points })
	return &Engine{bus: bus, thresholds: sorted}
}

// Attach subscribes obs to the engine's events.
func (e *Engine) Attach(obs events.Observer) { e.bus.Attach(obs) }

// Detach unsubscribes obs.
func (e *Engine) Detach(obs events.Observer) { e.bus.Detach(obs) }

// Thresholds returns a copy of the auto-medal rules in evaluation order.
func (e *Engine) Thresholds() []Threshold {
	return slices.Clone(e.thresholds)
}

// Credit computes the decorated amount without touching any user.
// Double-XP always runs before the streak bonus. Negative raw points count as zero.
func Credit(raw int, opts AwardOptions) int {
	score := NewScore(max(raw, 0))
	if opts.DoubleXP {
		score.With(DoubleXP())
	}
	if opts.StreakDays > 0 {
		score.With(StreakBonus(opts.StreakDays))
	}
	return score.Compute()
}

// Award credits user and returns the points actually added.
func (e *Engine) Award(user *domain.User, raw int, opts AwardOptions) int {
	pts := Credit(raw, opts)
	user.AddPoints(pts)
	e.bus.Notify(domain.Event{
		Kind:     domain.EventPointsGained,
		Username: user.Username,
		Points:   pts,
		Total:    user.Points,
	})

	for _, th := range e.thresholds {
		if user.Points >= th.Points && user.AddMedal(th.Medal) {
			e.bus.Notify(domain.Event{
				Kind:     domain.EventMedalUnlocked,
				Username: user.Username,
				Medal:    th.Medal,
			})
		}
	}
	return pts
}
