// Package scoring maps a graded attempt to raw points.
package scoring

import "time"

// MissingTimeSec stands in for an unknown elapsed time.
const MissingTimeSec = 9999.0

// Context is built fresh for every evaluation.
type Context struct {
	Difficulty int
	Accuracy   float64
	TimeSec    float64
	HasTime    bool
}

// NewContext builds a context with a measured elapsed time.
func NewContext(difficulty int, accuracy float64, elapsed time.Duration) Context {
	return Context{
		Difficulty: difficulty,
		Accuracy:   accuracy,
		TimeSec:    elapsed.Seconds(),
		HasTime:    true,
	}
}

func (c Context) elapsed() float64 {
	if !c.HasTime {
		return MissingTimeSec
	}
	return c.TimeSec
}

// Strategy computes raw points. Implementations are stateless.
type Strategy interface {
	Score(ctx Context) int
}

// Difficulty awards 50 points per difficulty step, at least one step.
type Difficulty struct{}

func (Difficulty) Score(ctx Context) int {
	return 50 * max(1, ctx.Difficulty)
}

// Accuracy awards up to 200 points, truncated.
type Accuracy struct{}

func (Accuracy) Score(ctx Context) int {
	return int(200 * ctx.Accuracy)
}

// Time rewards fast submissions in fixed buckets.
type Time struct{}

func (Time) Score(ctx Context) int {
	t := ctx.elapsed()
	switch {
	case t <= 30:
		return 200
	case t <= 60:
		return 120
	case t <= 120:
		return 60
	default:
		return 20
	}
}

// Composite sums its strategies in order.
type Composite struct {
	strategies []Strategy
}

func NewComposite(strategies ...Strategy) *Composite {
	return &Composite{strategies: append([]Strategy(nil), strategies...)}
}

func (c *Composite) Score(ctx Context) int {
	total := 0
	for _, s := range c.strategies {
		total += s.Score(ctx)
	}
	return total
}

// Default is the difficulty + accuracy + time composite used by both front ends.
func Default() *Composite {
	return NewComposite(Difficulty{}, Accuracy{}, Time{})
}
