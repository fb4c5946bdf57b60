// Package rewards turns raw points into credited points and unlocks medals.
package rewards

// StreakCapDays bounds the streak bonus at +100%.
const StreakCapDays = 10

// Transform is one bonus layer over an integer score.
type Transform func(points int) int

// DoubleXP doubles the inner score.
func DoubleXP() Transform {
	return func(points int) int { return 2 * points }
}

// StreakBonus adds 10% per streak day, capped at StreakCapDays, truncated.
func StreakBonus(days int) Transform {
	bonus := float64(min(days, StreakCapDays)) * 0.10
	return func(points int) int {
		return int(float64(points) * (1 + bonus))
	}
}

// Score is a base value wrapped by zero or more transforms applied left-to-right.
type Score struct {
	base   int
	layers []Transform
}

func NewScore(base int) *Score {
	return &Score{base: base}
}

// With appends a layer and returns the score for chaining.
func (s *Score) With(t Transform) *Score {
	s.layers = append(s.layers, t)
	return s
}

// Compute applies every layer in order.
func (s *Score) Compute() int {
	points := s.base
	for _, layer := range s.layers {
		points = layer(points)
	}
	return points
}
