package domain

import (
	"fmt"
	"strings"
)

// Question is a multiple-choice question with one correct option.
type Question struct {
	Prompt       string   `json:"prompt" yaml:"prompt"`
	Options      []string `json:"options" yaml:"options"`
	CorrectIndex int      `json:"correct_index" yaml:"correct_index"`
	Weight       *float64 `json:"weight,omitempty" yaml:"weight,omitempty"` // nil counts as 1.0
}

// Challenge is a quiz. Treat it as immutable once loaded.
type Challenge struct {
	ID         string     `json:"id" yaml:"id"`
	Title      string     `json:"title" yaml:"title"`
	Difficulty int        `json:"difficulty" yaml:"difficulty"`
	Questions  []Question `json:"questions" yaml:"questions"`
}

// GradeResult summarizes one evaluated answer set.
type GradeResult struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// Validate checks the fields loaders must not accept.
func (c Challenge) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return &ValidationError{Field: "challenge id", Reason: "must not be empty"}
	}
	if c.Difficulty <= 0 {
		return &ValidationError{Field: "difficulty", Value: c.ID, Reason: "must be positive"}
	}
	for i, q := range c.Questions {
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return &ValidationError{
				Field:  "correct index",
				Value:  fmt.Sprintf("%s#%d", c.ID, i+1),
				Reason: fmt.Sprintf("must be within the %d options", len(q.Options)),
			}
		}
		if q.Weight != nil && *q.Weight < 0 {
			return &ValidationError{Field: "weight", Value: fmt.Sprintf("%s#%d", c.ID, i+1), Reason: "must not be negative"}
		}
	}
	return nil
}

// Weighted reports whether any question carries an explicit weight.
func (c Challenge) Weighted() bool {
	for _, q := range c.Questions {
		if q.Weight != nil {
			return true
		}
	}
	return false
}

// Evaluate grades answers[i] against question i. Missing or out-of-range
// answers count as wrong; it never fails.
//
// In weighted mode Correct and Total are the weight sums truncated to ints.
func (c Challenge) Evaluate(answers []int) GradeResult {
	if !c.Weighted() {
		correct := 0
		for i, q := range c.Questions {
			if answeredCorrectly(answers, i, q) {
				correct++
			}
		}
		total := len(c.Questions)
		accuracy := 0.0
		if total > 0 {
			accuracy = float64(correct) / float64(total)
		}
		return GradeResult{Correct: correct, Total: total, Accuracy: accuracy}
	}

	var sumWeight, sumCorrect float64
	for i, q := range c.Questions {
		w := 1.0
		if q.Weight != nil {
			w = *q.Weight
		}
		sumWeight += w
		if answeredCorrectly(answers, i, q) {
			sumCorrect += w
		}
	}
	accuracy := 0.0
	if sumWeight > 0 {
		accuracy = sumCorrect / sumWeight
	}
	return GradeResult{Correct: int(sumCorrect), Total: int(sumWeight), Accuracy: accuracy}
}

func answeredCorrectly(answers []int, i int, q Question) bool {
	return i < len(answers) && answers[i] >= 0 && answers[i] == q.CorrectIndex
}

// Weight is a helper for building weighted questions.
func Weight(w float64) *float64 {
	return &w
}
