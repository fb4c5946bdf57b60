package domain_test

import (
	"errors"
	"testing"

	"quiz-rewards-engine/internal/domain"
)

func TestEvaluateUnweighted(t *testing.T) {
	ch := sampleChallenge()

	res := ch.Evaluate([]int{1, 0, 2})
	if res.Correct != 3 || res.Total != 3 || res.Accuracy != 1.0 {
		t.Fatalf("expected all correct, got %+v", res)
	}

	res = ch.Evaluate([]int{1, 2, 2})
	if res.Correct != 2 || res.Total != 3 {
		t.Fatalf("expected 2/3, got %+v", res)
	}
	if res.Accuracy != 2.0/3.0 {
		t.Fatalf("expected accuracy 2/3, got %v", res.Accuracy)
	}
}

func TestEvaluateToleratesShortAndInvalidAnswers(t *testing.T) {
	ch := sampleChallenge()

	res := ch.Evaluate([]int{1})
	if res.Correct != 1 || res.Total != 3 {
		t.Fatalf("expected missing answers to count as wrong, got %+v", res)
	}

	res = ch.Evaluate([]int{-1, 99, 7, 1, 1})
	if res.Correct != 0 || res.Total != 3 || res.Accuracy != 0 {
		t.Fatalf("expected out-of-range answers to be wrong, got %+v", res)
	}

	res = ch.Evaluate(nil)
	if res.Correct != 0 || res.Total != 3 {
		t.Fatalf("expected nil answers to be graded, got %+v", res)
	}
}

func TestEvaluateEmptyChallenge(t *testing.T) {
	ch := domain.Challenge{ID: "empty", Difficulty: 1}
	res := ch.Evaluate([]int{0, 1})
	if res.Total != 0 || res.Correct != 0 || res.Accuracy != 0.0 {
		t.Fatalf("expected zero result, got %+v", res)
	}
}

func TestEvaluateWeighted(t *testing.T) {
	ch := domain.Challenge{
		ID:         "w",
		Difficulty: 2,
		Questions: []domain.Question{
			{Prompt: "a", Options: []string{"x", "y"}, CorrectIndex: 0, Weight: domain.Weight(1.0)},
			{Prompt: "b", Options: []string{"x", "y"}, CorrectIndex: 1, Weight: domain.Weight(2.0)},
			{Prompt: "c", Options: []string{"x", "y"}, CorrectIndex: 0, Weight: domain.Weight(1.0)},
		},
	}

	res := ch.Evaluate([]int{1, 1, 1})
	if res.Accuracy != 0.5 {
		t.Fatalf("expected accuracy 0.5, got %v", res.Accuracy)
	}
	if res.Correct != 2 || res.Total != 4 {
		t.Fatalf("expected truncated sums 2/4, got %+v", res)
	}
}

func TestEvaluateWeightedTruncatesSums(t *testing.T) {
	ch := domain.Challenge{
		ID:         "frac",
		Difficulty: 1,
		Questions: []domain.Question{
			{CorrectIndex: 0, Weight: domain.Weight(1.5)},
			{CorrectIndex: 0}, // defaults to 1.0 once any weight is present
		},
	}

	res := ch.Evaluate([]int{0, 1})
	if res.Correct != 1 || res.Total != 2 {
		t.Fatalf("expected int(1.5)=1 and int(2.5)=2, got %+v", res)
	}
	if res.Accuracy != 1.5/2.5 {
		t.Fatalf("expected accuracy 0.6, got %v", res.Accuracy)
	}
}

func TestEvaluateZeroWeights(t *testing.T) {
	ch := domain.Challenge{
		ID:         "zero",
		Difficulty: 1,
		Questions:  []domain.Question{{CorrectIndex: 0, Weight: domain.Weight(0)}},
	}
	res := ch.Evaluate([]int{0})
	if res.Accuracy != 0.0 || res.Total != 0 {
		t.Fatalf("expected zero accuracy for zero weight sum, got %+v", res)
	}
}

func TestChallengeValidate(t *testing.T) {
	if err := sampleChallenge().Validate(); err != nil {
		t.Fatalf("expected valid challenge, got %v", err)
	}
	bad := domain.Challenge{ID: "x", Difficulty: 0}
	if err := bad.Validate(); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := (domain.Challenge{Difficulty: 1}).Validate(); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty id, got %v", err)
	}
}

func TestChallengeValidateQuestions(t *testing.T) {
	cases := map[string]domain.Question{
		"negative index":  {Prompt: "q", Options: []string{"a", "b"}, CorrectIndex: -1},
		"index too large": {Prompt: "q", Options: []string{"a", "b"}, CorrectIndex: 2},
		"no options":      {Prompt: "q", CorrectIndex: 0},
		"negative weight": {Prompt: "q", Options: []string{"a", "b"}, CorrectIndex: 0, Weight: domain.Weight(-1)},
	}
	for name, q := range cases {
		ch := domain.Challenge{ID: "x", Difficulty: 1, Questions: []domain.Question{q}}
		if err := ch.Validate(); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}

	zero := domain.Challenge{ID: "x", Difficulty: 1, Questions: []domain.Question{
		{Prompt: "q", Options: []string{"a", "b"}, CorrectIndex: 1, Weight: domain.Weight(0)},
	}}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero weight should be accepted, got %v", err)
	}
}

func TestEvaluateNegativeAnswerNeverMatches(t *testing.T) {
	// Built without Validate, as a hand-made catalog entry would be.
	ch := domain.Challenge{ID: "x", Difficulty: 1, Questions: []domain.Question{
		{Prompt: "q", Options: []string{"a", "b"}, CorrectIndex: -1},
	}}
	got := ch.Evaluate([]int{-1})
	if got.Correct != 0 || got.Accuracy != 0 {
		t.Fatalf("unanswered question graded as correct: %+v", got)
	}
}

func sampleChallenge() domain.Challenge {
	return domain.Challenge{
		ID:         "quiz-1",
		Title:      "Patterns",
		Difficulty: 2,
		Questions: []domain.Question{
			{Prompt: "Single instance?", Options: []string{"Factory", "Singleton", "Observer"}, CorrectIndex: 1},
			{Prompt: "Notifies dependents?", Options: []string{"Observer", "Adapter", "Facade"}, CorrectIndex: 0},
			{Prompt: "Tree of parts?", Options: []string{"Proxy", "Bridge", "Composite"}, CorrectIndex: 2},
		},
	}
}
