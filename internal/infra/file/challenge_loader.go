package file

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"quiz-rewards-engine/internal/domain"
)

// ChallengeLoader serves challenges from a YAML catalog read once at construction.
//
//	challenges:
//	  - id: quiz1
//	    title: ...
//	    difficulty: 2
//	    questions:
//	      - prompt: ...
//	        options: [a, b]
//	        correct_index: 1
//	        weight: 1.5
type ChallengeLoader struct {
	challenges map[string]domain.Challenge
}

type catalog struct {
	Challenges []domain.Challenge `yaml:"challenges"`
}

func NewChallengeLoader(path string) (*ChallengeLoader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read challenge catalog: %w", err)
	}
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode challenge catalog: %w", err)
	}
	byID := make(map[string]domain.Challenge, len(c.Challenges))
	for _, ch := range c.Challenges {
		if err := ch.Validate(); err != nil {
			return nil, err
		}
		byID[ch.ID] = ch
	}
	return &ChallengeLoader{challenges: byID}, nil
}

func (l *ChallengeLoader) LoadChallenge(_ context.Context, id string) (domain.Challenge, error) {
	if ch, ok := l.challenges[id]; ok {
		return ch, nil
	}
	return domain.Challenge{}, domain.ErrChallengeNotFound
}
