package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound is returned when a username is not in the registry.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when registering a username twice.
	ErrUserExists = errors.New("user already exists")
	// ErrNotAuthenticated is returned when an action needs a logged-in user.
	ErrNotAuthenticated = errors.New("no user logged in")
	// ErrChallengeNotFound indicates the challenge content could not be loaded.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrValidation is the class of every ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports rejected input. No state is changed when it is returned.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
