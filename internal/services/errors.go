package services

import (
	"errors"
)

// Error categories shared by all services. Callers classify failures with
// errors.Is; services wrap these with context via fmt.Errorf and %w.
var (
	// ErrValidation indicates malformed input (missing title, non-positive rate, bad rating).
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized indicates the actor lacks the required ownership or role.
	ErrUnauthorized = errors.New("not authorized")

	// ErrNotFound indicates a referenced entity is absent. Store-level
	// mongo.ErrNoDocuments is translated into this at the service boundary.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition indicates an illegal state-machine edge.
	ErrInvalidTransition = errors.New("invalid status transition")
)
