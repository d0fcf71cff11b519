package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Identity errors
	ErrIdentityUnavailable = errors.New("identity unavailable: multiplayer is disabled")

	// Party errors
	ErrPartyNotFound       = errors.New("party not found")
	ErrPartyNotJoinable    = errors.New("party is not accepting new players")
	ErrAlreadyInParty      = errors.New("already in a party")
	ErrNotInParty          = errors.New("not in a party")
	ErrNotHost             = errors.New("player is not the host")
	ErrWrongPhase          = errors.New("action not allowed in the current phase")
	ErrInsufficientPlayers = errors.New("insufficient players to start round")
	ErrCodeExhausted       = errors.New("could not allocate a free party code")

	// Authority errors
	ErrPermissionDenied = errors.New("permission denied: rejoin the party")
	ErrRejoinRequired   = errors.New("session no longer matches the word setter: rejoin the party")

	// Store errors
	ErrNetworkTransient = errors.New("store temporarily unreachable")
	ErrMalformedRecord  = errors.New("malformed record")

	// Dictionary errors
	ErrDictionaryNotLoaded = errors.New("dictionary not loaded")

	// ErrValidation matches every *ValidationError via errors.Is
	ErrValidation = errors.New("validation failed")
)

// ValidationError is a locally recoverable rejection of user input.
// Reason is the user-facing message.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Malformed wraps ErrMalformedRecord with the offending path and a reason
func Malformed(path, format string, args ...any) error {
	return fmt.Errorf("%w at %s: %s", ErrMalformedRecord, path, fmt.Sprintf(format, args...))
}
