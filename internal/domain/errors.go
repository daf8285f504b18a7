package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Validation errors
	ErrMsgInvalidBet        = "invalid bet amount"
	ErrMsgInsufficientFunds = "insufficient balance"
	ErrMsgUnknownTrackType  = "unknown track type"
	ErrMsgSelfChallenge     = "cannot challenge yourself"
	ErrMsgUnknownKeyTier    = "unknown key tier"
	ErrMsgInvalidInput      = "invalid input"

	// Challenge errors
	ErrMsgChallengeNotFound  = "challenge not found"
	ErrMsgChallengeExpired   = "challenge expired"
	ErrMsgNotChallengeTarget = "challenge is addressed to another account"
	ErrMsgChallengeConflict  = "a challenge between these accounts is already pending"

	// Race errors
	ErrMsgRaceNotFound          = "race not found"
	ErrMsgInvalidRaceTransition = "invalid race state transition"
	ErrMsgAlreadySettled        = "race already settled"

	// Selector errors
	ErrMsgInvalidWeights = "invalid weights"

	// Database/System errors
	ErrMsgTxClosed = "tx is closed"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Validation errors
	ErrInvalidBet        = errors.New(ErrMsgInvalidBet)
	ErrInsufficientFunds = errors.New(ErrMsgInsufficientFunds)
	ErrUnknownTrackType  = errors.New(ErrMsgUnknownTrackType)
	ErrSelfChallenge     = errors.New(ErrMsgSelfChallenge)
	ErrUnknownKeyTier    = errors.New(ErrMsgUnknownKeyTier)
	ErrInvalidInput      = errors.New(ErrMsgInvalidInput)

	// Challenge errors
	ErrChallengeNotFound  = errors.New(ErrMsgChallengeNotFound)
	ErrChallengeExpired   = errors.New(ErrMsgChallengeExpired)
	ErrNotChallengeTarget = errors.New(ErrMsgNotChallengeTarget)
	ErrChallengeConflict  = errors.New(ErrMsgChallengeConflict)

	// Race errors
	ErrRaceNotFound          = errors.New(ErrMsgRaceNotFound)
	ErrInvalidRaceTransition = errors.New(ErrMsgInvalidRaceTransition)
	ErrAlreadySettled        = errors.New(ErrMsgAlreadySettled)

	// Selector errors
	ErrInvalidWeights = errors.New(ErrMsgInvalidWeights)
)

// InvalidWeightsError is returned by the weighted selector when the outcome
// list cannot produce a draw. It is a programming error and is never retried.
type InvalidWeightsError struct {
	Reason string
}

func (e *InvalidWeightsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMsgInvalidWeights, e.Reason)
}

func (e *InvalidWeightsError) Unwrap() error { return ErrInvalidWeights }

// UnknownTrackTypeError rejects a track name outside the closed set.
type UnknownTrackTypeError struct {
	Value string
}

func (e *UnknownTrackTypeError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMsgUnknownTrackType, e.Value)
}

func (e *UnknownTrackTypeError) Unwrap() error { return ErrUnknownTrackType }

// AlreadySettledError is returned when settlement is invoked twice for the same race.
type AlreadySettledError struct {
	RaceID uuid.UUID
}

func (e *AlreadySettledError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMsgAlreadySettled, e.RaceID)
}

func (e *AlreadySettledError) Unwrap() error { return ErrAlreadySettled }

// InsufficientBalanceError rejects a bet the account cannot cover.
type InsufficientBalanceError struct {
	AccountID string
	Balance   int64
	Required  int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: account %s has %d, needs %d", ErrMsgInsufficientFunds, e.AccountID, e.Balance, e.Required)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientFunds }

// Reason returns the short user-facing reason for a rejected operation.
// Unknown errors map to an empty string.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientFunds):
		return ErrMsgInsufficientFunds
	case errors.Is(err, ErrUnknownTrackType):
		return ErrMsgUnknownTrackType
	case errors.Is(err, ErrInvalidBet):
		return ErrMsgInvalidBet
	case errors.Is(err, ErrSelfChallenge):
		return ErrMsgSelfChallenge
	case errors.Is(err, ErrUnknownKeyTier):
		return ErrMsgUnknownKeyTier
	case errors.Is(err, ErrChallengeNotFound):
		return ErrMsgChallengeNotFound
	case errors.Is(err, ErrChallengeExpired):
		return ErrMsgChallengeExpired
	case errors.Is(err, ErrNotChallengeTarget):
		return ErrMsgNotChallengeTarget
	case errors.Is(err, ErrChallengeConflict):
		return ErrMsgChallengeConflict
	case errors.Is(err, ErrRaceNotFound):
		return ErrMsgRaceNotFound
	case errors.Is(err, ErrAlreadySettled):
		return ErrMsgAlreadySettled
	case errors.Is(err, ErrInvalidWeights):
		return ErrMsgInvalidWeights
	}
	return ""
}
