package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while driving a session.
//
// Runtime errors include:
//   - Unknown pattern: the pattern id has no registered rule
//   - Invalid setup: the pattern's initial layout breaks the slot model
//   - No legal move: the rule returned nothing before the pattern completed
//   - Replay mismatch: a recorded log disagrees with the rule
//
// Illegal user requests are never RuntimeErrors; they are no-ops.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// PatternID identifies the affected pattern.
	PatternID string

	// Step is the move index the error refers to, or -1.
	Step int

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownPattern indicates a pattern id with no rule.
	ErrCodeUnknownPattern RuntimeErrorCode = "UNKNOWN_PATTERN"

	// ErrCodeInvalidSetup indicates an unusable initial layout or step count.
	ErrCodeInvalidSetup RuntimeErrorCode = "INVALID_SETUP"

	// ErrCodeNoLegalMove indicates the rule stalled before completion.
	ErrCodeNoLegalMove RuntimeErrorCode = "NO_LEGAL_MOVE"

	// ErrCodeReplayMismatch indicates a recorded move differs from the rule.
	ErrCodeReplayMismatch RuntimeErrorCode = "REPLAY_MISMATCH"
)

// ErrBusy is returned by Load while a move is in flight.
var ErrBusy = errors.New("session busy: move in flight")

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.PatternID != "" && e.Step >= 0 {
		return fmt.Sprintf("%s: %s (pattern=%s, step=%d)", e.Code, e.Message, e.PatternID, e.Step)
	}
	if e.PatternID != "" {
		return fmt.Sprintf("%s: %s (pattern=%s)", e.Code, e.Message, e.PatternID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsUnknownPattern returns true if the error is an unknown pattern error.
// Uses errors.As to handle wrapped errors.
func IsUnknownPattern(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnknownPattern
	}
	return false
}

// IsReplayMismatch returns true if the error is a replay mismatch.
// Uses errors.As to handle wrapped errors.
func IsReplayMismatch(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeReplayMismatch
	}
	return false
}

// NewUnknownPatternError wraps a registry lookup failure.
func NewUnknownPatternError(patternID string, cause error) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeUnknownPattern,
		Message:   cause.Error(),
		PatternID: patternID,
		Step:      -1,
		Err:       cause,
	}
}

// NewInvalidSetupError reports a pattern that cannot be loaded.
func NewInvalidSetupError(patternID string, cause error) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeInvalidSetup,
		Message:   cause.Error(),
		PatternID: patternID,
		Step:      -1,
		Err:       cause,
	}
}

// NewNoLegalMoveError reports a rule that produced nothing at step.
func NewNoLegalMoveError(patternID string, step int) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeNoLegalMove,
		Message:   "rule prescribes no move before the pattern is complete",
		PatternID: patternID,
		Step:      step,
	}
}

// NewReplayMismatchError reports a logged move the rule would not produce.
func NewReplayMismatchError(patternID string, step int, message string) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeReplayMismatch,
		Message:   message,
		PatternID: patternID,
		Step:      step,
	}
}
