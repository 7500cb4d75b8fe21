package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("request not found")
	ErrUnauthorized = errors.New("actor is not the assigned manager")
	ErrConflict     = errors.New("request already decided with a different outcome")
	ErrUserNotFound = errors.New("user has no balance row")
)

// ParseError means the extractor produced unusable date/reason data.
// The user is asked to rephrase; nothing is persisted.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not understand the request: %s", e.Reason)
}

// ValidationError means the extracted dates are logically invalid.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

type InsufficientBalanceError struct {
	Requested int
	Remaining int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("requested %d business days but only %d remaining", e.Requested, e.Remaining)
}
