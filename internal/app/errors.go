package app

import (
	"errors"
	"fmt"

	"github.com/landcharge/devtrack/internal/domain"
)

// ErrNotFound and related constants define package defaults.
var (
	ErrNotFound     = errors.New("not found")
	ErrNoProject    = errors.New("no active project")
	ErrRowNotLoaded = errors.New("row not loaded")
	ErrNoAnchorDate = errors.New("no anchor date for duration edit")
	ErrUnknownField = errors.New("unknown field")
)

// FieldError reports a failed mutation with the field that caused it.
type FieldError struct {
	RowID string
	Field domain.Field
	Err   error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s on row %s: %v", e.Field, e.RowID, e.Err)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}
