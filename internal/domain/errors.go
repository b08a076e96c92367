package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoRateAvailable = errors.New("no exchange rate available: enter a manual rate or save one under exchange rates")
	ErrNotFound        = errors.New("not found")
)

// ValidationError reports bad or missing user input. No record is written
// when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StoreError wraps a failed record-store call.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// WrapStore wraps err as a StoreError unless it is nil or already a domain error.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) || errors.Is(err, ErrNotFound) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// UploadError reports the proof file that failed. Uploaded holds the paths
// stored before the failure; they are not attached to the transfer.
type UploadError struct {
	Index    int
	Filename string
	Uploaded []string
	Err      error
}

func (e *UploadError) Error() string {
	name := strings.TrimSpace(e.Filename)
	if name == "" {
		name = "unnamed"
	}
	return fmt.Sprintf("upload proof %d (%s): %v", e.Index+1, name, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
