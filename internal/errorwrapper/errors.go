package errorwrapper

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a requested resource does not exist. Store-level
// sentinels wrap it so callers can match either the specific or the generic
// error with errors.Is.
var ErrNotFound = errors.New("not found")

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return fmt.Errorf("%s: <nil>", message)
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// TransientFetchError represents a network or timeout failure while fetching a
// candidate page. It is retried with backoff and eventually downgraded to a
// recorded fetch_failed outcome, never surfaced as a crash.
type TransientFetchError struct {
	URL      string
	Attempts int
	Wrapped  error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("fetch failed for '%s' after %d attempts: %v", e.URL, e.Attempts, e.Wrapped)
}

func (e *TransientFetchError) Unwrap() error { return e.Wrapped }

// NewTransientFetchError creates a new transient fetch error
func NewTransientFetchError(url string, attempts int, wrapped error) *TransientFetchError {
	return &TransientFetchError{URL: url, Attempts: attempts, Wrapped: wrapped}
}

// ClassificationError represents a per-site availability heuristic failure.
// The probe records the page as unavailable with no price and continues.
type ClassificationError struct {
	URL     string
	Wrapped error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification failed for '%s': %v", e.URL, e.Wrapped)
}

func (e *ClassificationError) Unwrap() error { return e.Wrapped }

// NewClassificationError creates a new classification error
func NewClassificationError(url string, wrapped error) *ClassificationError {
	return &ClassificationError{URL: url, Wrapped: wrapped}
}

// CollaboratorError represents a failure in an external collaborator (search,
// relevance, email). It is isolated to the calling step and never aborts
// sibling candidates or other tasks.
type CollaboratorError struct {
	Collaborator string
	Wrapped      error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("collaborator '%s' failed: %v", e.Collaborator, e.Wrapped)
}

func (e *CollaboratorError) Unwrap() error { return e.Wrapped }

// NewCollaboratorError creates a new collaborator error
func NewCollaboratorError(collaborator string, wrapped error) *CollaboratorError {
	return &CollaboratorError{Collaborator: collaborator, Wrapped: wrapped}
}

// PersistenceError represents a bookkeeping write failure. The in-memory run
// result is still reported to the caller; a missed last-checked update only
// causes an extra check next round.
type PersistenceError struct {
	Operation string
	Wrapped   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence operation '%s' failed: %v", e.Operation, e.Wrapped)
}

func (e *PersistenceError) Unwrap() error { return e.Wrapped }

// NewPersistenceError creates a new persistence error
func NewPersistenceError(operation string, wrapped error) *PersistenceError {
	return &PersistenceError{Operation: operation, Wrapped: wrapped}
}
