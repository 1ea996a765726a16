package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that the input data is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates that the request lacks valid authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRegistryUnavailable indicates that an external registry call failed
	// (network error, timeout, or non-success response).
	ErrRegistryUnavailable = errors.New("registry unavailable")

	// ErrInsufficientNameParts indicates that a display name could not be
	// split into a given and family name.
	ErrInsufficientNameParts = errors.New("insufficient name parts")

	// ErrAuthorNotFound indicates that an ORCID resolved to no bibliographic author.
	ErrAuthorNotFound = errors.New("author not found")

	// ErrNoIdentityMatch indicates that the identity registry returned zero candidates.
	ErrNoIdentityMatch = errors.New("no identity match")

	// ErrAmbiguousIdentityMatch indicates that the identity registry returned
	// more than one candidate and no automatic resolution was attempted.
	ErrAmbiguousIdentityMatch = errors.New("ambiguous identity match")

	// ErrBackfillRunning indicates that a backfill run is already in progress.
	ErrBackfillRunning = errors.New("backfill already running")
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NotFoundError provides details about a not found entity.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// RegistryError provides details about a failed external registry call.
type RegistryError struct {
	Registry   string
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *RegistryError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s registry error (status %d): %s", e.Registry, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s registry error: %s", e.Registry, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
// The cause, if any, remains reachable through the error message only;
// callers branch on ErrRegistryUnavailable.
func (e *RegistryError) Unwrap() error {
	return ErrRegistryUnavailable
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{
		Entity: entity,
		ID:     id,
	}
}

// NewRegistryError creates a new RegistryError.
func NewRegistryError(registry string, statusCode int, message string, cause error) *RegistryError {
	return &RegistryError{
		Registry:   registry,
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}
