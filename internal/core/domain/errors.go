package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access forbidden")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStorage            = errors.New("artifact storage failed")
	ErrPersistence        = errors.New("persistence failed")
	ErrRequestInFlight    = errors.New("a request with this idempotency key is still in progress")
)

// ValidationError carries a client-facing reason and matches ErrValidation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Validation builds a ValidationError from a format string.
func Validation(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Storage wraps a blob store failure so it matches ErrStorage.
func Storage(artifact string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, artifact, err)
}

// Persistence wraps a store write failure so it matches ErrPersistence.
func Persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
