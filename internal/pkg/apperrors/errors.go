package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
)

// Placement errors
var (
	// ErrCapacityExceeded is the defined outcome of reserving a seat on a full offering.
	ErrCapacityExceeded = errors.New("offering capacity exceeded")
	// ErrMissingClusterMapping marks an application whose programme has no cluster to score against.
	ErrMissingClusterMapping = errors.New("programme has no cluster mapping")
	// ErrStorageFailure wraps any fault talking to the database.
	ErrStorageFailure = errors.New("storage failure")
	// ErrConcurrentModification is returned when a row changed between read and write.
	ErrConcurrentModification = errors.New("concurrent modification")
	// ErrNotEligible is returned when a student satisfies none of a programme's clusters.
	ErrNotEligible = errors.New("student does not meet cluster requirements")
	// ErrInvalidStatusTransition is returned for application status changes the lifecycle forbids.
	ErrInvalidStatusTransition = errors.New("invalid application status transition")
)

// Entity errors
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrPlacementNotFound   = errors.New("placement not found")
	ErrOfferingNotFound    = errors.New("university programme offering not found")
	ErrClusterNotFound     = errors.New("cluster not found")
	ErrStudentNotFound     = errors.New("student not found")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewValidationError rejects malformed input before any storage access.
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewStorageError wraps a database error so callers can match ErrStorageFailure
// while the original error stays reachable through errors.As.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// StorageError carries the failed operation and the underlying driver error
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorageFailure, e.Op, e.Err)
}

// Is makes errors.Is(err, ErrStorageFailure) true for every StorageError
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}
