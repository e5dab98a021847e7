// Package service implements the application services of the engine: memory
// recording behind the encryption gate, relationship state synchronization,
// the invitation lifecycle and relationship management.
package service

import (
	"errors"
	"fmt"

	"github.com/oursapp/ours-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrClockRegression indicates a sync was requested with a timestamp
	// earlier than the last recorded sync for the relationship.
	// API layer should map this to HTTP 409 Conflict.
	ErrClockRegression = errors.New("sync time is earlier than the last recorded sync")

	// ErrNotParticipant indicates the requesting user is not a member of the
	// relationship they are operating on.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotParticipant = errors.New("user is not a participant of this relationship")

	// ErrNotOwned indicates a resource is owned by a different user than the
	// one making the request.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrSelfAccept indicates a user tried to accept their own invitation.
	// API layer should map this to HTTP 409 Conflict.
	ErrSelfAccept = errors.New("an invitation cannot be accepted by its sender")

	// ErrAlreadyPaired indicates the user already has an active relationship.
	// API layer should map this to HTTP 409 Conflict.
	ErrAlreadyPaired = errors.New("user already has an active relationship")

	// ErrMemoryNotFound indicates that the memory does not exist.
	ErrMemoryNotFound = errors.New("memory not found")

	// ErrRelationshipNotFound indicates that the relationship does not exist.
	ErrRelationshipNotFound = errors.New("relationship not found")

	// ErrInvitationNotFound indicates that the invitation does not exist.
	ErrInvitationNotFound = errors.New("invitation not found")

	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// ServiceError wraps errors from a service operation with context.
type ServiceError struct {
	// Operation is the operation that failed (e.g. "record_memory").
	Operation string
	// Message is a human-readable description of the error.
	Message string
	// Err is the underlying error that caused the failure.
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// mapStoreError translates store-level not-found sentinels into their
// service-level counterparts. Returns nil when err carries none of them.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrMemoryNotFound):
		return ErrMemoryNotFound
	case errors.Is(err, store.ErrRelationshipNotFound):
		return ErrRelationshipNotFound
	case errors.Is(err, store.ErrInvitationNotFound):
		return ErrInvitationNotFound
	case errors.Is(err, store.ErrUserNotFound):
		return ErrUserNotFound
	default:
		return nil
	}
}

// NewServiceError returns known sentinels unwrapped so callers can match
// them with errors.Is, and wraps everything else in a ServiceError.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if mapped := mapStoreError(err); mapped != nil {
		return mapped
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
