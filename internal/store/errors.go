package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. Entity-specific variants below wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate of
	// a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or references a row that does not exist.
	ErrInvalidEntity = errors.New("invalid entity")

	// Entity-specific "not found" errors

	// ErrMemoryNotFound indicates that the requested memory does not exist.
	ErrMemoryNotFound = fmt.Errorf("%w: memory", ErrNotFound)

	// ErrRelationshipNotFound indicates that the requested relationship does not exist.
	ErrRelationshipNotFound = fmt.Errorf("%w: relationship", ErrNotFound)

	// ErrInvitationNotFound indicates that the requested invitation does not exist.
	ErrInvitationNotFound = fmt.Errorf("%w: invitation", ErrNotFound)

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrReflectionNotFound indicates that the requested reflection does not exist.
	ErrReflectionNotFound = fmt.Errorf("%w: reflection", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrDuplicateCode indicates a connection code collision with another
	// live (non-expired) invitation.
	ErrDuplicateCode = fmt.Errorf("%w: connection code", ErrDuplicate)

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrActiveRelationshipExists indicates that the two partners already
	// have an active relationship; at most one may exist per pair.
	ErrActiveRelationshipExists = fmt.Errorf("%w: active relationship", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
