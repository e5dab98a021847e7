package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
)

// UserStore defines the interface for user profile persistence.
type UserStore interface {
	// Create saves a new user profile.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.UserProfile) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error)

	// Update modifies an existing user profile. The caller must provide the
	// complete profile.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.UserProfile) error

	// WithTx returns a UserStore bound to the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
