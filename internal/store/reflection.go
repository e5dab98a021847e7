package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
)

// ReflectionStore defines the interface for emotional reflection persistence.
type ReflectionStore interface {
	// Create saves a new reflection.
	// Returns ErrInvalidEntity if the user does not exist.
	Create(ctx context.Context, reflection *domain.EmotionalReflection) error

	// ReadByUser retrieves a user's reflections ordered by CreatedAt ascending.
	ReadByUser(ctx context.Context, userID uuid.UUID) ([]*domain.EmotionalReflection, error)

	// WithTx returns a ReflectionStore bound to the provided transaction.
	WithTx(tx *sql.Tx) ReflectionStore
}
