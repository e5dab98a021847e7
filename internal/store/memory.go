package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
)

// MemoryStore defines the interface for emotional memory persistence. Reads
// always return sequences ordered by CreatedAt ascending per author, which
// is the only ordering guarantee the scoring engine relies on: appends from
// the two partners are independent, commutative writes.
type MemoryStore interface {
	// Append saves a new memory. Memories are immutable after creation
	// except for the IsShared flag.
	// Returns ErrInvalidEntity if the relationship or user does not exist.
	Append(ctx context.Context, memory *domain.EmotionalMemory) error

	// GetByID retrieves a memory by its unique ID.
	// Returns ErrMemoryNotFound if the memory does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.EmotionalMemory, error)

	// ReadByUser retrieves a user's memories ordered by CreatedAt ascending.
	ReadByUser(ctx context.Context, userID uuid.UUID) ([]*domain.EmotionalMemory, error)

	// ReadByRelationship retrieves every memory of a relationship ordered by
	// CreatedAt ascending.
	ReadByRelationship(ctx context.Context, relationshipID uuid.UUID) ([]*domain.EmotionalMemory, error)

	// SetShared toggles the IsShared flag, the only mutable field.
	// Returns ErrMemoryNotFound if the memory does not exist.
	SetShared(ctx context.Context, id uuid.UUID, shared bool) error

	// WithTx returns a MemoryStore bound to the provided transaction.
	WithTx(tx *sql.Tx) MemoryStore
}
