package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
)

// RelationshipStore defines the interface for relationship persistence.
type RelationshipStore interface {
	// Create saves a new relationship.
	// Returns ErrActiveRelationshipExists if the pair already has an active
	// relationship; at most one may exist per pair of users.
	Create(ctx context.Context, relationship *domain.Relationship) error

	// GetByID retrieves a relationship by its unique ID.
	// Returns ErrRelationshipNotFound if the relationship does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Relationship, error)

	// GetActiveByPartner retrieves the active relationship a user belongs
	// to, regardless of which side of the pair they are on.
	// Returns ErrRelationshipNotFound if the user has none.
	GetActiveByPartner(ctx context.Context, userID uuid.UUID) (*domain.Relationship, error)

	// UpdateStatus transitions the relationship's status (e.g. disconnect).
	// Returns ErrRelationshipNotFound if the relationship does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RelationshipStatus) error

	// UpdateSyncScores refreshes the cached connection strength, harmony,
	// shared count and last-active stamp after a sync.
	// Returns ErrRelationshipNotFound if the relationship does not exist.
	UpdateSyncScores(ctx context.Context, relationship *domain.Relationship) error

	// WithTx returns a RelationshipStore bound to the provided transaction.
	WithTx(tx *sql.Tx) RelationshipStore
}
