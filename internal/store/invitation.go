package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
)

// InvitationStore defines the interface for invitation persistence.
//
// Transitions out of a non-terminal state go through UpdateIfStatusIn, a
// compare-and-set on the status column: two concurrent accept calls race on
// it and exactly one wins, which is what makes relationship creation atomic.
type InvitationStore interface {
	// Create saves a new invitation.
	// Returns ErrDuplicateCode if the connection code collides with another
	// live (non-expired) invitation.
	Create(ctx context.Context, invitation *domain.Invitation) error

	// GetByID retrieves an invitation by its unique ID.
	// Returns ErrInvitationNotFound if the invitation does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invitation, error)

	// GetByCode retrieves an invitation by its connection code.
	// Returns ErrInvitationNotFound if no invitation carries the code.
	GetByCode(ctx context.Context, connectionCode string) (*domain.Invitation, error)

	// UpdateIfStatusIn writes the invitation's mutable fields only if the
	// stored status is still one of expected. Reports whether the write
	// happened; false means another writer transitioned the row first and
	// the caller should re-read to observe the winner's result.
	UpdateIfStatusIn(
		ctx context.Context,
		invitation *domain.Invitation,
		expected ...domain.InvitationStatus,
	) (bool, error)

	// WithTx returns an InvitationStore bound to the provided transaction.
	WithTx(tx *sql.Tx) InvitationStore
}
