package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
	"github.com/oursapp/ours-api/internal/store"
)

// RelationshipService provides relationship reads and the disconnect
// transition.
type RelationshipService interface {
	// GetRelationship retrieves a relationship; participants only.
	GetRelationship(ctx context.Context, relationshipID, userID uuid.UUID) (*domain.Relationship, error)

	// GetActiveRelationship retrieves the user's active relationship.
	GetActiveRelationship(ctx context.Context, userID uuid.UUID) (*domain.Relationship, error)

	// Disconnect deactivates the relationship and unlinks both partners.
	// The record and its memories are kept; only the pairing ends.
	// Idempotent on an already-inactive relationship.
	Disconnect(ctx context.Context, relationshipID, userID uuid.UUID) error
}

// relationshipServiceImpl implements the RelationshipService interface.
type relationshipServiceImpl struct {
	txRunner      TxRunner
	relationships store.RelationshipStore
	users         store.UserStore
	logger        *slog.Logger
}

// NewRelationshipService creates a new RelationshipService.
// It returns an error if any of the required dependencies are nil.
func NewRelationshipService(
	txRunner TxRunner,
	relationships store.RelationshipStore,
	users store.UserStore,
	logger *slog.Logger,
) (RelationshipService, error) {
	if txRunner == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "txRunner cannot be nil"}
	}
	if relationships == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "relationships cannot be nil"}
	}
	if users == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "users cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &relationshipServiceImpl{
		txRunner:      txRunner,
		relationships: relationships,
		users:         users,
		logger:        logger.With(slog.String("component", "relationship_service")),
	}, nil
}

// GetRelationship implements RelationshipService.GetRelationship
func (s *relationshipServiceImpl) GetRelationship(
	ctx context.Context,
	relationshipID, userID uuid.UUID,
) (*domain.Relationship, error) {
	relationship, err := s.relationships.GetByID(ctx, relationshipID)
	if err != nil {
		return nil, NewServiceError("get_relationship", "failed to retrieve relationship", err)
	}
	if relationship.PartnerOf(userID) == uuid.Nil {
		return nil, ErrNotParticipant
	}
	return relationship, nil
}

// GetActiveRelationship implements RelationshipService.GetActiveRelationship
func (s *relationshipServiceImpl) GetActiveRelationship(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.Relationship, error) {
	relationship, err := s.relationships.GetActiveByPartner(ctx, userID)
	if err != nil {
		return nil, NewServiceError("get_active_relationship", "failed to retrieve relationship", err)
	}
	return relationship, nil
}

// Disconnect implements RelationshipService.Disconnect
func (s *relationshipServiceImpl) Disconnect(
	ctx context.Context,
	relationshipID, userID uuid.UUID,
) error {
	relationship, err := s.relationships.GetByID(ctx, relationshipID)
	if err != nil {
		return NewServiceError("disconnect", "failed to retrieve relationship", err)
	}
	if relationship.PartnerOf(userID) == uuid.Nil {
		return ErrNotParticipant
	}
	if relationship.Status != domain.RelationshipStatusActive {
		return nil
	}

	err = s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.relationships.WithTx(tx).UpdateStatus(ctx, relationshipID,
			domain.RelationshipStatusInactive); err != nil {
			return NewServiceError("disconnect", "failed to deactivate relationship", err)
		}

		txUsers := s.users.WithTx(tx)
		for _, partnerID := range []uuid.UUID{relationship.Partner1ID, relationship.Partner2ID} {
			user, err := txUsers.GetByID(ctx, partnerID)
			if err != nil {
				return NewServiceError("disconnect", "failed to retrieve partner", err)
			}
			// A partner may already point at a newer pairing; only clear
			// links into this relationship.
			if user.RelationshipID == nil || *user.RelationshipID != relationshipID {
				continue
			}
			user.UnlinkPartner()
			if err := txUsers.Update(ctx, user); err != nil {
				return NewServiceError("disconnect", "failed to unlink partner", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("relationship disconnected",
		slog.String("relationship_id", relationshipID.String()),
		slog.String("requested_by", userID.String()))
	return nil
}
