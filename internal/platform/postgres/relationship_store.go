package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
	"github.com/oursapp/ours-api/internal/platform/logger"
	"github.com/oursapp/ours-api/internal/store"
)

// PostgresRelationshipStore implements the store.RelationshipStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRelationshipStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRelationshipStore creates a new PostgreSQL implementation of
// the RelationshipStore interface.
func NewPostgresRelationshipStore(db store.DBTX, log *slog.Logger) *PostgresRelationshipStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresRelationshipStore{
		db:     db,
		logger: log.With(slog.String("component", "relationship_store")),
	}
}

// Ensure PostgresRelationshipStore implements store.RelationshipStore
var _ store.RelationshipStore = (*PostgresRelationshipStore)(nil)

// WithTx implements store.RelationshipStore.WithTx
func (s *PostgresRelationshipStore) WithTx(tx *sql.Tx) store.RelationshipStore {
	return &PostgresRelationshipStore{db: tx, logger: s.logger}
}

// Create implements store.RelationshipStore.Create
// The partial unique index on the normalized partner pair enforces the
// at-most-one-active-relationship invariant; a violation surfaces as
// store.ErrActiveRelationshipExists.
func (s *PostgresRelationshipStore) Create(ctx context.Context, relationship *domain.Relationship) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := relationship.Validate(); err != nil {
		log.Warn("relationship validation failed during create",
			slog.String("error", err.Error()),
			slog.String("relationship_id", relationship.ID.String()))
		return err
	}

	query := `
		INSERT INTO relationships (
			id, partner1_id, partner2_id, partner1_name, partner2_name,
			partner1_email, partner2_email, status, created_at, last_active,
			connection_strength, emotional_harmony, shared_memories_count,
			relationship_key
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		relationship.ID,
		relationship.Partner1ID,
		relationship.Partner2ID,
		relationship.Partner1Name,
		relationship.Partner2Name,
		relationship.Partner1Email,
		relationship.Partner2Email,
		relationship.Status,
		relationship.CreatedAt,
		relationship.LastActive,
		relationship.ConnectionStrength,
		relationship.EmotionalHarmony,
		relationship.SharedMemoriesCount,
		relationship.RelationshipKey,
	)

	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		log.Error("failed to create relationship",
			slog.String("error", err.Error()),
			slog.String("relationship_id", relationship.ID.String()))
		return err
	}

	log.Info("relationship created",
		slog.String("relationship_id", relationship.ID.String()))
	return nil
}

// GetByID implements store.RelationshipStore.GetByID
func (s *PostgresRelationshipStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Relationship, error) {
	query := selectRelationshipColumns + ` WHERE id = $1`

	relationship, err := scanRelationship(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRelationshipNotFound
		}
		return nil, err
	}

	return relationship, nil
}

// GetActiveByPartner implements store.RelationshipStore.GetActiveByPartner
func (s *PostgresRelationshipStore) GetActiveByPartner(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.Relationship, error) {
	query := selectRelationshipColumns + `
		WHERE status = $1 AND (partner1_id = $2 OR partner2_id = $2)
	`

	relationship, err := scanRelationship(
		s.db.QueryRowContext(ctx, query, domain.RelationshipStatusActive, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRelationshipNotFound
		}
		return nil, err
	}

	return relationship, nil
}

// UpdateStatus implements store.RelationshipStore.UpdateStatus
func (s *PostgresRelationshipStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.RelationshipStatus,
) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE relationships SET status = $1, last_active = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrRelationshipNotFound
	}

	return nil
}

// UpdateSyncScores implements store.RelationshipStore.UpdateSyncScores
func (s *PostgresRelationshipStore) UpdateSyncScores(
	ctx context.Context,
	relationship *domain.Relationship,
) error {
	query := `
		UPDATE relationships
		SET connection_strength = $1, emotional_harmony = $2,
			shared_memories_count = $3, last_active = $4
		WHERE id = $5
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		relationship.ConnectionStrength,
		relationship.EmotionalHarmony,
		relationship.SharedMemoriesCount,
		relationship.LastActive,
		relationship.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrRelationshipNotFound
	}

	return nil
}

const selectRelationshipColumns = `
	SELECT id, partner1_id, partner2_id, partner1_name, partner2_name,
		partner1_email, partner2_email, status, created_at, last_active,
		connection_strength, emotional_harmony, shared_memories_count,
		relationship_key
	FROM relationships
`

func scanRelationship(row rowScanner) (*domain.Relationship, error) {
	var relationship domain.Relationship
	var status string

	err := row.Scan(
		&relationship.ID,
		&relationship.Partner1ID,
		&relationship.Partner2ID,
		&relationship.Partner1Name,
		&relationship.Partner2Name,
		&relationship.Partner1Email,
		&relationship.Partner2Email,
		&status,
		&relationship.CreatedAt,
		&relationship.LastActive,
		&relationship.ConnectionStrength,
		&relationship.EmotionalHarmony,
		&relationship.SharedMemoriesCount,
		&relationship.RelationshipKey,
	)
	if err != nil {
		return nil, err
	}

	relationship.Status = domain.RelationshipStatus(status)
	return &relationship, nil
}
