package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
	"github.com/oursapp/ours-api/internal/platform/logger"
	"github.com/oursapp/ours-api/internal/store"
)

// PostgresMemoryStore implements the store.MemoryStore interface using a
// PostgreSQL database as the storage backend.
type PostgresMemoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMemoryStore creates a new PostgreSQL implementation of the
// MemoryStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresMemoryStore(db store.DBTX, log *slog.Logger) *PostgresMemoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresMemoryStore{
		db:     db,
		logger: log.With(slog.String("component", "memory_store")),
	}
}

// Ensure PostgresMemoryStore implements store.MemoryStore
var _ store.MemoryStore = (*PostgresMemoryStore)(nil)

// WithTx implements store.MemoryStore.WithTx
func (s *PostgresMemoryStore) WithTx(tx *sql.Tx) store.MemoryStore {
	return &PostgresMemoryStore{db: tx, logger: s.logger}
}

// Append implements store.MemoryStore.Append
// Returns validation errors from the domain EmotionalMemory if data is
// invalid, and store.ErrInvalidEntity on a dangling user or relationship
// reference.
func (s *PostgresMemoryStore) Append(ctx context.Context, memory *domain.EmotionalMemory) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := memory.Validate(); err != nil {
		log.Warn("memory validation failed during append",
			slog.String("error", err.Error()),
			slog.String("memory_id", memory.ID.String()))
		return err
	}

	query := `
		INSERT INTO memories (
			id, user_id, partner_id, relationship_id, image_url, caption,
			mood, category, created_at, emotional_score, encrypted,
			encrypted_data, is_shared
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		memory.ID,
		memory.UserID,
		memory.PartnerID,
		memory.RelationshipID,
		memory.ImageURL,
		memory.Caption,
		memory.Mood,
		memory.Category,
		memory.CreatedAt,
		memory.EmotionalScore,
		memory.Encrypted,
		memory.EncryptedData,
		memory.IsShared,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: relationship or user not found", store.ErrInvalidEntity)
		}
		log.Error("failed to append memory",
			slog.String("error", err.Error()),
			slog.String("memory_id", memory.ID.String()))
		return err
	}

	log.Info("memory appended",
		slog.String("memory_id", memory.ID.String()),
		slog.String("relationship_id", memory.RelationshipID.String()))
	return nil
}

// GetByID implements store.MemoryStore.GetByID
func (s *PostgresMemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.EmotionalMemory, error) {
	query := selectMemoryColumns + ` WHERE id = $1`

	memory, err := scanMemory(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMemoryNotFound
		}
		return nil, err
	}

	return memory, nil
}

// ReadByUser implements store.MemoryStore.ReadByUser
func (s *PostgresMemoryStore) ReadByUser(ctx context.Context, userID uuid.UUID) ([]*domain.EmotionalMemory, error) {
	query := selectMemoryColumns + ` WHERE user_id = $1 ORDER BY created_at ASC, id ASC`
	return s.queryMemories(ctx, query, userID)
}

// ReadByRelationship implements store.MemoryStore.ReadByRelationship
func (s *PostgresMemoryStore) ReadByRelationship(
	ctx context.Context,
	relationshipID uuid.UUID,
) ([]*domain.EmotionalMemory, error) {
	query := selectMemoryColumns + ` WHERE relationship_id = $1 ORDER BY created_at ASC, id ASC`
	return s.queryMemories(ctx, query, relationshipID)
}

// SetShared implements store.MemoryStore.SetShared
func (s *PostgresMemoryStore) SetShared(ctx context.Context, id uuid.UUID, shared bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE memories SET is_shared = $1 WHERE id = $2`, shared, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrMemoryNotFound
	}

	return nil
}

const selectMemoryColumns = `
	SELECT id, user_id, partner_id, relationship_id, image_url, caption,
		mood, category, created_at, emotional_score, encrypted,
		encrypted_data, is_shared
	FROM memories
`

// rowScanner abstracts *sql.Row and *sql.Rows for scanMemory.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(row rowScanner) (*domain.EmotionalMemory, error) {
	var memory domain.EmotionalMemory
	var mood, category string

	err := row.Scan(
		&memory.ID,
		&memory.UserID,
		&memory.PartnerID,
		&memory.RelationshipID,
		&memory.ImageURL,
		&memory.Caption,
		&mood,
		&category,
		&memory.CreatedAt,
		&memory.EmotionalScore,
		&memory.Encrypted,
		&memory.EncryptedData,
		&memory.IsShared,
	)
	if err != nil {
		return nil, err
	}

	memory.Mood = domain.Mood(mood)
	memory.Category = domain.MemoryCategory(category)
	return &memory, nil
}

func (s *PostgresMemoryStore) queryMemories(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.EmotionalMemory, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	memories := []*domain.EmotionalMemory{}
	for rows.Next() {
		memory, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, memory)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return memories, nil
}
