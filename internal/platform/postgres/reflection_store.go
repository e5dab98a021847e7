package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
	"github.com/oursapp/ours-api/internal/platform/logger"
	"github.com/oursapp/ours-api/internal/store"
)

// PostgresReflectionStore implements the store.ReflectionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReflectionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReflectionStore creates a new PostgreSQL implementation of the
// ReflectionStore interface.
func NewPostgresReflectionStore(db store.DBTX, log *slog.Logger) *PostgresReflectionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresReflectionStore{
		db:     db,
		logger: log.With(slog.String("component", "reflection_store")),
	}
}

// Ensure PostgresReflectionStore implements store.ReflectionStore
var _ store.ReflectionStore = (*PostgresReflectionStore)(nil)

// WithTx implements store.ReflectionStore.WithTx
func (s *PostgresReflectionStore) WithTx(tx *sql.Tx) store.ReflectionStore {
	return &PostgresReflectionStore{db: tx, logger: s.logger}
}

// Create implements store.ReflectionStore.Create
func (s *PostgresReflectionStore) Create(ctx context.Context, reflection *domain.EmotionalReflection) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := reflection.Validate(); err != nil {
		log.Warn("reflection validation failed during create",
			slog.String("error", err.Error()),
			slog.String("reflection_id", reflection.ID.String()))
		return err
	}

	query := `
		INSERT INTO reflections (id, user_id, prompt, response, sentiment, is_shared, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		reflection.ID,
		reflection.UserID,
		reflection.Prompt,
		reflection.Response,
		reflection.Sentiment,
		reflection.IsShared,
		reflection.CreatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user not found", store.ErrInvalidEntity)
		}
		log.Error("failed to create reflection",
			slog.String("error", err.Error()),
			slog.String("reflection_id", reflection.ID.String()))
		return err
	}

	return nil
}

// ReadByUser implements store.ReflectionStore.ReadByUser
func (s *PostgresReflectionStore) ReadByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.EmotionalReflection, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, prompt, response, sentiment, is_shared, created_at
		FROM reflections
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	reflections := []*domain.EmotionalReflection{}
	for rows.Next() {
		var reflection domain.EmotionalReflection

		err := rows.Scan(
			&reflection.ID,
			&reflection.UserID,
			&reflection.Prompt,
			&reflection.Response,
			&reflection.Sentiment,
			&reflection.IsShared,
			&reflection.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		reflections = append(reflections, &reflection)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reflections, nil
}
