package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
	"github.com/oursapp/ours-api/internal/platform/logger"
	"github.com/oursapp/ours-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface using a
// PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface.
func NewPostgresUserStore(db store.DBTX, log *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: log.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, logger: s.logger}
}

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.UserProfile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", user.UID.String()))
		return err
	}

	query := `
		INSERT INTO users (
			uid, email, display_name, emotional_preference, partner_id,
			relationship_id, created_at, last_login, encryption_key
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		user.UID,
		user.Email,
		user.DisplayName,
		user.EmotionalPreference,
		user.PartnerID,
		user.RelationshipID,
		user.CreatedAt,
		user.LastLogin,
		user.EncryptionKey,
	)

	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.UID.String()))
		return err
	}

	log.Info("user created", slog.String("user_id", user.UID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	query := selectUserColumns + ` WHERE uid = $1`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	query := selectUserColumns + ` WHERE email = $1`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.UserProfile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_id", user.UID.String()))
		return err
	}

	query := `
		UPDATE users
		SET email = $1, display_name = $2, emotional_preference = $3,
			partner_id = $4, relationship_id = $5, last_login = $6,
			encryption_key = $7
		WHERE uid = $8
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		user.Email,
		user.DisplayName,
		user.EmotionalPreference,
		user.PartnerID,
		user.RelationshipID,
		user.LastLogin,
		user.EncryptionKey,
		user.UID,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrUserNotFound
	}

	return nil
}

const selectUserColumns = `
	SELECT uid, email, display_name, emotional_preference, partner_id,
		relationship_id, created_at, last_login, encryption_key
	FROM users
`

func scanUser(row rowScanner) (*domain.UserProfile, error) {
	var user domain.UserProfile
	var preference string

	err := row.Scan(
		&user.UID,
		&user.Email,
		&user.DisplayName,
		&preference,
		&user.PartnerID,
		&user.RelationshipID,
		&user.CreatedAt,
		&user.LastLogin,
		&user.EncryptionKey,
	)
	if err != nil {
		return nil, err
	}

	user.EmotionalPreference = domain.EmotionalPreference(preference)
	return &user, nil
}
