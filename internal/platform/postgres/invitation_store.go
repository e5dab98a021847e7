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

// PostgresInvitationStore implements the store.InvitationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresInvitationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresInvitationStore creates a new PostgreSQL implementation of the
// InvitationStore interface.
func NewPostgresInvitationStore(db store.DBTX, log *slog.Logger) *PostgresInvitationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresInvitationStore{
		db:     db,
		logger: log.With(slog.String("component", "invitation_store")),
	}
}

// Ensure PostgresInvitationStore implements store.InvitationStore
var _ store.InvitationStore = (*PostgresInvitationStore)(nil)

// WithTx implements store.InvitationStore.WithTx
func (s *PostgresInvitationStore) WithTx(tx *sql.Tx) store.InvitationStore {
	return &PostgresInvitationStore{db: tx, logger: s.logger}
}

// Create implements store.InvitationStore.Create
// The partial unique index on connection_code (live invitations only)
// enforces code uniqueness; a violation surfaces as store.ErrDuplicateCode.
func (s *PostgresInvitationStore) Create(ctx context.Context, invitation *domain.Invitation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := invitation.Validate(); err != nil {
		log.Warn("invitation validation failed during create",
			slog.String("error", err.Error()),
			slog.String("invitation_id", invitation.ID.String()))
		return err
	}

	query := `
		INSERT INTO invitations (
			id, from_user_id, from_user_name, from_user_email, to_email,
			connection_code, personal_message, method, status, created_at,
			expires_at, accepted_at, relationship_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		invitation.ID,
		invitation.FromUserID,
		invitation.FromUserName,
		invitation.FromUserEmail,
		invitation.ToEmail,
		invitation.ConnectionCode,
		invitation.PersonalMessage,
		invitation.Method,
		invitation.Status,
		invitation.CreatedAt,
		invitation.ExpiresAt,
		invitation.AcceptedAt,
		invitation.RelationshipID,
	)

	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		log.Error("failed to create invitation",
			slog.String("error", err.Error()),
			slog.String("invitation_id", invitation.ID.String()))
		return err
	}

	log.Info("invitation created",
		slog.String("invitation_id", invitation.ID.String()),
		slog.String("method", string(invitation.Method)))
	return nil
}

// GetByID implements store.InvitationStore.GetByID
func (s *PostgresInvitationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
	query := selectInvitationColumns + ` WHERE id = $1`

	invitation, err := scanInvitation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrInvitationNotFound
		}
		return nil, err
	}

	return invitation, nil
}

// GetByCode implements store.InvitationStore.GetByCode
// When the same code has been reused after an older invitation expired, the
// live one wins; ordering by creation time keeps the lookup deterministic.
func (s *PostgresInvitationStore) GetByCode(ctx context.Context, connectionCode string) (*domain.Invitation, error) {
	query := selectInvitationColumns + `
		WHERE connection_code = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	invitation, err := scanInvitation(s.db.QueryRowContext(ctx, query, connectionCode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrInvitationNotFound
		}
		return nil, err
	}

	return invitation, nil
}

// UpdateIfStatusIn implements store.InvitationStore.UpdateIfStatusIn
// The status predicate in the WHERE clause is the compare-and-set: the first
// concurrent writer to transition the row wins and every loser sees zero
// rows affected.
func (s *PostgresInvitationStore) UpdateIfStatusIn(
	ctx context.Context,
	invitation *domain.Invitation,
	expected ...domain.InvitationStatus,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := invitation.Validate(); err != nil {
		log.Warn("invitation validation failed during update",
			slog.String("error", err.Error()),
			slog.String("invitation_id", invitation.ID.String()))
		return false, err
	}

	if len(expected) == 0 {
		return false, errors.New("expected statuses cannot be empty")
	}

	statuses := make([]string, len(expected))
	for i, status := range expected {
		statuses[i] = string(status)
	}

	query := `
		UPDATE invitations
		SET status = $1, accepted_at = $2, relationship_id = $3, expires_at = $4
		WHERE id = $5 AND status = ANY($6)
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		invitation.Status,
		invitation.AcceptedAt,
		invitation.RelationshipID,
		invitation.ExpiresAt,
		invitation.ID,
		statuses,
	)
	if err != nil {
		log.Error("failed to update invitation",
			slog.String("error", err.Error()),
			slog.String("invitation_id", invitation.ID.String()))
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	if rowsAffected == 0 {
		// Distinguish a lost race from a missing row.
		if _, err := s.GetByID(ctx, invitation.ID); err != nil {
			return false, err
		}
		return false, nil
	}

	log.Info("invitation updated",
		slog.String("invitation_id", invitation.ID.String()),
		slog.String("status", string(invitation.Status)))
	return true, nil
}

const selectInvitationColumns = `
	SELECT id, from_user_id, from_user_name, from_user_email, to_email,
		connection_code, personal_message, method, status, created_at,
		expires_at, accepted_at, relationship_id
	FROM invitations
`

func scanInvitation(row rowScanner) (*domain.Invitation, error) {
	var invitation domain.Invitation
	var method, status string

	err := row.Scan(
		&invitation.ID,
		&invitation.FromUserID,
		&invitation.FromUserName,
		&invitation.FromUserEmail,
		&invitation.ToEmail,
		&invitation.ConnectionCode,
		&invitation.PersonalMessage,
		&method,
		&status,
		&invitation.CreatedAt,
		&invitation.ExpiresAt,
		&invitation.AcceptedAt,
		&invitation.RelationshipID,
	)
	if err != nil {
		return nil, err
	}

	invitation.Method = domain.InvitationMethod(method)
	invitation.Status = domain.InvitationStatus(status)
	return &invitation, nil
}
