package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oursapp/ours-api/internal/store"
)

// PostgreSQL error codes
const (
	pgUniqueViolationCode     = "23505"
	pgForeignKeyViolationCode = "23503"
)

// Constraint names from the migrations, used to map unique violations to
// the matching store sentinel.
const (
	constraintLiveConnectionCode = "invitations_live_connection_code_idx"
	constraintActivePair         = "relationships_active_pair_idx"
	constraintUserEmail          = "users_email_key"
)

// isForeignKeyViolation checks if the given error is a PostgreSQL foreign
// key constraint violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode
}

// mapUniqueViolation translates a PostgreSQL unique violation into the store
// sentinel matching the violated constraint. Returns nil when err is not a
// unique violation.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolationCode {
		return nil
	}

	switch pgErr.ConstraintName {
	case constraintLiveConnectionCode:
		return store.ErrDuplicateCode
	case constraintActivePair:
		return store.ErrActiveRelationshipExists
	case constraintUserEmail:
		return store.ErrEmailExists
	default:
		return store.ErrDuplicate
	}
}
