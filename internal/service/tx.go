package service

import (
	"context"
	"database/sql"

	"github.com/oursapp/ours-api/internal/store"
)

// TxRunner abstracts transactional execution so services can be unit tested
// without a live database.
type TxRunner interface {
	// RunInTransaction executes fn inside a transaction, committing on nil
	// and rolling back otherwise.
	RunInTransaction(ctx context.Context, fn store.TxFn) error
}

// DBTxRunner is the production TxRunner backed by a *sql.DB.
type DBTxRunner struct {
	db *sql.DB
}

// NewDBTxRunner creates a TxRunner over the given database handle.
func NewDBTxRunner(db *sql.DB) *DBTxRunner {
	if db == nil {
		panic("db cannot be nil")
	}
	return &DBTxRunner{db: db}
}

// RunInTransaction implements TxRunner.RunInTransaction
func (r *DBTxRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	return store.RunInTransaction(ctx, r.db, fn)
}
