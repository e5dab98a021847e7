// Package postgres provides PostgreSQL implementations of the store
// interfaces. Each store accepts any store.DBTX, so the same code path
// serves both pooled connections and transactions obtained through WithTx.
package postgres
