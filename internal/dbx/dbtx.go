// Package dbx holds the database handle abstractions used by the metadata
// repositories.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX lets a repository run against either *sql.DB or *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Pinger is the readiness probe of a connection pool. *sql.DB implements
// it, *sql.Tx does not.
type Pinger interface {
	PingContext(ctx context.Context) error
}
