// Package repomanager provides the RepositoryManager used by the server:
// it vends repository implementations bound to a database handle and runs
// the embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/shareme/internal/dbx"
	"github.com/dmitrijs2005/shareme/internal/server/repositories/files"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Files(db dbx.DBTX) files.Repository
}
