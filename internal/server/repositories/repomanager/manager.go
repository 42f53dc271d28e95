package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/cmiyc/internal/dbx"
	"github.com/dmitrijs2005/cmiyc/internal/server/repositories/accounts"
)

// RepositoryManager vends repositories bound to a DBTX so that services can
// run them either on the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
}
