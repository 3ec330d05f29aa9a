// Package repomanager vends repository implementations so that services
// can run the same code against PostgreSQL or the in-memory fake.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dsavelev/authkeeper/internal/dbx"
	"github.com/dsavelev/authkeeper/internal/server/repositories/accounts"
)

// RepositoryManager hands out repositories bound to a DBTX, so a caller
// inside dbx.WithTx gets transactional repositories and a caller outside
// gets plain ones.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
}
