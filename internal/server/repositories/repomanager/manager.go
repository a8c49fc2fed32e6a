package repomanager

import (
	"context"
	"database/sql"

	"github.com/passvault-io/passvault/internal/dbx"
	"github.com/passvault-io/passvault/internal/server/repositories/accounts"
	"github.com/passvault-io/passvault/internal/server/repositories/records"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Records(db dbx.DBTX) records.Repository
}
