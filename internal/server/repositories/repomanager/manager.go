// Package repomanager vends repositories bound to a database handle or an
// open transaction, and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/noteauth/internal/dbx"
	"github.com/dmitrijs2005/noteauth/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/noteauth/internal/server/repositories/refreshtokens"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Credentials(db dbx.DBTX) credentials.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
