// Package repomanager vends repository implementations bound to a storage
// backend, so services never construct repositories directly.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/lanzath/authapi/internal/dbx"
	"github.com/lanzath/authapi/internal/server/repositories/accesstokens"
	"github.com/lanzath/authapi/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	AccessTokens(db dbx.DBTX) accesstokens.Repository
}
