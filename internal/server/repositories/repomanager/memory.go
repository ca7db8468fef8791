package repomanager

import (
	"context"
	"database/sql"

	"github.com/lanzath/authapi/internal/dbx"
	"github.com/lanzath/authapi/internal/server/repositories/accesstokens"
	"github.com/lanzath/authapi/internal/server/repositories/users"
)

// MemoryRepositoryManager hands out process-local repositories. The DBTX
// argument is ignored and every call returns the same instances, so state
// survives across calls for the lifetime of the manager.
type MemoryRepositoryManager struct {
	users  *users.MemoryRepository
	tokens *accesstokens.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:  users.NewMemoryRepository(),
		tokens: accesstokens.NewMemoryRepository(),
	}
}

// RunMigrations is a no-op: memory storage has no schema.
func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}

func (m *MemoryRepositoryManager) AccessTokens(dbx.DBTX) accesstokens.Repository {
	return m.tokens
}
