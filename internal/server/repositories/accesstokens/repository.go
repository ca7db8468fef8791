// Package accesstokens declares the storage contract for issued access tokens
// and provides memory, PostgreSQL and Redis implementations of it.
//
// Tokens are keyed by the SHA-256 hash of their identifier; the identifier
// itself is never written to storage.
package accesstokens

import (
	"context"

	"github.com/lanzath/authapi/internal/server/models"
)

// Repository defines the operations the token registry needs from storage.
type Repository interface {
	// Create stores a new token. It returns common.ErrorAlreadyExists when a
	// token with the same hash is already present.
	Create(ctx context.Context, token *models.AccessToken) error

	// FindByHash returns the stored token or common.ErrorNotFound.
	FindByHash(ctx context.Context, hash string) (*models.AccessToken, error)

	// Revoke marks the token revoked. It returns common.ErrorNotFound when no
	// token has the given hash. Revoking twice is not an error.
	Revoke(ctx context.Context, hash string) error
}
