package accesstokens

import (
	"context"
	"testing"
	"time"

	"github.com/lanzath/authapi/internal/common"
	"github.com/lanzath/authapi/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleToken(hash string) *models.AccessToken {
	issued := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	return &models.AccessToken{
		ID:        "plain-" + hash,
		Hash:      hash,
		UserID:    "user-1",
		Name:      common.PersonalAccessTokenName,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(time.Hour),
	}
}

// testRepositoryContract checks behavior every Repository implementation shares.
func testRepositoryContract(t *testing.T, repo Repository) {
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		tok := sampleToken("h-create")
		require.NoError(t, repo.Create(ctx, tok))

		got, err := repo.FindByHash(ctx, "h-create")
		require.NoError(t, err)
		assert.Empty(t, got.ID)
		assert.Equal(t, "h-create", got.Hash)
		assert.Equal(t, tok.UserID, got.UserID)
		assert.Equal(t, tok.Name, got.Name)
		assert.True(t, tok.IssuedAt.Equal(got.IssuedAt))
		assert.True(t, tok.ExpiresAt.Equal(got.ExpiresAt))
		assert.False(t, got.Revoked)
	})

	t.Run("duplicate hash", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, sampleToken("h-dup")))
		assert.ErrorIs(t, repo.Create(ctx, sampleToken("h-dup")), common.ErrorAlreadyExists)
	})

	t.Run("no expiry", func(t *testing.T) {
		tok := sampleToken("h-forever")
		tok.ExpiresAt = time.Time{}
		require.NoError(t, repo.Create(ctx, tok))

		got, err := repo.FindByHash(ctx, "h-forever")
		require.NoError(t, err)
		assert.True(t, got.ExpiresAt.IsZero())
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repo.FindByHash(ctx, "h-missing")
		assert.ErrorIs(t, err, common.ErrorNotFound)
		assert.ErrorIs(t, repo.Revoke(ctx, "h-missing"), common.ErrorNotFound)
	})

	t.Run("revoke", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, sampleToken("h-revoke")))
		require.NoError(t, repo.Revoke(ctx, "h-revoke"))
		require.NoError(t, repo.Revoke(ctx, "h-revoke"))

		got, err := repo.FindByHash(ctx, "h-revoke")
		require.NoError(t, err)
		assert.True(t, got.Revoked)
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, sampleToken("h-copy")))

		got, err := repo.FindByHash(ctx, "h-copy")
		require.NoError(t, err)
		got.Revoked = true
		got.UserID = "someone-else"

		again, err := repo.FindByHash(ctx, "h-copy")
		require.NoError(t, err)
		assert.False(t, again.Revoked)
		assert.Equal(t, "user-1", again.UserID)
	})
}
