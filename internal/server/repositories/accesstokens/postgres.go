package accesstokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lanzath/authapi/internal/common"
	"github.com/lanzath/authapi/internal/dbx"
	"github.com/lanzath/authapi/internal/server/models"
)

// PostgresRepository stores tokens in the access_tokens table over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, token *models.AccessToken) error {
	query := `
		INSERT INTO access_tokens (token_hash, user_id, name, issued_at, expires_at, revoked)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	expires := sql.NullTime{Time: token.ExpiresAt, Valid: !token.ExpiresAt.IsZero()}

	if _, err := r.db.ExecContext(ctx, query,
		token.Hash, token.UserID, token.Name, token.IssuedAt, expires, token.Revoked); err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByHash(ctx context.Context, hash string) (*models.AccessToken, error) {
	query := `
		SELECT token_hash, user_id, name, issued_at, expires_at, revoked
		FROM access_tokens
		WHERE token_hash = $1
	`
	token := &models.AccessToken{}
	var expires sql.NullTime

	if err := r.db.QueryRowContext(ctx, query, hash).
		Scan(&token.Hash, &token.UserID, &token.Name, &token.IssuedAt, &expires, &token.Revoked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if expires.Valid {
		token.ExpiresAt = expires.Time
	}
	return token, nil
}

// Revoke locks the token row and marks it revoked, so revokes from several
// server instances serialize on the row. A repository bound to a pool runs
// in its own transaction; one bound to a *sql.Tx joins it.
func (r *PostgresRepository) Revoke(ctx context.Context, hash string) error {
	var err error
	if db, ok := r.db.(dbx.Beginner); ok {
		err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return revokeRow(ctx, tx, hash)
		})
	} else {
		err = revokeRow(ctx, r.db, hash)
	}
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("db error: %w", err)
	}
	return err
}

func revokeRow(ctx context.Context, tx dbx.DBTX, hash string) error {
	lock := `
		SELECT revoked FROM access_tokens
		WHERE token_hash = $1
		FOR UPDATE
	`
	var revoked bool
	if err := tx.QueryRowContext(ctx, lock, hash).Scan(&revoked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return err
	}
	if revoked {
		return nil
	}

	update := `
		UPDATE access_tokens SET revoked = TRUE, updated_at = now()
		WHERE token_hash = $1
	`
	_, err := tx.ExecContext(ctx, update, hash)
	return err
}
