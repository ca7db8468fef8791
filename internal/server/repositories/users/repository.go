// Package users stores registered accounts for the credential store.
package users

import (
	"context"

	"github.com/lanzath/authapi/internal/server/models"
)

// Repository persists users. Emails are compared case-insensitively.
// Lookups return common.ErrorNotFound when no row matches and Create returns
// common.ErrorAlreadyExists when the email is taken.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
