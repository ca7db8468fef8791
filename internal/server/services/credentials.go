// Package services contains server-side business logic: the credential
// store that owns user records and the session service that turns verified
// credentials into access tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lanzath/authapi/internal/common"
	"github.com/lanzath/authapi/internal/cryptox"
	"github.com/lanzath/authapi/internal/server/models"
	"github.com/lanzath/authapi/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// DefaultStoreTimeout bounds each credential store call when no timeout is configured.
const DefaultStoreTimeout = 3 * time.Second

// SignupInput is the data accepted when creating an account.
type SignupInput struct {
	Name     string `json:"name" form:"name" validate:"max=255"`
	Email    string `json:"email" form:"email" validate:"required,email,max=255"`
	Password string `json:"password" form:"password" validate:"required,maxbytes=72"`
}

// LoginInput is the data accepted when logging in.
type LoginInput struct {
	Email      string `json:"email" form:"email" validate:"required,email"`
	Password   string `json:"password" form:"password" validate:"required"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

// CredentialStore owns user records and verifies passwords against them.
type CredentialStore struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validate    *validator.Validate
	bcryptCost  int
	timeout     time.Duration
}

// NewCredentialStore builds a store over the users repository vended by m.
// db may be nil when m does not need a database.
func NewCredentialStore(db *sql.DB, m repomanager.RepositoryManager, bcryptCost int, timeout time.Duration) *CredentialStore {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &CredentialStore{
		db:          db,
		repomanager: m,
		validate:    newValidator(),
		bcryptCost:  bcryptCost,
		timeout:     timeout,
	}
}

// Create validates in, hashes the password and stores a new user. A taken
// email yields a ValidationError on the email field that also matches
// common.ErrorAlreadyExists.
func (s *CredentialStore) Create(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	if verr := validationErrors(s.validate.Struct(in)); verr != nil {
		return nil, verr
	}

	hash, err := cryptox.HashPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, common.NewValidationError("password", "The password may not be greater than 72 bytes.")
		}
		return nil, fmt.Errorf("hash password: %w: %w", common.ErrorInternal, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{
		Name:         in.Name,
		Email:        strings.ToLower(in.Email),
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, &emailTakenError{common.NewValidationError("email", "The email has already been taken.")}
		}
		return nil, classify("create user", err)
	}
	return user, nil
}

// Verify checks email and password. Unknown emails and wrong passwords both
// yield common.ErrInvalidCredentials and take the same bcrypt work.
func (s *CredentialStore) Verify(ctx context.Context, email, password string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.ComparePassword(cryptox.DummyHash, []byte(password))
			return nil, common.ErrInvalidCredentials
		}
		return nil, classify("verify credentials", err)
	}

	if !cryptox.ComparePassword(user.PasswordHash, []byte(password)) {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}

// FindByID returns the user with id or common.ErrorNotFound.
func (s *CredentialStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, classify("find user", err)
	}
	return user, nil
}

// emailTakenError is the validation failure for a duplicate email.
type emailTakenError struct {
	*common.ValidationError
}

func (e *emailTakenError) Unwrap() error { return e.ValidationError }

func (e *emailTakenError) Is(target error) bool {
	return target == common.ErrorAlreadyExists || target == common.ErrorValidation
}

// classify maps an infrastructure failure onto the error taxonomy.
func classify(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, common.ErrorUnavailable, err)
	}
	return fmt.Errorf("%s: %w: %w", op, common.ErrorInternal, err)
}
