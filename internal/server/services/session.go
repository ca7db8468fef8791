package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lanzath/authapi/internal/common"
	"github.com/lanzath/authapi/internal/logging"
	"github.com/lanzath/authapi/internal/server/auth"
	"github.com/lanzath/authapi/internal/server/models"
)

// LogoutMessage is the confirmation returned by Logout.
const LogoutMessage = "Successfully logged out."

// Credentials is the credential store as seen by the session service.
type Credentials interface {
	Create(ctx context.Context, in SignupInput) (*models.User, error)
	Verify(ctx context.Context, email, password string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// TokenRegistry is the token registry as seen by the session service.
type TokenRegistry interface {
	Issue(ctx context.Context, userID string, rememberMe bool) (*models.AccessToken, error)
	Lookup(ctx context.Context, tokenID string) (*models.AccessToken, error)
	Revoke(ctx context.Context, tokenID string) error
}

// Observer receives session outcomes. metrics.Metrics implements it.
type Observer interface {
	Login(outcome string)
	Signup(outcome string)
}

type nopObserver struct{}

func (nopObserver) Login(string)  {}
func (nopObserver) Signup(string) {}

// Outcome labels reported to the Observer.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   string    `json:"expires_at"`
	Expiry      time.Time `json:"-"`
	UserID      string    `json:"-"`
}

// SessionService implements signup, login, logout and current user on top
// of a credential store and a token registry. It holds no per-request state.
type SessionService struct {
	credentials Credentials
	registry    TokenRegistry
	secretKey   []byte
	validate    *validator.Validate
	log         logging.Logger
	observer    Observer
}

// NewSessionService wires a session service. logger and observer may be nil.
func NewSessionService(credentials Credentials, registry TokenRegistry, secretKey []byte, logger logging.Logger, observer Observer) *SessionService {
	if logger == nil {
		logger = logging.Nop{}
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &SessionService{
		credentials: credentials,
		registry:    registry,
		secretKey:   secretKey,
		validate:    newValidator(),
		log:         logger.With("module", "sessions"),
		observer:    observer,
	}
}

// Signup creates a user that can log in immediately.
func (s *SessionService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	user, err := s.credentials.Create(ctx, in)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			s.observer.Signup(OutcomeInvalid)
		default:
			s.observer.Signup(OutcomeError)
			s.log.Error(ctx, "signup failed", "error", err)
		}
		return nil, err
	}

	s.observer.Signup(OutcomeSuccess)
	s.log.Info(ctx, "user signed up", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and issues a new token. Wrong credentials yield
// common.ErrInvalidCredentials and leave the registry untouched.
func (s *SessionService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	attempt := &loginAttempt{rememberMe: in.RememberMe}

	if verr := validationErrors(s.validate.Struct(in)); verr != nil {
		attempt.reject()
		s.finish(ctx, attempt, OutcomeInvalid, verr)
		return nil, verr
	}

	user, err := s.credentials.Verify(ctx, in.Email, in.Password)
	if err != nil {
		attempt.reject()
		if errors.Is(err, common.ErrInvalidCredentials) {
			s.finish(ctx, attempt, OutcomeRejected, err)
			return nil, err
		}
		s.finish(ctx, attempt, OutcomeError, err)
		return nil, err
	}
	attempt.credentialsChecked(user.ID)

	token, err := s.registry.Issue(ctx, user.ID, in.RememberMe)
	if err != nil {
		attempt.reject()
		s.finish(ctx, attempt, OutcomeError, err)
		return nil, err
	}
	attempt.tokenIssued(token)

	bearer, err := auth.GenerateToken(attempt.token, s.secretKey)
	if err != nil {
		attempt.reject()
		if rerr := s.registry.Revoke(ctx, attempt.token.ID); rerr != nil {
			s.log.Warn(ctx, "revoke unsigned token failed", "error", rerr)
		}
		s.finish(ctx, attempt, OutcomeError, err)
		return nil, fmt.Errorf("sign token: %w: %w", common.ErrorInternal, err)
	}

	result := &LoginResult{
		AccessToken: bearer,
		TokenType:   common.TokenType,
		Expiry:      token.ExpiresAt,
		UserID:      user.ID,
	}
	if !token.ExpiresAt.IsZero() {
		result.ExpiresAt = token.ExpiresAt.UTC().Format(common.DateTimeLayout)
	}
	attempt.responded()
	s.finish(ctx, attempt, OutcomeSuccess, nil)

	return result, nil
}

func (s *SessionService) finish(ctx context.Context, a *loginAttempt, outcome string, err error) {
	s.observer.Login(outcome)

	args := []any{"stage", a.stage.String(), "remember_me", a.rememberMe}
	if a.stage == stageRejected {
		args = append(args, "failed_at", a.failedAt.String())
	}
	if a.userID != "" {
		args = append(args, "user_id", a.userID)
	}
	switch outcome {
	case OutcomeSuccess:
		s.log.Info(ctx, "login succeeded", args...)
	case OutcomeError:
		s.log.Error(ctx, "login failed", append(args, "error", err)...)
	default:
		s.log.Info(ctx, "login rejected", append(args, "reason", outcome)...)
	}
}

// Logout revokes the token behind bearer. Tokens that are malformed,
// unknown, expired or already revoked still log out successfully; only
// infrastructure failures are returned.
func (s *SessionService) Logout(ctx context.Context, bearer string) (string, error) {
	tokenID, _, err := auth.ParseToken(bearer, s.secretKey)
	if err != nil {
		s.log.Debug(ctx, "logout with unreadable token", "token", logging.MaskToken(bearer))
		return LogoutMessage, nil
	}

	if err := s.registry.Revoke(ctx, tokenID); err != nil {
		if errors.Is(err, common.ErrTokenNotFound) {
			return LogoutMessage, nil
		}
		s.log.Error(ctx, "logout failed", "error", err)
		return "", err
	}

	return LogoutMessage, nil
}

// CurrentUserID resolves bearer to the id of its owner. Every kind of token
// failure collapses to common.ErrorUnauthorized; infrastructure failures are
// returned as they are.
func (s *SessionService) CurrentUserID(ctx context.Context, bearer string) (string, error) {
	tokenID, claimedUser, err := auth.ParseToken(bearer, s.secretKey)
	if err != nil {
		return "", common.ErrorUnauthorized
	}

	token, err := s.registry.Lookup(ctx, tokenID)
	if err != nil {
		if isTokenFailure(err) {
			s.log.Debug(ctx, "token rejected", "token", logging.MaskToken(tokenID), "reason", err.Error())
			return "", common.ErrorUnauthorized
		}
		s.log.Error(ctx, "token lookup failed", "error", err)
		return "", err
	}

	if claimedUser != "" && claimedUser != token.UserID {
		s.log.Warn(ctx, "token subject mismatch", "token", logging.MaskToken(tokenID))
		return "", common.ErrorUnauthorized
	}
	return token.UserID, nil
}

// CurrentUser resolves bearer to the full user record.
func (s *SessionService) CurrentUser(ctx context.Context, bearer string) (*models.User, error) {
	userID, err := s.CurrentUserID(ctx, bearer)
	if err != nil {
		return nil, err
	}

	user, err := s.credentials.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.log.Error(ctx, "load current user failed", "user_id", userID, "error", err)
		return nil, err
	}
	return user, nil
}

func isTokenFailure(err error) bool {
	return errors.Is(err, common.ErrTokenNotFound) ||
		errors.Is(err, common.ErrTokenExpired) ||
		errors.Is(err, common.ErrTokenRevoked) ||
		errors.Is(err, common.ErrInvalidToken)
}
