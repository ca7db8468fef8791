// Package registry issues, resolves and revokes access tokens.
//
// The registry is the single source of truth for token validity. Expiry is
// evaluated lazily on lookup; nothing sweeps expired tokens in the
// background. Issue and Revoke for the same token are serialized, and every
// storage call runs under a bounded timeout.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lanzath/authapi/internal/common"
	"github.com/lanzath/authapi/internal/cryptox"
	"github.com/lanzath/authapi/internal/logging"
	"github.com/lanzath/authapi/internal/server/models"
	"github.com/lanzath/authapi/internal/server/repositories/accesstokens"
)

const (
	// RememberMeTTL is the lifetime of tokens issued with remember-me.
	RememberMeTTL = 7 * 24 * time.Hour

	DefaultTTL     = 24 * time.Hour
	DefaultTimeout = 3 * time.Second

	maxIssueAttempts = 3
)

// Observer receives token lifecycle events. metrics.Metrics implements it.
type Observer interface {
	TokenIssued(rememberMe bool)
	TokenRevoked()
	TokenLookup(result string)
}

type nopObserver struct{}

func (nopObserver) TokenIssued(bool)   {}
func (nopObserver) TokenRevoked()      {}
func (nopObserver) TokenLookup(string) {}

// Lookup results reported to the Observer.
const (
	LookupValid    = "valid"
	LookupNotFound = "not_found"
	LookupExpired  = "expired"
	LookupRevoked  = "revoked"
	LookupError    = "error"
)

type Registry struct {
	store      accesstokens.Repository
	defaultTTL time.Duration
	timeout    time.Duration
	now        func() time.Time
	newID      func() (string, error)
	log        logging.Logger
	observer   Observer
	locks      *keyLocks
}

type Option func(*Registry)

// WithDefaultTTL sets the lifetime of tokens issued without remember-me.
// A non-positive value issues tokens with no expiry.
func WithDefaultTTL(d time.Duration) Option {
	return func(r *Registry) { r.defaultTTL = d }
}

// WithTimeout bounds every storage call. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func WithIDGenerator(gen func() (string, error)) Option {
	return func(r *Registry) { r.newID = gen }
}

func WithLogger(l logging.Logger) Option {
	return func(r *Registry) { r.log = l }
}

func WithObserver(o Observer) Option {
	return func(r *Registry) {
		if o != nil {
			r.observer = o
		}
	}
}

func New(store accesstokens.Repository, opts ...Option) *Registry {
	r := &Registry{
		store:      store,
		defaultTTL: DefaultTTL,
		timeout:    DefaultTimeout,
		now:        time.Now,
		newID:      cryptox.NewTokenID,
		log:        logging.Nop{},
		observer:   nopObserver{},
		locks:      newKeyLocks(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TTL returns the lifetime a token issued with the given remember-me flag gets.
func (r *Registry) TTL(rememberMe bool) time.Duration {
	if rememberMe {
		return RememberMeTTL
	}
	return r.defaultTTL
}

// Issue creates and stores a new valid token for userID. The returned token
// carries the plain ID that the caller hands to the client.
func (r *Registry) Issue(ctx context.Context, userID string, rememberMe bool) (*models.AccessToken, error) {
	const op = "registry.Issue"

	for attempt := 1; ; attempt++ {
		id, err := r.newID()
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, common.ErrorInternal, err)
		}

		issued := r.now().UTC()
		token := &models.AccessToken{
			ID:       id,
			Hash:     cryptox.HashToken(id),
			UserID:   userID,
			Name:     common.PersonalAccessTokenName,
			IssuedAt: issued,
		}
		if ttl := r.TTL(rememberMe); ttl > 0 {
			token.ExpiresAt = issued.Add(ttl)
		}

		err = r.create(ctx, token)
		if err == nil {
			r.observer.TokenIssued(rememberMe)
			r.log.Debug(ctx, "access token issued",
				"user_id", userID, "token", logging.MaskToken(id), "remember_me", rememberMe)
			return token, nil
		}

		if errors.Is(err, common.ErrorAlreadyExists) && attempt < maxIssueAttempts {
			r.log.Warn(ctx, "access token id collision, retrying", "attempt", attempt)
			continue
		}
		return nil, r.wrap(op, err)
	}
}

func (r *Registry) create(ctx context.Context, token *models.AccessToken) error {
	unlock := r.locks.lock(token.Hash)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.store.Create(ctx, token)
}

// Lookup resolves a token id. It returns common.ErrTokenNotFound,
// common.ErrTokenExpired or common.ErrTokenRevoked for tokens that cannot
// authenticate, and a wrapped common.ErrorInternal or common.ErrorUnavailable
// when storage fails.
func (r *Registry) Lookup(ctx context.Context, tokenID string) (*models.AccessToken, error) {
	const op = "registry.Lookup"

	if tokenID == "" {
		r.observer.TokenLookup(LookupNotFound)
		return nil, common.ErrTokenNotFound
	}

	token, err := r.find(ctx, cryptox.HashToken(tokenID))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			r.observer.TokenLookup(LookupNotFound)
			return nil, common.ErrTokenNotFound
		}
		r.observer.TokenLookup(LookupError)
		return nil, r.wrap(op, err)
	}
	token.ID = tokenID

	now := r.now()
	if token.Valid(now) {
		r.observer.TokenLookup(LookupValid)
		return token, nil
	}

	if token.State(now) == models.TokenRevoked {
		r.observer.TokenLookup(LookupRevoked)
		return nil, common.ErrTokenRevoked
	}
	r.observer.TokenLookup(LookupExpired)
	return nil, common.ErrTokenExpired
}

func (r *Registry) find(ctx context.Context, hash string) (*models.AccessToken, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.store.FindByHash(ctx, hash)
}

// Revoke marks a token revoked. Revoking an already revoked or expired token
// succeeds; an unknown id yields common.ErrTokenNotFound.
func (r *Registry) Revoke(ctx context.Context, tokenID string) error {
	const op = "registry.Revoke"

	if tokenID == "" {
		return common.ErrTokenNotFound
	}

	hash := cryptox.HashToken(tokenID)
	unlock := r.locks.lock(hash)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	token, err := r.store.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrTokenNotFound
		}
		return r.wrap(op, err)
	}
	if token.Revoked {
		return nil
	}

	if err := r.store.Revoke(ctx, hash); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrTokenNotFound
		}
		return r.wrap(op, err)
	}

	r.observer.TokenRevoked()
	r.log.Debug(ctx, "access token revoked", "user_id", token.UserID, "token", logging.MaskToken(tokenID))
	return nil
}

// wrap classifies a storage failure. Deadlines become ErrorUnavailable so
// callers can tell a retryable timeout from other faults.
func (r *Registry) wrap(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, common.ErrorUnavailable, err)
	}
	return fmt.Errorf("%s: %w: %w", op, common.ErrorInternal, err)
}
