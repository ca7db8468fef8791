package models

import "time"

// TokenState is the validity of an access token at a point in time.
type TokenState int

const (
	TokenValid TokenState = iota
	TokenExpired
	TokenRevoked
)

func (s TokenState) String() string {
	switch s {
	case TokenValid:
		return "valid"
	case TokenExpired:
		return "expired"
	case TokenRevoked:
		return "revoked"
	default:
		return "unknown"
	}
}

// AccessToken is one issued bearer credential.
//
// ID is the opaque identifier handed to the client. Storage only keeps
// Hash (SHA-256 of ID), so tokens loaded back from a repository carry an
// empty ID until the caller fills it in. A zero ExpiresAt means the token
// has no explicit expiry.
type AccessToken struct {
	ID        string
	Hash      string
	UserID    string
	Name      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
}

// State evaluates the token at now. Revocation wins over expiry.
func (t *AccessToken) State(now time.Time) TokenState {
	if t.Revoked {
		return TokenRevoked
	}
	if !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt) {
		return TokenExpired
	}
	return TokenValid
}

// Valid reports whether the token may authenticate a request at now.
func (t *AccessToken) Valid(now time.Time) bool {
	return t.State(now) == TokenValid
}

// Clone returns a copy that shares no state with t.
func (t *AccessToken) Clone() *AccessToken {
	c := *t
	return &c
}
