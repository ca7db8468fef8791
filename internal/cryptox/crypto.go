// Package cryptox collects the cryptographic primitives used by the server:
// password hashing, random token identifiers and token fingerprints.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// TokenIDBytes is the amount of entropy in a token identifier (320 bits).
// Hex encoding doubles it to an 80 character identifier.
const TokenIDBytes = 40

// HashPassword derives a bcrypt hash of password at the given cost.
// Costs outside bcrypt's range fall back to bcrypt.DefaultCost.
func HashPassword(password []byte, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword(password, cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword reports whether password matches the bcrypt hash.
// bcrypt compares in constant time.
func ComparePassword(hash string, password []byte) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), password)
	return err == nil
}

// DummyHash is compared against when the user does not exist so that
// unknown emails cost the same as wrong passwords.
var DummyHash = mustHash("not-a-real-password")

func mustHash(p string) string {
	h, err := HashPassword([]byte(p), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}

// MakeRandHexString generates size random bytes and returns them hex encoded,
// so the result is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewTokenID returns a fresh opaque token identifier.
func NewTokenID() (string, error) {
	return MakeRandHexString(TokenIDBytes)
}

// HashToken returns the hex SHA-256 fingerprint of a token identifier.
// Storage keys tokens by this value so a leaked table does not leak tokens.
func HashToken(id string) string {
	h := sha256.Sum256([]byte(id))
	return hex.EncodeToString(h[:])
}

// WipeByteArray overwrites b with zeros. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
