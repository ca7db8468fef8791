// Package auth wraps registry token ids in a signed JWT envelope.
//
// The envelope only carries the token id (jti) and owner (sub). It never
// decides validity: expiry and revocation are checked against the registry,
// so claims validation is disabled when parsing.
package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lanzath/authapi/internal/common"
	"github.com/lanzath/authapi/internal/server/models"
)

// Claims are the registered claims of an access token envelope.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs an envelope for token with HS256.
func GenerateToken(token *models.AccessToken, secretKey []byte) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       token.ID,
			Subject:  token.UserID,
			IssuedAt: jwt.NewNumericDate(token.IssuedAt),
		},
	}
	if !token.ExpiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(token.ExpiresAt)
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
}

// ParseToken verifies the signature of tokenString and returns the token id
// and user id it carries. Malformed or forged input yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (tokenID, userID string, err error) {
	if tokenString == "" {
		return "", "", common.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", "", errors.Join(common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.ID == "" {
		return "", "", common.ErrInvalidToken
	}

	return claims.ID, claims.Subject, nil
}
