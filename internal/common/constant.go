// Package common contains shared constants and sentinel errors used across
// the auth API server and the authctl client.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound and outbound requests.
const AccessTokenHeaderName = "access_token"

// TokenType is the token type label returned to clients on login.
const TokenType = "Bearer"

// PersonalAccessTokenName is the name attached to every token issued by login.
const PersonalAccessTokenName = "Personal Access Token"

// DateTimeLayout renders timestamps as "YYYY-MM-DD HH:MM:SS".
const DateTimeLayout = "2006-01-02 15:04:05"
