// Package client talks to the auth API over its JSON-over-HTTP boundary.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     Signup, Login, Logout and CurrentUser.
//  2. A concrete HTTP implementation (see HTTPClient) that sends bearer
//     tokens, decodes the server's JSON envelopes, and retries requests the
//     server reports as temporarily unavailable (503).
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrValidation. Validation
// failures also carry the per-field messages in *APIError.
//
// All operations accept context.Context and honor cancellation/timeouts.
package client
