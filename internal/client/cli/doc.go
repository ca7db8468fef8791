// Package cli provides authctl, the command-line client for the auth API.
//
// It wires configuration, the HTTP API client and a small token file that
// keeps the current access token between invocations. Typical flow:
//
//	authctl signup --email ana@example.com --name Ana
//	authctl login --email ana@example.com --remember-me
//	authctl me
//	authctl logout
//
// Passwords are always read from the terminal without echo. Commands are
// built with cobra; see App.Run.
package cli
