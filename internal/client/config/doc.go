// Package config loads runtime configuration for the authctl CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: AUTHCTL_SERVER, AUTHCTL_TOKEN_FILE, AUTHCTL_TIMEOUT.
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//
// Command-line flags are owned by the cobra commands in package cli, which
// override these values after loading.
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "token_file": "/home/me/.authctl/token",
//	  "request_timeout": "10s"
//	}
package config
