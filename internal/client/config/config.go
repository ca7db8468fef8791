package config

import (
	"os"
	"path/filepath"
	"time"
)

// Environment variables read by LoadConfig.
const (
	EnvServer    = "AUTHCTL_SERVER"
	EnvTokenFile = "AUTHCTL_TOKEN_FILE"
	EnvTimeout   = "AUTHCTL_TIMEOUT"
)

// Config holds runtime settings for the authctl CLI.
//
// Fields:
//   - ServerURL: base URL of the auth API HTTP boundary.
//   - TokenFile: where the current access token is kept between invocations.
//   - RequestTimeout: per-request HTTP timeout.
type Config struct {
	ServerURL      string
	TokenFile      string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.TokenFile = defaultTokenFile()
	c.RequestTimeout = 10 * time.Second
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".authctl_token"
	}
	return filepath.Join(home, ".authctl", "token")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment and JSON (if present). Later sources take precedence over
// earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	return cfg
}

// parseEnv panics on a malformed timeout, like parseJson does on bad files.
func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvServer); ok {
		cfg.ServerURL = v
	}
	if v, ok := os.LookupEnv(EnvTokenFile); ok {
		cfg.TokenFile = v
	}
	if v, ok := os.LookupEnv(EnvTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.RequestTimeout = d
	}
}
