package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds runtime settings for the staffdesk client.
type Config struct {
	// APIBaseURL is the API Gateway root, e.g. http://localhost:5000/api.
	APIBaseURL string
	// AssetsBaseURL prefixes relative image paths returned by the API.
	AssetsBaseURL string
	// DatabasePath is the SQLite file holding the persisted session.
	DatabasePath string
	// SessionTTL is how long a login stays valid locally.
	SessionTTL time.Duration
	// CryptoKey is the passphrase for the sensitive profile fields.
	CryptoKey string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// LoadDefaults populates c with sensible defaults. CryptoKey has no default.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:5000/api"
	c.AssetsBaseURL = "http://localhost:5000"
	c.DatabasePath = "staffdesk.db"
	c.SessionTTL = time.Hour
	c.LogLevel = "info"
}

// Validate reports the first setting that makes the client unusable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return errors.New("api base url cannot be empty")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return errors.New("database path cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	if c.CryptoKey == "" {
		return fmt.Errorf("crypto key is required (set %s)", EnvCryptoKey)
	}
	return nil
}

// LoadConfig constructs a Config from defaults, then overlays the JSON file,
// the environment (including a .env file) and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
