package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvAPIBaseURL    = "STAFFDESK_API_URL"
	EnvAssetsBaseURL = "STAFFDESK_ASSETS_URL"
	EnvDatabasePath  = "STAFFDESK_DB"
	EnvSessionTTL    = "STAFFDESK_SESSION_TTL"
	EnvCryptoKey     = "STAFFDESK_CRYPTO_KEY"
	EnvLogLevel      = "STAFFDESK_LOG_LEVEL"
)

// parseEnv loads ./.env if present (without overriding variables already
// set) and overlays cfg with the STAFFDESK_* variables.
func parseEnv(cfg *Config) error {
	_ = godotenv.Load()

	ttl, err := getDuration(EnvSessionTTL, cfg.SessionTTL)
	if err != nil {
		return err
	}

	cfg.APIBaseURL = getEnv(EnvAPIBaseURL, cfg.APIBaseURL)
	cfg.AssetsBaseURL = getEnv(EnvAssetsBaseURL, cfg.AssetsBaseURL)
	cfg.DatabasePath = getEnv(EnvDatabasePath, cfg.DatabasePath)
	cfg.SessionTTL = ttl
	cfg.CryptoKey = getEnv(EnvCryptoKey, cfg.CryptoKey)
	cfg.LogLevel = getEnv(EnvLogLevel, cfg.LogLevel)
	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
