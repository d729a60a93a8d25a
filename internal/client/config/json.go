package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/staffdesk/internal/flagx"
	"github.com/dmitrijs2005/staffdesk/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// leave the corresponding Config field untouched.
type JsonConfig struct {
	APIBaseURL    *string         `json:"api_base_url"`
	AssetsBaseURL *string         `json:"assets_base_url"`
	DatabasePath  *string         `json:"database_path"`
	SessionTTL    *timex.Duration `json:"session_ttl"`
	CryptoKey     *string         `json:"crypto_key"`
	LogLevel      *string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c/-config. Without the flag
// it does nothing.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.AssetsBaseURL, jc.AssetsBaseURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.CryptoKey, jc.CryptoKey)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.SessionTTL != nil {
		cfg.SessionTTL = jc.SessionTTL.Duration
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
