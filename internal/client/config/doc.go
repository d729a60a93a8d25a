// Package config loads runtime configuration for the staffdesk client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment variables STAFFDESK_*, with ./.env loaded first.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string     API base URL
//	-d string     SQLite database path
//	-t duration   session TTL
//	-l string     log level
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://localhost:5000/api",
//	  "assets_base_url": "http://localhost:5000",
//	  "database_path": "staffdesk.db",
//	  "session_ttl": "1h",
//	  "crypto_key": "...",
//	  "log_level": "info"
//	}
//
// The crypto key has no default; LoadConfig fails until it is provided
// through the JSON file or STAFFDESK_CRYPTO_KEY.
package config
