// Package metadata persists client-side key/value records (the session,
// the last used login email) in the local SQLite database.
package metadata
