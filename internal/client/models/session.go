package models

import "time"

// Credentials are what the login form collects.
type Credentials struct {
	Email    string
	Password []byte
}

// Session is the client-held record of who is logged in and until when.
type Session struct {
	Authenticated bool
	Token         string
	UserID        ID
	Role          Role
	Name          string
	Email         string
	ExpiresAt     time.Time
}

// Valid reports whether s is authenticated with a token that has not
// expired at now. A nil session is never valid.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.Authenticated && s.Token != "" && now.Before(s.ExpiresAt)
}

// IsAdmin reports whether s belongs to an administrator.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}
