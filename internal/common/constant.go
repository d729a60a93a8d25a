// Package common contains shared constants and sentinel errors used across
// staffdesk components.
package common

const (
	// AuthorizationHeaderName is the HTTP header carrying the access token.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme prefixes the token in AuthorizationHeaderName.
	BearerScheme = "Bearer "
)
