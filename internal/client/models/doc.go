// Package models defines the client-side domain types of staffdesk:
// the session, leave requests with their approval state machine, and
// employee profiles with their sensitive fields.
package models
