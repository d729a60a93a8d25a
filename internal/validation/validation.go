// Package validation collects field-level violations before a request is
// sent. A non-empty set is returned to callers as *Error.
package validation

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"unicode/utf8"
)

// Violations maps a field name to a human-readable message. The first
// violation recorded for a field wins.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

func (v Violations) add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

// Err returns nil when v is empty, otherwise an *Error carrying v.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return &Error{Fields: v}
}

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.add(field, "is required")
	}
}

func MinLen(field, value string, n int, v Violations) {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < n {
		v.add(field, fmt.Sprintf("must be at least %d characters", n))
	}
}

// OptionalMinLen accepts an empty value or one of at least n characters.
func OptionalMinLen(field, value string, n int, v Violations) {
	if value == "" {
		return
	}
	if utf8.RuneCountInString(value) < n {
		v.add(field, fmt.Sprintf("must be empty or at least %d characters", n))
	}
}

func Email(field, value string, v Violations) {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != strings.TrimSpace(value) {
		v.add(field, "must be a valid email address")
	}
}

// Error is the ValidationError kind: it never reaches the network.
type Error struct {
	Fields Violations
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Single builds an *Error for one field.
func Single(field, msg string) *Error {
	return &Error{Fields: Violations{field: msg}}
}
