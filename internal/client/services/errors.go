package services

import "errors"

var (
	// ErrTerminalStatus is returned when a decided leave request would be
	// decided again.
	ErrTerminalStatus = errors.New("leave request is already decided")

	// ErrNotSynced is returned for optimistic rows whose id the server has
	// never seen.
	ErrNotSynced = errors.New("leave request is not synced with the server yet")
)
