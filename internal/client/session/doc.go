// Package session owns the client's authenticated session: it logs in
// against the API, persists the result to the local metadata store,
// restores it on startup and clears it on logout.
package session
