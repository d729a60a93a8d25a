package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/staffdesk/internal/client/gate"
)

func (a *App) getStatus() string {
	s := a.store.Current()
	if !s.Valid(a.store.Now()) {
		return ""
	}
	parts := []string{s.Name}
	if gate.IsAdmin(s) {
		parts = append(parts, "admin")
	}
	if a.location != "" {
		parts = append(parts, a.location)
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

// Root greets the user, restores a persisted session when one is still
// valid and then serves commands.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to staffdesk (type 'help' for commands)")

	s, err := a.store.Rehydrate(ctx)
	switch {
	case err != nil:
		a.log.Warn(ctx, "could not restore session", "error", err)
		a.location = "/login"
	case s != nil:
		a.location = "/"
		a.printf("Welcome back, %s.\n", s.Name)
	default:
		a.location = "/login"
		a.println("Type 'login' to sign in.")
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}
