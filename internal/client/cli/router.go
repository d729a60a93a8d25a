package cli

import (
	"github.com/dmitrijs2005/staffdesk/internal/client/gate"
)

// Navigate moves the REPL to path. The session store calls it after login
// and logout.
func (a *App) Navigate(path string) {
	a.location = path
}

// Location is the path of the view the REPL is on.
func (a *App) Location() string { return a.location }

// visit runs path through the route gate. It returns true when the view may
// render; otherwise the user has been told why and the location updated.
func (a *App) visit(path string) bool {
	d := gate.Decide(a.store.Current(), path, a.routes, a.store.Now())

	switch d.Outcome {
	case gate.Render:
		a.location = path
		return true
	case gate.Redirect:
		a.location = d.Target
		if d.Target == gate.PathLogin {
			a.println("Please log in first (type 'login').")
		} else {
			a.println("You are already logged in.")
		}
	case gate.Forbidden:
		a.println("You are not allowed to open", path)
	case gate.NotFound:
		a.println("Page not found:", path)
	}
	return false
}
