package gate

import (
	"time"

	"github.com/dmitrijs2005/staffdesk/internal/client/models"
)

type Outcome int

const (
	Render Outcome = iota
	Redirect
	Forbidden
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not found"
	}
	return "unknown"
}

// Decision is the result of routing a path for a session. Target is set for
// Redirect; Route and Params are set when the path matched.
type Decision struct {
	Outcome Outcome
	Target  string
	Route   Route
	Params  map[string]string
}

// Decide evaluates, in order: no valid session away from /login redirects
// to /login; a valid session on /login redirects home; an unmet role
// requirement is forbidden; anything else renders. Unknown paths that get
// past the first two rules are NotFound.
func Decide(s *models.Session, path string, t *RouteTable, now time.Time) Decision {
	valid := s.Valid(now)
	switch {
	case !valid && path != PathLogin:
		return Decision{Outcome: Redirect, Target: PathLogin}
	case valid && path == PathLogin:
		return Decision{Outcome: Redirect, Target: PathHome}
	}

	route, params, ok := t.Match(path)
	if !ok {
		return Decision{Outcome: NotFound}
	}
	d := Decision{Outcome: Render, Route: route, Params: params}

	switch route.Require {
	case RequireAdmin:
		if !s.IsAdmin() {
			d.Outcome = Forbidden
		}
	case RequireOwnerOrAdmin:
		if !isOwnerOrAdmin(s, models.ID(params["id"])) {
			d.Outcome = Forbidden
		}
	}
	return d
}

func isOwnerOrAdmin(s *models.Session, id models.ID) bool {
	return s.IsAdmin() || (s != nil && id != "" && s.UserID == id)
}
