package gate

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Requirement is what a route asks of the session beyond being logged in.
type Requirement int

const (
	RequireAuth Requirement = iota
	RequireAdmin
	// RequireOwnerOrAdmin compares the route's {id} with the caller.
	RequireOwnerOrAdmin
	// RequireGuest marks the login page: only reachable without a session.
	RequireGuest
)

// Route names a view and the pattern it is mounted on.
type Route struct {
	Name    string
	Pattern string
	Require Requirement
}

// Route names of the default table.
const (
	RouteDashboard   = "dashboard"
	RouteLogin       = "login"
	RouteLeave       = "leave"
	RouteRegister    = "register"
	RouteProfile     = "profile"
	RouteEditProfile = "profile.edit"
	RouteEditImage   = "profile.image"
	RouteLeaveReview = "leave.review"
)

const (
	PathHome  = "/"
	PathLogin = "/login"
)

// RouteTable matches paths against chi patterns such as /user/{id}.
type RouteTable struct {
	mux    *chi.Mux
	routes map[string]Route
}

func NewRouteTable(routes ...Route) *RouteTable {
	t := &RouteTable{
		mux:    chi.NewRouter(),
		routes: make(map[string]Route, len(routes)),
	}
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, r := range routes {
		t.mux.Get(r.Pattern, noop)
		t.routes[r.Pattern] = r
	}
	return t
}

// DefaultRoutes is the client's route table.
func DefaultRoutes() *RouteTable {
	return NewRouteTable(
		Route{Name: RouteDashboard, Pattern: PathHome, Require: RequireAuth},
		Route{Name: RouteLogin, Pattern: PathLogin, Require: RequireGuest},
		Route{Name: RouteLeave, Pattern: "/leave", Require: RequireAuth},
		Route{Name: RouteRegister, Pattern: "/register", Require: RequireAdmin},
		Route{Name: RouteProfile, Pattern: "/user/{id}", Require: RequireAuth},
		Route{Name: RouteEditProfile, Pattern: "/user/{id}/edit", Require: RequireOwnerOrAdmin},
		Route{Name: RouteEditImage, Pattern: "/user/{id}/image", Require: RequireOwnerOrAdmin},
		Route{Name: RouteLeaveReview, Pattern: "/leave/review", Require: RequireAdmin},
	)
}

// Match finds the route for path and its URL parameters.
func (t *RouteTable) Match(path string) (Route, map[string]string, bool) {
	rctx := chi.NewRouteContext()
	if !t.mux.Match(rctx, http.MethodGet, path) {
		return Route{}, nil, false
	}
	r, ok := t.routes[rctx.RoutePattern()]
	if !ok {
		return Route{}, nil, false
	}
	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		params[k] = rctx.URLParams.Values[i]
	}
	return r, params, true
}
