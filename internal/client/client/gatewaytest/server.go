// Package gatewaytest runs an in-memory implementation of the staffdesk REST
// API on an httptest.Server. It follows the documented contract closely
// enough for end-to-end tests of the client: bearer tokens are real HS256
// JWTs, admin-only endpoints answer 403, and errors carry {"message": ...}.
package gatewaytest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/staffdesk/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// User is an account known to the fake API. NationalID and TaxID are
// stored exactly as the client sent them.
type User struct {
	ID            models.ID
	Name          string
	Email         string
	Password      string
	Role          models.Role
	Position      string
	NationalID    string
	TaxID         string
	DateOfJoining models.Date
	Image         string
}

// Leave is a stored leave request.
type Leave struct {
	ID     models.ID
	UserID models.ID
	Start  models.Date
	End    models.Date
	Reason string
	Status models.LeaveStatus
}

type Server struct {
	srv    *httptest.Server
	secret []byte

	mu     sync.Mutex
	users  map[models.ID]*User
	order  []models.ID
	leaves []*Leave
	calls  map[string]int
	images map[models.ID][]byte

	// TokenTTL is the exp claim of issued tokens.
	TokenTTL time.Duration
	// OmitCreatedLeave makes POST /leave answer with a bare message instead
	// of the created record.
	OmitCreatedLeave bool
	// StrictTransitions makes the server refuse status updates on decided
	// requests. Off by default: the real API does not check.
	StrictTransitions bool
	// Now is the server clock.
	Now func() time.Time
}

// New starts a server; callers must Close it.
func New() *Server {
	s := &Server{
		secret:   []byte(uuid.NewString()),
		users:    make(map[models.ID]*User),
		calls:    make(map[string]int),
		images:   make(map[models.ID][]byte),
		TokenTTL: 24 * time.Hour,
		Now:      time.Now,
	}
	s.srv = httptest.NewServer(s.routes())
	return s
}

func (s *Server) Close() { s.srv.Close() }

// APIBaseURL is the value to configure the client with.
func (s *Server) APIBaseURL() string { return s.srv.URL + "/api" }

// HTTPClient returns a client wired to the test server.
func (s *Server) HTTPClient() *http.Client { return s.srv.Client() }

// AddUser stores u and returns its id, generating one when u.ID is empty.
func (s *Server) AddUser(u User) models.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(u)
}

func (s *Server) addUserLocked(u User) models.ID {
	if u.ID == "" {
		u.ID = models.ID(uuid.NewString())
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if _, exists := s.users[u.ID]; !exists {
		s.order = append(s.order, u.ID)
	}
	s.users[u.ID] = &u
	return u.ID
}

// User returns a copy of the stored user.
func (s *Server) User(id models.ID) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, false
	}
	return *u, true
}

// AddLeave stores l and returns its id.
func (s *Server) AddLeave(l Leave) models.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == "" {
		l.ID = models.ID(uuid.NewString())
	}
	if l.Status == "" {
		l.Status = models.LeavePending
	}
	s.leaves = append(s.leaves, &l)
	return l.ID
}

// Leave returns a copy of the stored leave request.
func (s *Server) Leave(id models.ID) (Leave, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.leaves {
		if l.ID == id {
			return *l, true
		}
	}
	return Leave{}, false
}

// Image returns the last uploaded image bytes for a user.
func (s *Server) Image(id models.ID) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.images[id]
}

// Calls reports how often a route was hit, keyed as "METHOD /pattern",
// e.g. "PATCH /leave/updateStatus/{id}".
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// TotalCalls is the number of requests served.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// IssueToken mints a bearer token for id.
func (s *Server) IssueToken(id models.ID) (string, error) {
	now := s.Now()
	claims := jwt.RegisteredClaims{
		Subject:   id.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		s.handle(r, http.MethodPost, "/users/login", s.login)
		s.handle(r, http.MethodGet, "/users", s.listUsers)
		s.handle(r, http.MethodGet, "/users/{id}", s.getUser)
		s.handle(r, http.MethodGet, "/leave/active", s.activeLeave)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			s.handle(r, http.MethodPatch, "/users/editprofile/{id}", s.adminOnly(s.editProfile))
			s.handle(r, http.MethodPatch, "/users/edituser/{id}", s.editUser)
			s.handle(r, http.MethodPatch, "/users/editimage/{id}", s.editImage)
			s.handle(r, http.MethodPost, "/users/signup", s.adminOnly(s.signup))
			s.handle(r, http.MethodGet, "/leave", s.adminOnly(s.allLeave))
			s.handle(r, http.MethodGet, "/leave/user/{userId}", s.userLeave)
			s.handle(r, http.MethodPost, "/leave", s.createLeave)
			s.handle(r, http.MethodPatch, "/leave/updateStatus/{id}", s.adminOnly(s.updateStatus))
		})
	})
	return r
}

func (s *Server) handle(r chi.Router, method, pattern string, h http.HandlerFunc) {
	key := method + " " + pattern
	r.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.mu.Lock()
		s.calls[key]++
		s.mu.Unlock()
		h(w, req)
	}))
}

type ctxKey struct{}

func withCaller(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// caller is the authenticated user; zero outside the authenticated group.
func caller(r *http.Request) User {
	u, _ := r.Context().Value(ctxKey{}).(User)
	return u
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "Authentication failed")
			return
		}
		var claims jwt.RegisteredClaims
		_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return s.secret, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(s.Now))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Authentication failed")
			return
		}

		s.mu.Lock()
		u, ok := s.users[models.ID(claims.Subject)]
		var me User
		if ok {
			me = *u
		}
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "Authentication failed")
			return
		}

		ctx := withCaller(r.Context(), me)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) adminOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if caller(r).Role != models.RoleAdmin {
			writeError(w, http.StatusForbidden, "Admins only")
			return
		}
		h(w, r)
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data.")
		return
	}

	s.mu.Lock()
	var found *User
	for _, id := range s.order {
		if u := s.users[id]; strings.EqualFold(u.Email, body.Email) {
			found = u
			break
		}
	}
	var u User
	if found != nil {
		u = *found
	}
	s.mu.Unlock()

	if found == nil || u.Password != body.Password {
		writeError(w, http.StatusUnauthorized, "Invalid credentials, could not log you in.")
		return
	}

	token, err := s.IssueToken(u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":  token,
		"userId": u.ID,
		"role":   u.Role,
		"name":   u.Name,
		"email":  u.Email,
	})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]models.RawProfile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, rawProfile(s.users[id]))
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	s.mu.Lock()
	u, ok := s.users[id]
	var raw models.RawProfile
	if ok {
		raw = rawProfile(u)
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Could not find user for the provided id.")
		return
	}
	writeJSON(w, http.StatusOK, raw)
}

func (s *Server) editProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Password   string `json:"password"`
		NationalID string `json:"nationalId"`
		TaxID      string `json:"taxId"`
		Position   string `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data.")
		return
	}

	id := models.ID(chi.URLParam(r, "id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Could not find user for the provided id.")
		return
	}
	u.Name, u.Email, u.Position = body.Name, body.Email, body.Position
	u.NationalID, u.TaxID = body.NationalID, body.TaxID
	if body.Password != "" {
		u.Password = body.Password
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile updated"})
}

func (s *Server) editUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data.")
		return
	}

	id := models.ID(chi.URLParam(r, "id"))
	me := caller(r)
	if me.ID != id && me.Role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "You are not allowed to edit this user.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Could not find user for the provided id.")
		return
	}
	u.Name = body.Name
	if body.Password != "" {
		u.Password = body.Password
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User updated"})
}

func (s *Server) editImage(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	me := caller(r)
	if me.ID != id && me.Role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "You are not allowed to edit this user.")
		return
	}

	name, data, ok := formImage(r)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "No image provided.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, found := s.users[id]
	if !found {
		writeError(w, http.StatusNotFound, "Could not find user for the provided id.")
		return
	}
	u.Image = "uploads/images/" + uuid.NewString() + path.Ext(name)
	s.images[id] = data
	writeJSON(w, http.StatusOK, map[string]string{"message": "Image updated"})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data.")
		return
	}
	doj, _ := models.ParseDate(r.FormValue("dateOfJoining"))
	u := User{
		Name:          r.FormValue("name"),
		Email:         r.FormValue("email"),
		Password:      r.FormValue("password"),
		Position:      r.FormValue("position"),
		NationalID:    r.FormValue("nationalId"),
		TaxID:         r.FormValue("taxId"),
		DateOfJoining: doj,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			writeError(w, http.StatusUnprocessableEntity, "User exists already, please login instead.")
			return
		}
	}
	id := s.addUserLocked(u)
	if name, data, ok := formImage(r); ok {
		s.users[id].Image = "uploads/images/" + uuid.NewString() + path.Ext(name)
		s.images[id] = data
	}
	writeJSON(w, http.StatusCreated, map[string]any{"userId": id, "email": u.Email})
}

func (s *Server) activeLeave(w http.ResponseWriter, r *http.Request) {
	today := s.Now().UTC()
	day := models.NewDate(today.Year(), today.Month(), today.Day())

	s.mu.Lock()
	out := make([]map[string]any, 0)
	for _, l := range s.leaves {
		period := models.DateRange{Start: l.Start, End: l.End}
		if l.Status == models.LeaveApproved && period.Covers(day) {
			out = append(out, s.leaveJSON(l, true))
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) allLeave(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]map[string]any, 0, len(s.leaves))
	for _, l := range s.leaves {
		out = append(out, s.leaveJSON(l, true))
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"allLeaves": out})
}

func (s *Server) userLeave(w http.ResponseWriter, r *http.Request) {
	userID := models.ID(chi.URLParam(r, "userId"))
	me := caller(r)
	if me.ID != userID && me.Role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "You are not allowed to view these requests.")
		return
	}

	s.mu.Lock()
	out := make([]map[string]any, 0)
	for _, l := range s.leaves {
		if l.UserID == userID {
			out = append(out, s.leaveJSON(l, false))
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"allLeaves": out})
}

func (s *Server) createLeave(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Start  models.Date `json:"start"`
		End    models.Date `json:"end"`
		Reason string      `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Reason == "" || body.Start.IsZero() || body.End.IsZero() {
		writeError(w, http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data.")
		return
	}

	l := &Leave{
		ID:     models.ID(uuid.NewString()),
		UserID: caller(r).ID,
		Start:  body.Start,
		End:    body.End,
		Reason: body.Reason,
		Status: models.LeavePending,
	}

	s.mu.Lock()
	s.leaves = append(s.leaves, l)
	resp := s.leaveJSON(l, false)
	s.mu.Unlock()

	if s.OmitCreatedLeave {
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Leave requested"})
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status models.LeaveStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid status.")
		return
	}

	id := models.ID(chi.URLParam(r, "id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.leaves {
		if l.ID != id {
			continue
		}
		if s.StrictTransitions && !l.Status.CanTransition(body.Status) {
			writeError(w, http.StatusConflict, fmt.Sprintf("Leave is already %s.", l.Status))
			return
		}
		l.Status = body.Status
		writeJSON(w, http.StatusOK, map[string]string{"message": "Status updated"})
		return
	}
	writeError(w, http.StatusNotFound, "Could not find leave for the provided id.")
}

// leaveJSON must be called with s.mu held.
func (s *Server) leaveJSON(l *Leave, withUser bool) map[string]any {
	out := map[string]any{
		"id":     l.ID,
		"start":  l.Start.Format(time.RFC3339),
		"end":    l.End.Format(time.RFC3339),
		"reason": l.Reason,
		"status": l.Status,
	}
	if !withUser {
		out["user"] = l.UserID
		return out
	}
	if u, ok := s.users[l.UserID]; ok {
		out["user"] = map[string]any{
			"id":       u.ID,
			"name":     u.Name,
			"email":    u.Email,
			"position": u.Position,
			"image":    u.Image,
		}
	}
	return out
}

func rawProfile(u *User) models.RawProfile {
	return models.RawProfile{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		DateOfJoining: u.DateOfJoining,
		Position:      u.Position,
		Role:          string(u.Role),
		Image:         u.Image,
		NationalID:    u.NationalID,
		TaxID:         u.TaxID,
	}
}

func formImage(r *http.Request) (string, []byte, bool) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		return "", nil, false
	}
	f, hdr, err := r.FormFile("image")
	if err != nil {
		return "", nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil || len(data) == 0 {
		return "", nil, false
	}
	return hdr.Filename, data, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
