package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/staffdesk/internal/client/client"
	"github.com/dmitrijs2005/staffdesk/internal/client/models"
	"github.com/dmitrijs2005/staffdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/staffdesk/internal/common"
	"github.com/dmitrijs2005/staffdesk/internal/logging"
	"github.com/dmitrijs2005/staffdesk/internal/validation"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredentials is returned by Login when the API rejects the
// email/password pair. The server's message, if any, is kept in the chain.
var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	sessionKey   = "session"
	lastEmailKey = "last_email"

	DefaultTTL = time.Hour

	PathHome  = "/"
	PathLogin = "/login"
)

// Navigator receives the redirects that follow login and logout.
type Navigator interface {
	Navigate(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Authenticator is the part of the API the store needs.
type Authenticator interface {
	Login(ctx context.Context, email string, password []byte) (*client.LoginResult, error)
}

var _ Authenticator = (client.Gateway)(nil)

// record is the persisted form. ExpiresAt is a pointer so that records
// written without it can be told apart and discarded.
type record struct {
	Token     string     `json:"token"`
	UserID    models.ID  `json:"userId"`
	Role      string     `json:"role"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type Store struct {
	auth Authenticator
	repo metadata.Repository
	nav  Navigator
	log  logging.Logger
	ttl  time.Duration
	now  func() time.Time

	mu      sync.RWMutex
	current *models.Session
}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithNavigator sets the redirect target. It can also be set later with
// SetNavigator, since the router usually needs the store first.
func WithNavigator(nav Navigator) Option {
	return func(s *Store) { s.nav = nav }
}

func NewStore(auth Authenticator, repo metadata.Repository, log logging.Logger, ttl time.Duration, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		auth: auth,
		repo: repo,
		log:  log.With("component", "session"),
		ttl:  ttl,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) SetNavigator(nav Navigator) {
	s.mu.Lock()
	s.nav = nav
	s.mu.Unlock()
}

// Now is the store's clock.
func (s *Store) Now() time.Time { return s.now() }

// Current returns a copy of the in-memory session, or nil.
func (s *Store) Current() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Token is the bearer token of a valid session, or "".
func (s *Store) Token() string {
	cur := s.Current()
	if !cur.Valid(s.now()) {
		return ""
	}
	return cur.Token
}

func (s *Store) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	v := validation.Violations{}
	validation.Required("email", creds.Email, v)
	validation.Required("password", string(creds.Password), v)
	if err := v.Err(); err != nil {
		return nil, err
	}

	res, err := s.auth.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, classifyLoginError(err)
	}

	sess := s.newSession(res)
	err = s.repo.Update(ctx, func(ctx context.Context, tx metadata.Repository) error {
		if err := metadata.SetJSON(ctx, tx, sessionKey, toRecord(sess)); err != nil {
			return err
		}
		return tx.Set(ctx, lastEmailKey, []byte(sess.Email))
	})
	if err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.current = sess
	nav := s.nav
	s.mu.Unlock()

	s.log.Info(ctx, "logged in", "user_id", sess.UserID, "role", sess.Role, "expires_at", sess.ExpiresAt)
	if nav != nil {
		nav.Navigate(PathHome)
	}
	cp := *sess
	return &cp, nil
}

// Rehydrate restores a persisted session. It returns (nil, nil) when there is
// nothing usable to restore and removes whatever stale record it found.
func (s *Store) Rehydrate(ctx context.Context) (*models.Session, error) {
	raw, err := s.repo.Get(ctx, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if raw == nil {
		return nil, nil
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.log.Warn(ctx, "discarding unreadable session record", "error", err)
		s.discard(ctx)
		return nil, nil
	}

	sess := rec.toSession()
	if !sess.Valid(s.now()) {
		s.log.Debug(ctx, "discarding stale session record")
		s.discard(ctx)
		return nil, nil
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	cp := *sess
	return &cp, nil
}

// Logout forgets the session and redirects to the login page. Storage
// failures are logged and otherwise ignored.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	prev := s.current
	s.current = nil
	nav := s.nav
	s.mu.Unlock()

	s.discard(ctx)
	if prev != nil {
		s.log.Info(ctx, "logged out", "user_id", prev.UserID)
	}
	if nav != nil {
		nav.Navigate(PathLogin)
	}
}

// LastEmail is the email of the most recent successful login, if any.
func (s *Store) LastEmail(ctx context.Context) string {
	raw, err := s.repo.Get(ctx, lastEmailKey)
	if err != nil {
		s.log.Warn(ctx, "load last email", "error", err)
		return ""
	}
	return string(raw)
}

func (s *Store) discard(ctx context.Context) {
	if err := s.repo.Delete(ctx, sessionKey); err != nil {
		s.log.Error(ctx, "delete session record", "error", err)
	}
}

func (s *Store) newSession(res *client.LoginResult) *models.Session {
	now := s.now()
	expires := now.Add(s.ttl)
	if exp, ok := tokenExpiry(res.Token); ok && exp.Before(expires) {
		expires = exp
	}
	return &models.Session{
		Authenticated: true,
		Token:         res.Token,
		UserID:        res.UserID,
		Role:          models.ParseRole(res.Role),
		Name:          res.Name,
		Email:         res.Email,
		ExpiresAt:     expires.UTC(),
	}
}

// tokenExpiry reads the exp claim without verifying the signature; the
// server remains the authority on validity.
func tokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func classifyLoginError(err error) error {
	switch {
	case errors.Is(err, common.ErrAborted), errors.Is(err, common.ErrUnavailable):
		return err
	case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrForbidden), errors.Is(err, common.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	var apiErr *common.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	return err
}

func toRecord(s *models.Session) record {
	exp := s.ExpiresAt
	return record{
		Token:     s.Token,
		UserID:    s.UserID,
		Role:      string(s.Role),
		Name:      s.Name,
		Email:     s.Email,
		ExpiresAt: &exp,
	}
}

func (r record) toSession() *models.Session {
	sess := &models.Session{
		Authenticated: r.Token != "" && r.ExpiresAt != nil,
		Token:         r.Token,
		UserID:        r.UserID,
		Role:          models.ParseRole(r.Role),
		Name:          r.Name,
		Email:         r.Email,
	}
	if r.ExpiresAt != nil {
		sess.ExpiresAt = *r.ExpiresAt
	}
	return sess
}
