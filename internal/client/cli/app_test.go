package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/staffdesk/internal/client/client"
	"github.com/dmitrijs2005/staffdesk/internal/client/client/gatewaytest"
	"github.com/dmitrijs2005/staffdesk/internal/client/config"
	"github.com/dmitrijs2005/staffdesk/internal/client/models"
	"github.com/dmitrijs2005/staffdesk/internal/client/services"
	"github.com/dmitrijs2005/staffdesk/internal/common"
	"github.com/dmitrijs2005/staffdesk/internal/cryptox"
	"github.com/dmitrijs2005/staffdesk/internal/logging"
	"github.com/dmitrijs2005/staffdesk/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	srv    *gatewaytest.Server
	cipher *cryptox.FieldCipher
	dbPath string
	app    *App
	out    *bytes.Buffer

	adminID models.ID
	bobID   models.ID
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	stubTerminal(t, false, nil, errors.New("no terminal in tests"))

	srv := gatewaytest.New()
	t.Cleanup(srv.Close)

	cipher, err := cryptox.NewFieldCipherWithKey(make([]byte, 32))
	require.NoError(t, err)

	h := &harness{
		srv:    srv,
		cipher: cipher,
		dbPath: filepath.Join(t.TempDir(), "staffdesk.db"),
	}
	h.adminID = srv.AddUser(gatewaytest.User{Name: "Ada Admin", Email: "ada@corp.io", Password: "adminpw", Role: models.RoleAdmin})
	h.bobID = srv.AddUser(gatewaytest.User{
		Name:          "Bob Builder",
		Email:         "bob@corp.io",
		Password:      "bobpw1",
		Role:          models.RoleUser,
		Position:      "Dev",
		DateOfJoining: models.NewDate(2021, time.April, 1),
	})
	h.app, h.out = h.newApp(t)
	return h
}

func (h *harness) newApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()

	db, err := client.InitDatabase(ctx, h.dbPath)
	require.NoError(t, err)
	api, err := client.NewHTTPClient(h.srv.APIBaseURL(), logging.Nop(), client.WithHTTPClient(h.srv.HTTPClient()))
	require.NoError(t, err)

	cfg := &config.Config{AssetsBaseURL: "http://assets.local/", SessionTTL: time.Hour}
	out := &bytes.Buffer{}
	a := newApp(cfg, logging.Nop(), db, api, h.cipher, strings.NewReader(""), out)
	t.Cleanup(func() { _ = a.Close() })
	return a, out
}

// input replaces what the app will read next and clears its output.
func (h *harness) input(lines ...string) {
	h.app.reader = bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	h.out.Reset()
}

func (h *harness) login(t *testing.T, email, password string) {
	t.Helper()
	h.input(email, password)
	require.NoError(t, h.app.Login(context.Background()))
	require.True(t, h.app.isLoggedIn())
	h.out.Reset()
}

func TestApp_GuestIsSentToLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, run := range []func() error{
		func() error { return h.app.Dashboard(ctx, "") },
		func() error { return h.app.Leave(ctx) },
		func() error { return h.app.Profile(ctx, string(h.bobID)) },
		func() error { return h.app.Register(ctx) },
		func() error { return h.app.Review(ctx, "L1", true) },
	} {
		h.out.Reset()
		require.NoError(t, run())
		assert.Contains(t, h.out.String(), "Please log in first")
		assert.Equal(t, "/login", h.app.Location())
	}
	assert.Zero(t, h.srv.TotalCalls())
}

func TestApp_LoginLogout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.input("bob@corp.io", "bobpw1")
	require.NoError(t, h.app.Login(ctx))
	assert.Contains(t, h.out.String(), "Welcome, Bob Builder (user).")
	assert.Equal(t, "/", h.app.Location())
	assert.Equal(t, "(Bob Builder /)", h.app.getStatus())

	h.input()
	require.NoError(t, h.app.Login(ctx))
	assert.Contains(t, h.out.String(), "already logged in")

	h.input()
	require.NoError(t, h.app.Logout(ctx))
	assert.Equal(t, "/login", h.app.Location())
	assert.False(t, h.app.isLoggedIn())
	assert.Empty(t, h.app.getStatus())

	h.input("", "bobpw1")
	require.NoError(t, h.app.Login(ctx))
	assert.Contains(t, h.out.String(), "Email [bob@corp.io]", "last email is offered")
	assert.True(t, h.app.isLoggedIn())
}

func TestApp_LoginFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.input("bob@corp.io", "wrong")
	err := h.app.Login(ctx)
	require.Error(t, err)
	h.app.Report(ctx, err)

	assert.Contains(t, h.out.String(), "Invalid credentials, could not log you in.")
	assert.False(t, h.app.isLoggedIn())
	assert.Equal(t, "/login", h.app.Location())
}

func TestApp_DashboardAndSearch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.srv.AddUser(gatewaytest.User{Name: "Cara Cole", Email: "cara@corp.io", Role: models.RoleUser})
	today := models.NewDate(time.Now().UTC().Year(), time.Now().UTC().Month(), time.Now().UTC().Day())
	h.srv.AddLeave(gatewaytest.Leave{UserID: h.bobID, Start: today, End: today, Reason: "dentist", Status: models.LeaveApproved})

	h.login(t, "ada@corp.io", "adminpw")
	require.NoError(t, h.app.Dashboard(ctx, ""))
	out := h.out.String()
	assert.Contains(t, out, "Bob Builder")
	assert.Contains(t, out, "Cara Cole")
	assert.Contains(t, out, "2021-04-01")
	assert.NotContains(t, out, "ada@corp.io", "admins are not listed")
	assert.Contains(t, out, "On leave today:")

	h.out.Reset()
	require.NoError(t, h.app.Dashboard(ctx, "CARA"))
	assert.Contains(t, h.out.String(), "Cara Cole")
	assert.NotContains(t, h.out.String(), "bob@corp.io")

	h.out.Reset()
	require.NoError(t, h.app.Dashboard(ctx, "nobody"))
	assert.Contains(t, h.out.String(), "No employees found.")
}

func TestApp_ProfileRevealsSensitiveFields(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	nat, err := h.cipher.Encrypt("NAT-1")
	require.NoError(t, err)
	id := h.srv.AddUser(gatewaytest.User{
		Name: "Dana", Email: "dana@corp.io", Role: models.RoleUser,
		NationalID: nat, TaxID: "not-ciphertext", Image: "uploads/images/d.png",
	})

	h.login(t, "bob@corp.io", "bobpw1")
	require.NoError(t, h.app.Profile(ctx, string(id)))

	out := h.out.String()
	assert.Contains(t, out, "NAT-1")
	assert.Contains(t, out, "<undecryptable>")
	assert.Contains(t, out, "http://assets.local/uploads/images/d.png")
	assert.Equal(t, "/user/"+string(id), h.app.Location())

	h.out.Reset()
	err = h.app.Profile(ctx, "missing")
	require.Error(t, err)
	h.app.Report(ctx, err)
	assert.Contains(t, h.out.String(), "Could not find user for the provided id.")
}

func TestApp_LeaveWorkflow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.login(t, "bob@corp.io", "bobpw1")
	h.input("2024-02-01", "2024-02-03", "family trip", "")
	require.NoError(t, h.app.RequestLeave(ctx))
	assert.Contains(t, h.out.String(), "3 day(s) submitted, status Pending")

	h.out.Reset()
	require.NoError(t, h.app.Leave(ctx))
	assert.Contains(t, h.out.String(), "family trip")

	h.input()
	require.NoError(t, h.app.Logout(ctx))
	h.login(t, "ada@corp.io", "adminpw")

	require.NoError(t, h.app.Leave(ctx))
	assert.Contains(t, h.out.String(), "Bob Builder")
	cached := h.app.leave.Cached()
	require.Len(t, cached, 1)
	id := cached[0].ID

	h.out.Reset()
	require.NoError(t, h.app.Review(ctx, string(id), true))
	assert.Contains(t, h.out.String(), "approved")
	stored, ok := h.srv.Leave(id)
	require.True(t, ok)
	assert.Equal(t, models.LeaveApproved, stored.Status)

	require.NoError(t, h.app.Leave(ctx))
	h.out.Reset()
	err := h.app.Review(ctx, string(id), false)
	require.ErrorIs(t, err, services.ErrTerminalStatus)
	h.app.Report(ctx, err)
	assert.Contains(t, h.out.String(), "already been decided")
	assert.Equal(t, 1, h.srv.Calls("PATCH /leave/updateStatus/{id}"))
}

func TestApp_ReviewRefreshesUnknownIDs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.srv.AddLeave(gatewaytest.Leave{
		UserID: h.bobID, Start: models.NewDate(2024, 5, 1), End: models.NewDate(2024, 5, 2),
		Reason: "move", Status: models.LeaveApproved,
	})

	h.login(t, "ada@corp.io", "adminpw")
	err := h.app.Review(ctx, string(id), true)
	require.ErrorIs(t, err, services.ErrTerminalStatus)
	assert.Equal(t, 1, h.srv.Calls("GET /leave"))
	assert.Zero(t, h.srv.Calls("PATCH /leave/updateStatus/{id}"))
}

func TestApp_ReviewTwiceWithoutListing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.srv.AddLeave(gatewaytest.Leave{
		UserID: h.bobID, Start: models.NewDate(2024, 6, 3), End: models.NewDate(2024, 6, 4),
		Reason: "wedding", Status: models.LeavePending,
	})

	h.login(t, "ada@corp.io", "adminpw")
	require.NoError(t, h.app.Review(ctx, string(id), true))

	err := h.app.Review(ctx, string(id), false)
	require.ErrorIs(t, err, services.ErrTerminalStatus)
	assert.Equal(t, 1, h.srv.Calls("PATCH /leave/updateStatus/{id}"))
	stored, ok := h.srv.Leave(id)
	require.True(t, ok)
	assert.Equal(t, models.LeaveApproved, stored.Status)
}

func TestApp_RoleChecks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.login(t, "ada@corp.io", "adminpw")
	err := h.app.RequestLeave(ctx)
	require.ErrorIs(t, err, common.ErrForbidden)
	h.app.Report(ctx, err)
	assert.Contains(t, h.out.String(), "You do not have permission")

	h.input()
	require.NoError(t, h.app.Logout(ctx))
	h.login(t, "bob@corp.io", "bobpw1")

	require.NoError(t, h.app.Register(ctx))
	assert.Contains(t, h.out.String(), "not allowed to open /register")

	h.out.Reset()
	require.NoError(t, h.app.EditProfile(ctx, string(h.adminID)))
	assert.Contains(t, h.out.String(), "not allowed to open")

	h.out.Reset()
	require.NoError(t, h.app.Review(ctx, "L1", true))
	assert.Contains(t, h.out.String(), "not allowed to open /leave/review")
	assert.Zero(t, h.srv.Calls("GET /leave"))
}

func TestApp_EditOwnProfile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.login(t, "bob@corp.io", "bobpw1")
	h.input("Robert", "")
	require.NoError(t, h.app.EditProfile(ctx, string(h.bobID)))
	assert.Contains(t, h.out.String(), "Profile of Robert updated.")

	u, ok := h.srv.User(h.bobID)
	require.True(t, ok)
	assert.Equal(t, "Robert", u.Name)
	assert.Equal(t, "bobpw1", u.Password, "empty password keeps the old one")
	assert.Zero(t, h.srv.Calls("PATCH /users/editprofile/{id}"))
}

func TestApp_AdminEditsEveryField(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.login(t, "ada@corp.io", "adminpw")
	h.input("", "", "", "QA", "NAT-2", "TAX-2")
	require.NoError(t, h.app.EditProfile(ctx, string(h.bobID)))

	u, ok := h.srv.User(h.bobID)
	require.True(t, ok)
	assert.Equal(t, "Bob Builder", u.Name)
	assert.Equal(t, "QA", u.Position)
	nat, err := h.cipher.Decrypt(u.NationalID)
	require.NoError(t, err)
	assert.Equal(t, "NAT-2", nat)

	h.out.Reset()
	require.NoError(t, h.app.Profile(ctx, string(h.bobID)))
	assert.Contains(t, h.out.String(), "TAX-2")
}

func TestApp_EditProfileValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.login(t, "bob@corp.io", "bobpw1")
	h.input("B", "123")
	err := h.app.EditProfile(ctx, string(h.bobID))
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)

	h.app.Report(ctx, err)
	assert.Contains(t, h.out.String(), "Please fix the following:")
	assert.Contains(t, h.out.String(), "  name ")
	assert.Contains(t, h.out.String(), "  password ")
	assert.Zero(t, h.srv.Calls("PATCH /users/edituser/{id}"))
}

func TestApp_EditImage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 'P', 'N', 'G'}, 0o600))

	h.login(t, "bob@corp.io", "bobpw1")
	require.NoError(t, h.app.EditImage(ctx, string(h.bobID), path))
	assert.Contains(t, h.out.String(), "Image updated.")
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, h.srv.Image(h.bobID))

	err := h.app.EditImage(ctx, string(h.bobID), filepath.Join(t.TempDir(), "missing.png"))
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "image")
}

func TestApp_Register(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.login(t, "ada@corp.io", "adminpw")
	h.input("Cleo Park", "cleo@corp.io", "cleo1234", "Designer", "NAT-7", "TAX-7", "2024-03-01", "")
	require.NoError(t, h.app.Register(ctx))
	assert.Contains(t, h.out.String(), "Employee Cleo Park registered.")

	h.out.Reset()
	require.NoError(t, h.app.Dashboard(ctx, "cleo"))
	assert.Contains(t, h.out.String(), "2024-03-01")

	h.input("Cleo Park", "cleo@corp.io", "cleo1234", "Designer", "NAT-7", "TAX-7", "2024-03-01", "")
	err := h.app.Register(ctx)
	require.Error(t, err)
	h.out.Reset()
	h.app.Report(ctx, err)
	assert.Contains(t, h.out.String(), "User exists already, please login instead.")
}

func TestApp_Report(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"api message", fmt.Errorf("x: %w", &common.APIError{Status: 422, Message: "Invalid inputs passed"}), "Invalid inputs passed"},
		{"forbidden with message", fmt.Errorf("%w: %w", common.ErrForbidden, &common.APIError{Status: 403, Message: "Admins only"}), "Admins only"},
		{"forbidden locally", fmt.Errorf("review: %w", common.ErrForbidden), "You do not have permission"},
		{"unavailable", fmt.Errorf("list: %w", common.ErrUnavailable), "server is unreachable"},
		{"not found", common.ErrNotFound, "Not found."},
		{"not synced", services.ErrNotSynced, "not confirmed by the server"},
		{"validation", validation.Single("reason", "is required"), "  reason is required"},
		{"other", errors.New("disk on fire"), "Error: disk on fire"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.app.Report(context.Background(), tt.err)
			assert.Contains(t, h.out.String(), tt.want)
		})
	}
}

func TestApp_ReportAbortedIsSilent(t *testing.T) {
	h := newHarness(t)
	h.app.Report(context.Background(), fmt.Errorf("list: %w", common.ErrAborted))
	h.app.Report(context.Background(), nil)
	assert.Empty(t, h.out.String())
}

func TestApp_ReportUnauthorizedLogsOut(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.login(t, "bob@corp.io", "bobpw1")
	require.NoError(t, h.app.Profile(ctx, string(h.bobID)))
	h.out.Reset()

	h.app.Report(ctx, fmt.Errorf("%w: %w", common.ErrUnauthorized, &common.APIError{Status: 401, Message: "Authentication failed"}))
	assert.Contains(t, h.out.String(), "session has ended")
	assert.False(t, h.app.isLoggedIn())
	assert.Equal(t, "/login", h.app.Location())
	_, ok := h.app.viewed.Get()
	assert.False(t, ok, "viewed profile is cleared")
}

func TestApp_RootRestoresSession(t *testing.T) {
	h := newHarness(t)
	h.login(t, "bob@corp.io", "bobpw1")

	second, out := h.newApp(t)
	second.reader = bufio.NewReader(strings.NewReader("whoami\nexit\n"))
	second.Root(context.Background())

	assert.Contains(t, out.String(), "Welcome back, Bob Builder.")
	assert.Contains(t, out.String(), "Bob Builder <bob@corp.io>, user")
	assert.Contains(t, out.String(), "staffdesk (Bob Builder /)> ")
	assert.Contains(t, out.String(), "Bye!")
}

func TestApp_RootWithoutSession(t *testing.T) {
	h := newHarness(t)
	h.app.reader = bufio.NewReader(strings.NewReader("whoami\n"))
	h.app.Root(context.Background())

	assert.Contains(t, h.out.String(), "Type 'login' to sign in.")
	assert.Contains(t, h.out.String(), "Not logged in.")
	assert.Equal(t, "/login", h.app.Location())
}

func TestNewApp_CreatesDatabaseDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "staffdesk.db")
	cfg := &config.Config{
		APIBaseURL:   "http://127.0.0.1:1/api",
		DatabasePath: path,
		SessionTTL:   time.Hour,
		CryptoKey:    "test passphrase",
	}

	a, err := NewApp(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	_, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, "/login", a.Location())
	assert.False(t, a.isLoggedIn())
}
