package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/staffdesk/internal/client/client"
	"github.com/dmitrijs2005/staffdesk/internal/client/config"
	"github.com/dmitrijs2005/staffdesk/internal/client/gate"
	"github.com/dmitrijs2005/staffdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/staffdesk/internal/client/services"
	"github.com/dmitrijs2005/staffdesk/internal/client/session"
	"github.com/dmitrijs2005/staffdesk/internal/cryptox"
	"github.com/dmitrijs2005/staffdesk/internal/filex"
	"github.com/dmitrijs2005/staffdesk/internal/logging"
)

type App struct {
	config    *config.Config
	log       logging.Logger
	db        *sql.DB
	store     *session.Store
	leave     services.LeaveService
	profiles  services.ProfileService
	directory services.DirectoryService
	viewed    *services.ViewedProfile
	routes    *gate.RouteTable
	reader    *bufio.Reader
	out       io.Writer
	location  string
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if c.DatabasePath != ":memory:" {
		if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
			return nil, err
		}
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	api, err := client.NewHTTPClient(c.APIBaseURL, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	cipher, err := cryptox.NewFieldCipher(c.CryptoKey)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("field cipher: %w", err)
	}

	return newApp(c, log, db, api, cipher, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, log logging.Logger, db *sql.DB, gw client.Gateway, cipher services.Cipher, in io.Reader, out io.Writer) *App {
	store := session.NewStore(gw, metadata.NewSQLiteRepository(db), log, c.SessionTTL)
	leave := services.NewLeaveService(gw, store, log)
	viewed := services.NewViewedProfile()

	a := &App{
		config:    c,
		log:       log,
		db:        db,
		store:     store,
		leave:     leave,
		profiles:  services.NewProfileService(gw, store, cipher, viewed, log),
		directory: services.NewDirectoryService(gw, leave, cipher, log),
		viewed:    viewed,
		routes:    gate.DefaultRoutes(),
		reader:    bufio.NewReader(in),
		out:       out,
		location:  gate.PathLogin,
	}
	store.SetNavigator(a)
	return a
}

// Run restores the previous session and serves the REPL until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.store.Current().Valid(a.store.Now())
}

func (a *App) isAdmin() bool {
	return a.isLoggedIn() && gate.IsAdmin(a.store.Current())
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
