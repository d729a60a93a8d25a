package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
)

// commandContext scopes a single command. Ctrl-C cancels the command's
// in-flight request instead of killing the program.
var commandContext = func(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt)
}

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Dashboard(ctx context.Context, query string) error
	OnLeave(ctx context.Context) error
	Profile(ctx context.Context, id string) error
	EditProfile(ctx context.Context, id string) error
	EditImage(ctx context.Context, id, path string) error
	Register(ctx context.Context) error
	Leave(ctx context.Context) error
	RequestLeave(ctx context.Context) error
	Review(ctx context.Context, id string, approve bool) error
	Report(ctx context.Context, err error)
}

var errUsage = errors.New("usage")

// runREPL starts a simple read–eval–print loop for the staffdesk CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Errors returned by command handlers go to
// a.Report. The loop exits on EOF or when the user types "exit" or "quit".
//
//	Not logged in:
//	  help, login, exit | quit
//
//	Logged in:
//	  dashboard [name]       employee directory and who is away
//	  onleave                who is on leave today
//	  profile <id>           show an employee
//	  editprofile <id>       edit an employee (own profile unless admin)
//	  editimage <id> <file>  upload a profile picture
//	  leave                  list leave requests
//	  request                request leave (employees)
//	  approve | reject <id>  decide a pending request (admins)
//	  register               add an employee (admins)
//	  whoami, logout, exit | quit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "staffdesk %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(w)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			fmt.Fprintln(w, "Bye!")
			return
		}
		if cmd == "help" {
			fmt.Fprintln(w, helpText(a))
			continue
		}

		cctx, cancel := commandContext(ctx)
		err = dispatch(cctx, a, cmd, args)
		switch {
		case errors.Is(err, errUsage):
			fmt.Fprintln(w, "Usage:", strings.TrimPrefix(err.Error(), errUsage.Error()+": "))
		case err != nil:
			a.Report(cctx, err)
		}
		cancel()
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "whoami":
		return a.WhoAmI(ctx)
	case "dashboard", "d":
		return a.Dashboard(ctx, strings.Join(args, " "))
	case "onleave":
		return a.OnLeave(ctx)
	case "profile":
		if len(args) != 1 {
			return fmt.Errorf("%w: profile <id>", errUsage)
		}
		return a.Profile(ctx, args[0])
	case "editprofile":
		if len(args) != 1 {
			return fmt.Errorf("%w: editprofile <id>", errUsage)
		}
		return a.EditProfile(ctx, args[0])
	case "editimage":
		if len(args) != 2 {
			return fmt.Errorf("%w: editimage <id> <file>", errUsage)
		}
		return a.EditImage(ctx, args[0], args[1])
	case "register":
		return a.Register(ctx)
	case "leave", "l":
		return a.Leave(ctx)
	case "request":
		return a.RequestLeave(ctx)
	case "approve", "reject":
		if len(args) != 1 {
			return fmt.Errorf("%w: %s <id>", errUsage, cmd)
		}
		return a.Review(ctx, args[0], cmd == "approve")
	default:
		return fmt.Errorf("unknown command %q, type 'help'", cmd)
	}
}

func helpText(a execIface) string {
	switch {
	case !a.isLoggedIn():
		return "Available commands: login, exit"
	case a.isAdmin():
		return "Available commands: (d)ashboard, onleave, profile, editprofile, editimage, (l)eave, approve, reject, register, whoami, logout, exit"
	default:
		return "Available commands: (d)ashboard, onleave, profile, editprofile, editimage, (l)eave, request, whoami, logout, exit"
	}
}
