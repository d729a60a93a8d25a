package cli

import (
	"context"
	"errors"
	"sort"

	"github.com/dmitrijs2005/staffdesk/internal/client/services"
	"github.com/dmitrijs2005/staffdesk/internal/client/session"
	"github.com/dmitrijs2005/staffdesk/internal/common"
	"github.com/dmitrijs2005/staffdesk/internal/validation"
)

// Report turns a command error into a notice. Aborted requests are silent;
// an unauthorized error also ends the session.
func (a *App) Report(ctx context.Context, err error) {
	if err == nil || common.IsSilent(err) {
		return
	}
	a.log.Debug(ctx, "command failed", "error", err)

	var verr *validation.Error
	var apiErr *common.APIError
	hasMessage := errors.As(err, &apiErr) && apiErr.Message != ""

	switch {
	case errors.As(err, &verr):
		a.println("Please fix the following:")
		fields := make([]string, 0, len(verr.Fields))
		for f := range verr.Fields {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			a.printf("  %s %s\n", f, verr.Fields[f])
		}

	case errors.Is(err, session.ErrInvalidCredentials):
		if hasMessage {
			a.println(apiErr.Message)
		} else {
			a.println("Invalid email or password.")
		}

	case errors.Is(err, common.ErrUnauthorized):
		a.println("Your session has ended. Please log in again.")
		a.viewed.Clear()
		a.store.Logout(ctx)

	case errors.Is(err, common.ErrForbidden):
		if hasMessage {
			a.println(apiErr.Message)
		} else {
			a.println("You do not have permission to do that.")
		}

	case errors.Is(err, common.ErrUnavailable):
		a.println("The server is unreachable. Please try again later.")

	case errors.Is(err, services.ErrTerminalStatus):
		a.println("This leave request has already been decided.")

	case errors.Is(err, services.ErrNotSynced):
		a.println("This leave request is not confirmed by the server yet. Run 'leave' to refresh.")

	case hasMessage:
		a.println(apiErr.Message)

	case errors.Is(err, common.ErrNotFound):
		a.println("Not found.")

	default:
		a.println("Error:", err.Error())
	}
}
