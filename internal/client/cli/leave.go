package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/staffdesk/internal/client/gate"
	"github.com/dmitrijs2005/staffdesk/internal/client/models"
	"github.com/dmitrijs2005/staffdesk/internal/common"
	"github.com/dmitrijs2005/staffdesk/internal/validation"
)

const pathLeave = "/leave"

// Leave lists every request for admins and the caller's own otherwise,
// newest first.
func (a *App) Leave(ctx context.Context) error {
	if !a.visit(pathLeave) {
		return nil
	}

	var list []models.LeaveRequest
	var err error
	if gate.CanListAllLeave(a.store.Current()) {
		list, err = a.leave.ListAll(ctx)
	} else {
		list, err = a.leave.ListOwn(ctx)
	}
	if err != nil {
		return err
	}

	a.printLeave(list)
	return nil
}

func (a *App) printLeave(list []models.LeaveRequest) {
	if len(list) == 0 {
		a.println("No leave requests.")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMPLOYEE\tFROM\tTO\tDAYS\tSTATUS\tREASON")
	for _, lr := range list {
		status := string(lr.Status)
		if lr.PendingSync {
			status += " (unsynced)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			lr.ID, ownerName(lr), lr.Period.Start, lr.Period.End, lr.Period.Days(), status, lr.Reason)
	}
	tw.Flush()
}

// RequestLeave collects and submits a leave request.
func (a *App) RequestLeave(ctx context.Context) error {
	if !a.visit(pathLeave) {
		return nil
	}
	if !gate.CanSubmitLeave(a.store.Current()) {
		return fmt.Errorf("request leave: %w", common.ErrForbidden)
	}

	start, err := GetDate(a.reader, "Start date", a.out)
	if err != nil {
		return validation.Single("start", "must be a date like 2024-01-31")
	}
	end, err := GetDate(a.reader, "End date", a.out)
	if err != nil {
		return validation.Single("end", "must be a date like 2024-01-31")
	}
	reason, err := GetMultiline(a.reader, "Reason", a.out)
	if err != nil {
		return err
	}

	lr, err := a.leave.Submit(ctx, models.DateRange{Start: start, End: end}, reason)
	if err != nil {
		return err
	}

	a.printf("Leave request for %d day(s) submitted, status %s.\n", lr.Period.Days(), lr.Status)
	if lr.PendingSync {
		a.println("The server did not return the request yet; run 'leave' to refresh.")
	}
	return nil
}

// Review approves or rejects the request id.
func (a *App) Review(ctx context.Context, id string, approve bool) error {
	if !a.visit("/leave/review") {
		return nil
	}

	if !a.cached(models.ID(id)) {
		if _, err := a.leave.ListAll(ctx); err != nil {
			return err
		}
	}

	if err := a.leave.SetStatus(ctx, models.ID(id), approve); err != nil {
		return err
	}
	a.printf("Leave request %s %s.\n", id, strings.ToLower(string(models.Decision(approve))))
	return nil
}

func (a *App) cached(id models.ID) bool {
	for _, lr := range a.leave.Cached() {
		if lr.ID == id {
			return true
		}
	}
	return false
}
