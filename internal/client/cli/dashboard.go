package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/staffdesk/internal/client/gate"
	"github.com/dmitrijs2005/staffdesk/internal/client/models"
	"github.com/dmitrijs2005/staffdesk/internal/client/services"
)

// Dashboard lists employees, optionally filtered by name, followed by who is
// on leave today.
func (a *App) Dashboard(ctx context.Context, query string) error {
	if !a.visit(gate.PathHome) {
		return nil
	}

	employees, err := a.directory.Employees(ctx)
	if err != nil {
		return err
	}
	employees = services.Search(employees, query)

	if len(employees) == 0 {
		a.println("No employees found.")
	} else {
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPOSITION\tEMAIL\tJOINED")
		for _, p := range employees {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Position, p.Email, p.DateOfJoining)
		}
		tw.Flush()
	}

	a.println()
	return a.printOnLeave(ctx)
}

func (a *App) OnLeave(ctx context.Context) error {
	if !a.visit(gate.PathHome) {
		return nil
	}
	return a.printOnLeave(ctx)
}

func (a *App) printOnLeave(ctx context.Context) error {
	away, err := a.directory.OnLeave(ctx)
	if err != nil {
		return err
	}
	if len(away) == 0 {
		a.println("Nobody is on leave today.")
		return nil
	}
	a.println("On leave today:")
	for _, lr := range away {
		a.printf("  %s until %s\n", ownerName(lr), lr.Period.End)
	}
	return nil
}

// Profile shows one employee.
func (a *App) Profile(ctx context.Context, id string) error {
	if !a.visit("/user/" + id) {
		return nil
	}

	p, err := a.profiles.Fetch(ctx, models.ID(id))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", p.ID)
	fmt.Fprintf(tw, "Name\t%s\n", p.Name)
	fmt.Fprintf(tw, "Email\t%s\n", p.Email)
	fmt.Fprintf(tw, "Position\t%s\n", p.Position)
	fmt.Fprintf(tw, "Role\t%s\n", p.Role)
	fmt.Fprintf(tw, "Joined\t%s\n", p.DateOfJoining)
	fmt.Fprintf(tw, "National ID\t%s\n", sensitive(p.NationalID))
	fmt.Fprintf(tw, "Tax ID\t%s\n", sensitive(p.TaxID))
	fmt.Fprintf(tw, "Image\t%s\n", a.imageURL(p.Image))
	return tw.Flush()
}

func sensitive(v models.SensitiveValue) string {
	switch v.State {
	case models.SensitivePlain:
		return v.Value
	case models.SensitiveUndecryptable:
		return "<undecryptable>"
	default:
		return "-"
	}
}

func (a *App) imageURL(image string) string {
	if image == "" {
		return "-"
	}
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	return strings.TrimRight(a.config.AssetsBaseURL, "/") + "/" + strings.TrimLeft(image, "/")
}

func ownerName(lr models.LeaveRequest) string {
	if lr.Owner != nil && lr.Owner.Name != "" {
		return lr.Owner.Name
	}
	return lr.OwnerUserID.String()
}
