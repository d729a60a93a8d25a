package cli

import (
	"context"

	"github.com/dmitrijs2005/staffdesk/internal/client/gate"
	"github.com/dmitrijs2005/staffdesk/internal/client/models"
	"github.com/dmitrijs2005/staffdesk/internal/common"
)

// Prompt seams, replaced in tests.
var (
	getOptional = GetOptional
	getPassword = GetPassword
)

func (a *App) Login(ctx context.Context) error {
	if !a.visit(gate.PathLogin) {
		return nil
	}

	email, err := getOptional(a.reader, "Email", a.store.LastEmail(ctx), a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.store.Login(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}

	a.printf("Welcome, %s (%s).\n", s.Name, s.Role)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.viewed.Clear()
	a.store.Logout(ctx)
	a.println("Logged out.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	s := a.store.Current()
	if !s.Valid(a.store.Now()) {
		a.println("Not logged in.")
		return nil
	}
	a.printf("%s <%s>, %s, id %s, session valid until %s\n",
		s.Name, s.Email, s.Role, s.UserID, s.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}
