package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/staffdesk/internal/client/gate"
	"github.com/dmitrijs2005/staffdesk/internal/client/models"
	"github.com/dmitrijs2005/staffdesk/internal/common"
	"github.com/dmitrijs2005/staffdesk/internal/validation"
)

var readFile = os.ReadFile

// EditProfile collects the edit form for id. Admins get every field; owners
// may change their name and password only.
func (a *App) EditProfile(ctx context.Context, id string) error {
	if !a.visit("/user/" + id + "/edit") {
		return nil
	}

	current, err := a.currentProfile(ctx, models.ID(id))
	if err != nil {
		return err
	}

	if gate.CanEditAllFields(a.store.Current()) {
		return a.editAllFields(ctx, current)
	}
	return a.editSelf(ctx, current)
}

func (a *App) editAllFields(ctx context.Context, current models.EmployeeProfile) error {
	var upd models.ProfileUpdate
	var err error

	if upd.Name, err = getOptional(a.reader, "Name", current.Name, a.out); err != nil {
		return err
	}
	if upd.Email, err = getOptional(a.reader, "Email", current.Email, a.out); err != nil {
		return err
	}
	if upd.Password, err = a.optionalPassword(); err != nil {
		return err
	}
	if upd.Position, err = getOptional(a.reader, "Position", current.Position, a.out); err != nil {
		return err
	}
	if upd.NationalID, err = getOptional(a.reader, "National ID", current.NationalID.Value, a.out); err != nil {
		return err
	}
	if upd.TaxID, err = getOptional(a.reader, "Tax ID", current.TaxID.Value, a.out); err != nil {
		return err
	}

	p, err := a.profiles.Update(ctx, current.ID, upd)
	if err != nil {
		return err
	}
	a.printf("Profile of %s updated.\n", p.Name)
	return nil
}

func (a *App) editSelf(ctx context.Context, current models.EmployeeProfile) error {
	var upd models.SelfUpdate
	var err error

	if upd.Name, err = getOptional(a.reader, "Name", current.Name, a.out); err != nil {
		return err
	}
	if upd.Password, err = a.optionalPassword(); err != nil {
		return err
	}

	p, err := a.profiles.UpdateSelf(ctx, current.ID, upd)
	if err != nil {
		return err
	}
	a.printf("Profile of %s updated.\n", p.Name)
	return nil
}

func (a *App) optionalPassword() (string, error) {
	pw, err := getPassword(a.reader, "New password (leave empty to keep)", a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// currentProfile returns the viewed profile when it is id, fetching it
// otherwise.
func (a *App) currentProfile(ctx context.Context, id models.ID) (models.EmployeeProfile, error) {
	if p, ok := a.viewed.Get(); ok && p.ID == id {
		return p, nil
	}
	return a.profiles.Fetch(ctx, id)
}

// EditImage uploads the file at path as the profile picture of id.
func (a *App) EditImage(ctx context.Context, id, path string) error {
	if !a.visit("/user/" + id + "/image") {
		return nil
	}

	data, err := readFile(path)
	if err != nil {
		return validation.Single("image", "could not be read: "+err.Error())
	}

	if err := a.profiles.UpdateImage(ctx, models.ID(id), models.Image{Filename: filepath.Base(path), Data: data}); err != nil {
		return err
	}
	a.println("Image updated.")
	return nil
}

// Register creates a new employee account.
func (a *App) Register(ctx context.Context) error {
	if !a.visit("/register") {
		return nil
	}

	var emp models.NewEmployee
	var err error

	if emp.Name, err = GetSimpleText(a.reader, "Name", a.out); err != nil {
		return err
	}
	if emp.Email, err = GetSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	pw, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	emp.Password = string(pw)
	common.WipeByteArray(pw)

	if emp.Position, err = GetSimpleText(a.reader, "Position", a.out); err != nil {
		return err
	}
	if emp.NationalID, err = GetSimpleText(a.reader, "National ID", a.out); err != nil {
		return err
	}
	if emp.TaxID, err = GetSimpleText(a.reader, "Tax ID", a.out); err != nil {
		return err
	}
	if emp.DateOfJoining, err = GetDate(a.reader, "Date of joining", a.out); err != nil {
		return validation.Single("dateOfJoining", "must be a date like 2024-01-31")
	}

	imagePath, err := GetOptional(a.reader, "Image file (optional)", "", a.out)
	if err != nil {
		return err
	}
	if imagePath != "" {
		data, err := readFile(imagePath)
		if err != nil {
			return validation.Single("image", "could not be read: "+err.Error())
		}
		emp.Image = &models.Image{Filename: filepath.Base(imagePath), Data: data}
	}

	if err := a.profiles.Register(ctx, emp); err != nil {
		return err
	}
	a.printf("Employee %s registered.\n", emp.Name)
	return nil
}
