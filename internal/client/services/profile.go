package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/staffdesk/internal/client/client"
	"github.com/dmitrijs2005/staffdesk/internal/client/gate"
	"github.com/dmitrijs2005/staffdesk/internal/client/models"
	"github.com/dmitrijs2005/staffdesk/internal/logging"
	"github.com/dmitrijs2005/staffdesk/internal/validation"
)

// ProfileService reads and edits employee profiles. Successful reads and
// edits land in the shared ViewedProfile.
type ProfileService interface {
	Fetch(ctx context.Context, id models.ID) (models.EmployeeProfile, error)
	Update(ctx context.Context, id models.ID, upd models.ProfileUpdate) (models.EmployeeProfile, error)
	UpdateSelf(ctx context.Context, id models.ID, upd models.SelfUpdate) (models.EmployeeProfile, error)
	UpdateImage(ctx context.Context, id models.ID, img models.Image) error
	Register(ctx context.Context, emp models.NewEmployee) error
}

type profileService struct {
	gw       client.Gateway
	sessions SessionSource
	cipher   Cipher
	viewed   *ViewedProfile
	log      logging.Logger
}

func NewProfileService(gw client.Gateway, sessions SessionSource, cipher Cipher, viewed *ViewedProfile, log logging.Logger) ProfileService {
	return &profileService{
		gw:       gw,
		sessions: sessions,
		cipher:   cipher,
		viewed:   viewed,
		log:      log.With("component", "profile"),
	}
}

func (s *profileService) Fetch(ctx context.Context, id models.ID) (models.EmployeeProfile, error) {
	raw, err := s.gw.GetUser(ctx, id)
	if err != nil {
		return models.EmployeeProfile{}, fmt.Errorf("fetch profile %s: %w", id, err)
	}
	p := reveal(ctx, s.cipher, s.log, *raw)
	s.viewed.Set(p)
	return p, nil
}

func validateProfileUpdate(u models.ProfileUpdate) error {
	v := validation.Violations{}
	validation.MinLen("name", u.Name, 2, v)
	validation.Email("email", u.Email, v)
	validation.OptionalMinLen("password", u.Password, 4, v)
	validation.MinLen("position", u.Position, 2, v)
	validation.MinLen("nationalId", u.NationalID, 2, v)
	validation.MinLen("taxId", u.TaxID, 2, v)
	return v.Err()
}

func (s *profileService) Update(ctx context.Context, id models.ID, upd models.ProfileUpdate) (models.EmployeeProfile, error) {
	sess, err := authorize(s.sessions, gate.ActionEditAllFields, id)
	if err != nil {
		return models.EmployeeProfile{}, err
	}
	if err := validateProfileUpdate(upd); err != nil {
		return models.EmployeeProfile{}, err
	}

	nationalID, taxID, err := s.encryptPair(upd.NationalID, upd.TaxID)
	if err != nil {
		return models.EmployeeProfile{}, err
	}

	err = s.gw.EditProfile(ctx, sess.Token, id, client.EditProfileRequest{
		Name:       upd.Name,
		Email:      upd.Email,
		Password:   upd.Password,
		NationalID: nationalID,
		TaxID:      taxID,
		Position:   upd.Position,
	})
	if err != nil {
		return models.EmployeeProfile{}, fmt.Errorf("update profile %s: %w", id, err)
	}

	s.log.Info(ctx, "profile updated", "user_id", id)
	return s.viewed.update(id, func(p *models.EmployeeProfile) {
		p.Name = upd.Name
		p.Email = upd.Email
		p.Position = upd.Position
		p.NationalID = models.PlainValue(upd.NationalID)
		p.TaxID = models.PlainValue(upd.TaxID)
	}), nil
}

func (s *profileService) UpdateSelf(ctx context.Context, id models.ID, upd models.SelfUpdate) (models.EmployeeProfile, error) {
	sess, err := authorize(s.sessions, gate.ActionEditProfile, id)
	if err != nil {
		return models.EmployeeProfile{}, err
	}

	v := validation.Violations{}
	validation.MinLen("name", upd.Name, 2, v)
	validation.OptionalMinLen("password", upd.Password, 4, v)
	if err := v.Err(); err != nil {
		return models.EmployeeProfile{}, err
	}

	if err := s.gw.EditUser(ctx, sess.Token, id, client.EditUserRequest{Name: upd.Name, Password: upd.Password}); err != nil {
		return models.EmployeeProfile{}, fmt.Errorf("update user %s: %w", id, err)
	}

	s.log.Info(ctx, "user updated", "user_id", id)
	return s.viewed.update(id, func(p *models.EmployeeProfile) {
		p.Name = upd.Name
	}), nil
}

func (s *profileService) UpdateImage(ctx context.Context, id models.ID, img models.Image) error {
	sess, err := authorize(s.sessions, gate.ActionEditProfile, id)
	if err != nil {
		return err
	}
	if len(img.Data) == 0 {
		return validation.Single("image", "is required")
	}

	if err := s.gw.EditImage(ctx, sess.Token, id, img); err != nil {
		return fmt.Errorf("update image %s: %w", id, err)
	}
	s.log.Info(ctx, "image updated", "user_id", id, "bytes", len(img.Data))
	return nil
}

func validateNewEmployee(e models.NewEmployee) error {
	v := validation.Violations{}
	validation.MinLen("name", e.Name, 2, v)
	validation.Email("email", e.Email, v)
	validation.MinLen("password", e.Password, 4, v)
	validation.MinLen("position", e.Position, 2, v)
	validation.MinLen("nationalId", e.NationalID, 2, v)
	validation.MinLen("taxId", e.TaxID, 2, v)
	if e.DateOfJoining.IsZero() {
		validation.Required("dateOfJoining", "", v)
	}
	return v.Err()
}

func (s *profileService) Register(ctx context.Context, emp models.NewEmployee) error {
	sess, err := authorize(s.sessions, gate.ActionRegister, "")
	if err != nil {
		return err
	}
	if err := validateNewEmployee(emp); err != nil {
		return err
	}
	if emp.Image != nil && len(emp.Image.Data) == 0 {
		emp.Image = nil
	}

	nationalID, taxID, err := s.encryptPair(emp.NationalID, emp.TaxID)
	if err != nil {
		return err
	}

	err = s.gw.Signup(ctx, sess.Token, client.SignupRequest{
		Name:          emp.Name,
		Email:         emp.Email,
		Password:      emp.Password,
		Position:      emp.Position,
		NationalID:    nationalID,
		TaxID:         taxID,
		DateOfJoining: emp.DateOfJoining,
		Image:         emp.Image,
	})
	if err != nil {
		return fmt.Errorf("register %s: %w", emp.Email, err)
	}
	s.log.Info(ctx, "employee registered", "email", emp.Email)
	return nil
}

func (s *profileService) encryptPair(nationalID, taxID string) (string, string, error) {
	n, err := s.cipher.Encrypt(nationalID)
	if err != nil {
		return "", "", fmt.Errorf("encrypt national id: %w", err)
	}
	t, err := s.cipher.Encrypt(taxID)
	if err != nil {
		return "", "", fmt.Errorf("encrypt tax id: %w", err)
	}
	return n, t, nil
}
