package gate

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/staffdesk/internal/client/models"
	"github.com/dmitrijs2005/staffdesk/internal/common"
)

// Action is something a session may be allowed to do.
type Action string

const (
	ActionRegister      Action = "register"
	ActionReviewLeave   Action = "leave.review"
	ActionListAllLeave  Action = "leave.list_all"
	ActionSubmitLeave   Action = "leave.submit"
	ActionListOwnLeave  Action = "leave.list_own"
	ActionEditProfile   Action = "profile.edit"
	ActionEditAllFields Action = "profile.edit_all"
)

// Authorize returns common.ErrUnauthorized when s is not a valid session and
// common.ErrForbidden when its role does not allow action. targetID is only
// consulted by ActionEditProfile.
func Authorize(s *models.Session, action Action, targetID models.ID, now time.Time) error {
	if !s.Valid(now) {
		return common.ErrUnauthorized
	}
	if !allowed(s, action, targetID) {
		return fmt.Errorf("%s: %w", action, common.ErrForbidden)
	}
	return nil
}

func allowed(s *models.Session, action Action, targetID models.ID) bool {
	switch action {
	case ActionRegister, ActionReviewLeave, ActionListAllLeave, ActionEditAllFields:
		return s.IsAdmin()
	case ActionSubmitLeave:
		return !s.IsAdmin()
	case ActionListOwnLeave:
		return true
	case ActionEditProfile:
		return isOwnerOrAdmin(s, targetID)
	}
	return false
}

// The Can* helpers report role permission only; they do not look at expiry.

// IsAdmin reports whether s carries the administrator role.
func IsAdmin(s *models.Session) bool { return s.IsAdmin() }

// InDirectory reports whether a user with role r is listed on the dashboard.
// Administrators are not employees and stay off it.
func InDirectory(r models.Role) bool { return r != models.RoleAdmin }

func CanRegister(s *models.Session) bool { return s.IsAdmin() }

func CanReviewLeave(s *models.Session) bool { return s.IsAdmin() }

func CanListAllLeave(s *models.Session) bool { return s.IsAdmin() }

// CanSubmitLeave is false for admins, who do not file leave.
func CanSubmitLeave(s *models.Session) bool { return s != nil && !s.IsAdmin() }

func CanEditProfile(s *models.Session, id models.ID) bool { return isOwnerOrAdmin(s, id) }

// CanEditAllFields tells the full admin edit form from the self-service one.
func CanEditAllFields(s *models.Session) bool { return s.IsAdmin() }
