package client

import (
	"context"

	"github.com/dmitrijs2005/staffdesk/internal/client/models"
)

// Gateway is the contract of the remote REST API. Calls that need
// authentication take the bearer token explicitly; the session that owns it
// lives elsewhere.
type Gateway interface {
	Login(ctx context.Context, email string, password []byte) (*LoginResult, error)

	ListUsers(ctx context.Context) ([]models.RawProfile, error)
	GetUser(ctx context.Context, id models.ID) (*models.RawProfile, error)
	EditProfile(ctx context.Context, token string, id models.ID, req EditProfileRequest) error
	EditUser(ctx context.Context, token string, id models.ID, req EditUserRequest) error
	EditImage(ctx context.Context, token string, id models.ID, img models.Image) error
	Signup(ctx context.Context, token string, req SignupRequest) error

	ActiveLeave(ctx context.Context) ([]models.LeaveRequest, error)
	AllLeave(ctx context.Context, token string) ([]models.LeaveRequest, error)
	UserLeave(ctx context.Context, token string, userID models.ID) ([]models.LeaveRequest, error)
	// CreateLeave returns the created record, or nil when the server did
	// not send one back.
	CreateLeave(ctx context.Context, token string, req CreateLeaveRequest) (*models.LeaveRequest, error)
	UpdateLeaveStatus(ctx context.Context, token string, id models.ID, status models.LeaveStatus) error
}

// LoginResult is the body of a successful POST /users/login.
type LoginResult struct {
	Token  string    `json:"token"`
	UserID models.ID `json:"userId"`
	Role   string    `json:"role"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
}

type EditProfileRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password,omitempty"`
	NationalID string `json:"nationalId"`
	TaxID      string `json:"taxId"`
	Position   string `json:"position"`
}

type EditUserRequest struct {
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
}

// SignupRequest is sent as a multipart form. NationalID and TaxID must
// already be encrypted.
type SignupRequest struct {
	Name          string
	Email         string
	Password      string
	Position      string
	NationalID    string
	TaxID         string
	DateOfJoining models.Date
	Image         *models.Image
}

type CreateLeaveRequest struct {
	Start  models.Date `json:"start"`
	End    models.Date `json:"end"`
	Reason string      `json:"reason"`
}
