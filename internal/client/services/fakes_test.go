package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/staffdesk/internal/client/client"
	"github.com/dmitrijs2005/staffdesk/internal/client/models"
	"github.com/dmitrijs2005/staffdesk/internal/cryptox"
)

var testNow = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

// fakeGateway implements client.Gateway for unit tests. Every call is
// counted in Calls by method name.
type fakeGateway struct {
	Calls map[string]int

	Users   []models.RawProfile
	User    *models.RawProfile
	UserErr error

	EditErr        error
	LastEditID     models.ID
	LastEditToken  string
	LastProfileReq client.EditProfileRequest
	LastUserReq    client.EditUserRequest
	LastImage      models.Image
	LastSignup     client.SignupRequest

	Leaves        []models.LeaveRequest
	LeavesErr     error
	Created       *models.LeaveRequest
	CreateErr     error
	LastCreate    client.CreateLeaveRequest
	StatusErr     error
	LastStatusID  models.ID
	LastStatus    models.LeaveStatus
	LastLeaveUser models.ID
}

var _ client.Gateway = (*fakeGateway)(nil)

func newFakeGateway() *fakeGateway {
	return &fakeGateway{Calls: make(map[string]int)}
}

func (f *fakeGateway) total() int {
	n := 0
	for _, c := range f.Calls {
		n += c
	}
	return n
}

func (f *fakeGateway) Login(ctx context.Context, email string, password []byte) (*client.LoginResult, error) {
	f.Calls["Login"]++
	return &client.LoginResult{Token: "t"}, nil
}

func (f *fakeGateway) ListUsers(ctx context.Context) ([]models.RawProfile, error) {
	f.Calls["ListUsers"]++
	return f.Users, f.UserErr
}

func (f *fakeGateway) GetUser(ctx context.Context, id models.ID) (*models.RawProfile, error) {
	f.Calls["GetUser"]++
	if f.UserErr != nil {
		return nil, f.UserErr
	}
	return f.User, nil
}

func (f *fakeGateway) EditProfile(ctx context.Context, token string, id models.ID, req client.EditProfileRequest) error {
	f.Calls["EditProfile"]++
	f.LastEditToken, f.LastEditID, f.LastProfileReq = token, id, req
	return f.EditErr
}

func (f *fakeGateway) EditUser(ctx context.Context, token string, id models.ID, req client.EditUserRequest) error {
	f.Calls["EditUser"]++
	f.LastEditToken, f.LastEditID, f.LastUserReq = token, id, req
	return f.EditErr
}

func (f *fakeGateway) EditImage(ctx context.Context, token string, id models.ID, img models.Image) error {
	f.Calls["EditImage"]++
	f.LastEditToken, f.LastEditID, f.LastImage = token, id, img
	return f.EditErr
}

func (f *fakeGateway) Signup(ctx context.Context, token string, req client.SignupRequest) error {
	f.Calls["Signup"]++
	f.LastEditToken, f.LastSignup = token, req
	return f.EditErr
}

func (f *fakeGateway) ActiveLeave(ctx context.Context) ([]models.LeaveRequest, error) {
	f.Calls["ActiveLeave"]++
	return f.Leaves, f.LeavesErr
}

func (f *fakeGateway) AllLeave(ctx context.Context, token string) ([]models.LeaveRequest, error) {
	f.Calls["AllLeave"]++
	return f.Leaves, f.LeavesErr
}

func (f *fakeGateway) UserLeave(ctx context.Context, token string, userID models.ID) ([]models.LeaveRequest, error) {
	f.Calls["UserLeave"]++
	f.LastLeaveUser = userID
	return f.Leaves, f.LeavesErr
}

func (f *fakeGateway) CreateLeave(ctx context.Context, token string, req client.CreateLeaveRequest) (*models.LeaveRequest, error) {
	f.Calls["CreateLeave"]++
	f.LastCreate = req
	return f.Created, f.CreateErr
}

func (f *fakeGateway) UpdateLeaveStatus(ctx context.Context, token string, id models.ID, status models.LeaveStatus) error {
	f.Calls["UpdateLeaveStatus"]++
	f.LastStatusID, f.LastStatus = id, status
	return f.StatusErr
}

type fakeSessions struct {
	s *models.Session
}

func (f fakeSessions) Current() *models.Session { return f.s }
func (f fakeSessions) Now() time.Time { return testNow }

func userSession(id models.ID) fakeSessions {
	return fakeSessions{s: &models.Session{
		Authenticated: true, Token: "user-token", UserID: id, Role: models.RoleUser, ExpiresAt: testNow.Add(time.Hour),
	}}
}

func adminSession() fakeSessions {
	return fakeSessions{s: &models.Session{
		Authenticated: true, Token: "admin-token", UserID: "admin", Role: models.RoleAdmin, ExpiresAt: testNow.Add(time.Hour),
	}}
}

func testCipher() *cryptox.FieldCipher {
	c, err := cryptox.NewFieldCipherWithKey(make([]byte, 32))
	if err != nil {
		panic(err)
	}
	return c
}

func day(y int, m time.Month, d int) models.Date { return models.NewDate(y, m, d) }
