package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/staffdesk/internal/client/client"
	"github.com/dmitrijs2005/staffdesk/internal/client/gate"
	"github.com/dmitrijs2005/staffdesk/internal/client/models"
	"github.com/dmitrijs2005/staffdesk/internal/logging"
)

// DirectoryService backs the dashboard: the employee list and who is away.
type DirectoryService interface {
	Employees(ctx context.Context) ([]models.EmployeeProfile, error)
	OnLeave(ctx context.Context) ([]models.LeaveRequest, error)
}

type directoryService struct {
	gw     client.Gateway
	leave  LeaveService
	cipher Cipher
	log    logging.Logger
}

func NewDirectoryService(gw client.Gateway, leave LeaveService, cipher Cipher, log logging.Logger) DirectoryService {
	return &directoryService{gw: gw, leave: leave, cipher: cipher, log: log.With("component", "directory")}
}

// Employees lists every non-admin user.
func (s *directoryService) Employees(ctx context.Context) ([]models.EmployeeProfile, error) {
	raw, err := s.gw.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	out := make([]models.EmployeeProfile, 0, len(raw))
	for _, r := range raw {
		p := reveal(ctx, s.cipher, s.log, r)
		if !gate.InDirectory(p.Role) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *directoryService) OnLeave(ctx context.Context) ([]models.LeaveRequest, error) {
	return s.leave.Active(ctx)
}

// Search keeps the profiles whose name contains query, ignoring case. A
// blank query keeps everything.
func Search(list []models.EmployeeProfile, query string) []models.EmployeeProfile {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list
	}
	out := make([]models.EmployeeProfile, 0, len(list))
	for _, p := range list {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out
}
