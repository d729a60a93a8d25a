package services

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/staffdesk/internal/client/client"
	"github.com/dmitrijs2005/staffdesk/internal/client/gate"
	"github.com/dmitrijs2005/staffdesk/internal/client/models"
	"github.com/dmitrijs2005/staffdesk/internal/logging"
	"github.com/dmitrijs2005/staffdesk/internal/validation"
	"github.com/google/uuid"
)

// LeaveService drives the leave request workflow and keeps the last listed
// requests, newest first.
//
// Contract:
//   - Submit validates locally, creates the request and prepends it to the cache.
//   - ListOwn and ListAll replace the cache with the server's list reversed.
//   - SetStatus decides a pending request; the cache is left untouched, but a
//     request decided here is refused again until the next list refresh.
//   - Active lists who is on leave today.
type LeaveService interface {
	Submit(ctx context.Context, period models.DateRange, reason string) (models.LeaveRequest, error)
	ListOwn(ctx context.Context) ([]models.LeaveRequest, error)
	ListAll(ctx context.Context) ([]models.LeaveRequest, error)
	SetStatus(ctx context.Context, id models.ID, approve bool) error
	Active(ctx context.Context) ([]models.LeaveRequest, error)
	Cached() []models.LeaveRequest
}

type leaveService struct {
	gw       client.Gateway
	sessions SessionSource
	log      logging.Logger

	mu    sync.RWMutex
	cache []models.LeaveRequest
	// decided holds statuses set since the cache was last replaced.
	decided map[models.ID]models.LeaveStatus
}

func NewLeaveService(gw client.Gateway, sessions SessionSource, log logging.Logger) LeaveService {
	return &leaveService{
		gw:       gw,
		sessions: sessions,
		log:      log.With("component", "leave"),
		decided:  make(map[models.ID]models.LeaveStatus),
	}
}

func validateLeave(period models.DateRange, reason string) error {
	v := validation.Violations{}
	if period.Start.IsZero() {
		validation.Required("start", "", v)
	}
	if period.End.IsZero() {
		validation.Required("end", "", v)
	}
	if !period.Start.IsZero() && !period.End.IsZero() && period.End.Before(period.Start.Time) {
		v["end"] = "must not be before start"
	}
	validation.Required("reason", reason, v)
	validation.MinLen("reason", reason, 2, v)
	return v.Err()
}

func (s *leaveService) Submit(ctx context.Context, period models.DateRange, reason string) (models.LeaveRequest, error) {
	sess, err := authorize(s.sessions, gate.ActionSubmitLeave, "")
	if err != nil {
		return models.LeaveRequest{}, err
	}
	if err := validateLeave(period, reason); err != nil {
		return models.LeaveRequest{}, err
	}

	created, err := s.gw.CreateLeave(ctx, sess.Token, client.CreateLeaveRequest{
		Start:  period.Start,
		End:    period.End,
		Reason: reason,
	})
	if err != nil {
		return models.LeaveRequest{}, fmt.Errorf("submit leave: %w", err)
	}

	var lr models.LeaveRequest
	if created != nil && created.ID != "" {
		lr = *created
		if lr.OwnerUserID == "" {
			lr.OwnerUserID = sess.UserID
		}
	} else {
		lr = models.LeaveRequest{
			ID:          models.ID(uuid.NewString()),
			OwnerUserID: sess.UserID,
			Period:      period,
			Reason:      reason,
			Status:      models.LeavePending,
			PendingSync: true,
		}
		s.log.Warn(ctx, "server returned no leave record, keeping local placeholder", "placeholder_id", lr.ID)
	}

	s.mu.Lock()
	s.cache = append([]models.LeaveRequest{lr}, s.cache...)
	s.mu.Unlock()

	s.log.Info(ctx, "leave submitted", "id", lr.ID, "days", lr.Period.Days())
	return lr, nil
}

func (s *leaveService) ListOwn(ctx context.Context) ([]models.LeaveRequest, error) {
	sess, err := authorize(s.sessions, gate.ActionListOwnLeave, "")
	if err != nil {
		return nil, err
	}
	list, err := s.gw.UserLeave(ctx, sess.Token, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("list own leave: %w", err)
	}
	return s.replace(list), nil
}

func (s *leaveService) ListAll(ctx context.Context) ([]models.LeaveRequest, error) {
	sess, err := authorize(s.sessions, gate.ActionListAllLeave, "")
	if err != nil {
		return nil, err
	}
	list, err := s.gw.AllLeave(ctx, sess.Token)
	if err != nil {
		return nil, fmt.Errorf("list all leave: %w", err)
	}
	return s.replace(list), nil
}

// replace stores list newest first and returns a copy.
func (s *leaveService) replace(list []models.LeaveRequest) []models.LeaveRequest {
	rev := slices.Clone(list)
	slices.Reverse(rev)

	s.mu.Lock()
	s.cache = rev
	clear(s.decided)
	s.mu.Unlock()
	return slices.Clone(rev)
}

func (s *leaveService) SetStatus(ctx context.Context, id models.ID, approve bool) error {
	sess, err := authorize(s.sessions, gate.ActionReviewLeave, "")
	if err != nil {
		return err
	}

	to := models.Decision(approve)
	if status, ok := s.decidedStatus(id); ok {
		return fmt.Errorf("leave %s is %s: %w", id, status, ErrTerminalStatus)
	}
	if cached, ok := s.find(id); ok {
		if cached.PendingSync {
			return fmt.Errorf("leave %s: %w", id, ErrNotSynced)
		}
		if !cached.Status.CanTransition(to) {
			return fmt.Errorf("leave %s is %s: %w", id, cached.Status, ErrTerminalStatus)
		}
	}

	if err := s.gw.UpdateLeaveStatus(ctx, sess.Token, id, to); err != nil {
		return fmt.Errorf("set leave status: %w", err)
	}
	s.mu.Lock()
	s.decided[id] = to
	s.mu.Unlock()
	s.log.Info(ctx, "leave decided", "id", id, "status", to)
	return nil
}

func (s *leaveService) Active(ctx context.Context) ([]models.LeaveRequest, error) {
	list, err := s.gw.ActiveLeave(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active leave: %w", err)
	}
	return list, nil
}

func (s *leaveService) Cached() []models.LeaveRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cache)
}

func (s *leaveService) decidedStatus(id models.ID) (models.LeaveStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.decided[id]
	return status, ok
}

func (s *leaveService) find(id models.ID) (models.LeaveRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, lr := range s.cache {
		if lr.ID == id {
			return lr, true
		}
	}
	return models.LeaveRequest{}, false
}
