package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// LeaveStatus is the approval state of a leave request.
//
//	Pending ──approve──▶ Approved
//	   └─────reject────▶ Rejected
//
// Approved and Rejected are terminal.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "Pending"
	LeaveApproved LeaveStatus = "Approved"
	LeaveRejected LeaveStatus = "Rejected"
)

// ParseLeaveStatus accepts the wire values case-insensitively, including the
// legacy "Reject".
func ParseLeaveStatus(s string) (LeaveStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return LeavePending, nil
	case "approved", "approve":
		return LeaveApproved, nil
	case "rejected", "reject":
		return LeaveRejected, nil
	}
	return "", fmt.Errorf("unknown leave status %q", s)
}

func (s *LeaveStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseLeaveStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// IsTerminal reports whether no further transition is possible.
func (s LeaveStatus) IsTerminal() bool {
	return s == LeaveApproved || s == LeaveRejected
}

// CanTransition reports whether the edge s → to exists.
func (s LeaveStatus) CanTransition(to LeaveStatus) bool {
	return s == LeavePending && to.IsTerminal()
}

// Decision maps an approve/reject choice onto the target status.
func Decision(approve bool) LeaveStatus {
	if approve {
		return LeaveApproved
	}
	return LeaveRejected
}

// DateRange is an inclusive span of days.
type DateRange struct {
	Start Date
	End   Date
}

// Days is the inclusive length of r, or 0 when r is inverted.
func (r DateRange) Days() int {
	if r.End.Before(r.Start.Time) {
		return 0
	}
	return int(r.End.Sub(r.Start.Time).Hours()/24) + 1
}

// Covers reports whether day falls inside r.
func (r DateRange) Covers(day Date) bool {
	return !day.Before(r.Start.Time) && !day.After(r.End.Time)
}

// LeaveOwner is the employee summary embedded in admin and on-leave listings.
type LeaveOwner struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Position string `json:"position"`
	Image    string `json:"image"`
}

// LeaveRequest is a time-off request.
type LeaveRequest struct {
	ID          ID
	OwnerUserID ID
	Period      DateRange
	Reason      string
	Status      LeaveStatus
	Owner       *LeaveOwner

	// PendingSync marks an optimistic row whose id was generated locally
	// and is unknown to the server.
	PendingSync bool
}
