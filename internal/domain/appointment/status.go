package appointment

import "github.com/appointly/appointment-scheduler/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no-show"
)

// transitions lists the legal next states per current state. Completed,
// cancelled and no-show are terminal.
var transitions = map[Status][]Status{
	StatusScheduled: {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return Status(s), nil
	}
	return "", httperr.ErrBusinessf("invalid_status", "unknown status %q", s)
}

func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// BlocksSlot reports whether an appointment in this status still occupies
// its staff member's time for conflict checking.
func (s Status) BlocksSlot() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted:
		return true
	}
	return false
}

// CanTransition validates a status change against the lifecycle machine.
func CanTransition(from, to Status) error {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return httperr.ErrBusinessf(
		"invalid_transition",
		"cannot move appointment from %s to %s", from, to,
	)
}

func InitialStatus() Status {
	return StatusScheduled
}
