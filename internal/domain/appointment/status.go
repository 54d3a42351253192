package appointment

import "github.com/cliniflow/clinic-manager/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal states admit no further transition.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ===============================
// Validations
// ===============================

// CanConfirm: only a freshly scheduled appointment can be confirmed.
func CanConfirm(current Status) error {
	if current != StatusScheduled {
		return httperr.ErrBusiness(httperr.CodeInvalidState)
	}
	return nil
}

// CanComplete: the appointment must have been confirmed first.
func CanComplete(current Status) error {
	if current != StatusConfirmed {
		return httperr.ErrBusiness(httperr.CodeInvalidState)
	}
	return nil
}

// CanCancel: any non-terminal state may be cancelled.
func CanCancel(current Status) error {
	if current.Terminal() {
		return httperr.ErrBusiness(httperr.CodeInvalidState)
	}
	return nil
}

func InitialStatus() Status {
	return StatusScheduled
}
