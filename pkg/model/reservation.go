package model

import (
	"strings"
	"time"
)

// Status is the stored lifecycle state of a reservation. The set is closed:
// a reservation is created CONFIRMED and ends in exactly one of the two
// terminal states.
type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// ParseStatus resolves a client-supplied status token case-insensitively.
// Unknown tokens return ok=false; callers decide how to surface that.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(StatusConfirmed):
		return StatusConfirmed, true
	case string(StatusCancelled):
		return StatusCancelled, true
	case string(StatusCompleted):
		return StatusCompleted, true
	default:
		return "", false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// ViewStatus is the presentation-time projection of a reservation's state.
// It is derived on read and never persisted.
type ViewStatus string

const (
	ViewUpcoming  ViewStatus = "UPCOMING"
	ViewActive    ViewStatus = "ACTIVE"
	ViewCompleted ViewStatus = "COMPLETED"
	ViewCancelled ViewStatus = "CANCELLED"
)

// DeriveViewStatus maps a stored status and date window onto the display
// status. Terminal states pass through unchanged; a CONFIRMED reservation
// whose window already ended reads as COMPLETED even before the sweeper
// persists the transition.
func DeriveViewStatus(status Status, startDate, endDate, today time.Time) ViewStatus {
	switch status {
	case StatusCancelled:
		return ViewCancelled
	case StatusCompleted:
		return ViewCompleted
	}

	switch {
	case endDate.Before(today):
		return ViewCompleted
	case startDate.After(today):
		return ViewUpcoming
	default:
		return ViewActive
	}
}

type Reservation struct {
	ID         string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Reference  string     `json:"reference,omitempty" bson:"reference" validate:"omitempty"`
	CarID      string     `json:"car_id" bson:"car_id" validate:"required,mongodb"`
	UserID     string     `json:"user_id" bson:"user_id" validate:"required,min=1,max=100"`
	StartDate  time.Time  `json:"start_date" bson:"start_date" validate:"required"`
	EndDate    time.Time  `json:"end_date" bson:"end_date" validate:"required,gtefield=StartDate"`
	Amount     float64    `json:"amount" bson:"amount" validate:"omitempty,gte=0"`
	Status     Status     `json:"status" bson:"status" validate:"omitempty,oneof=CONFIRMED CANCELLED COMPLETED"`
	ViewStatus ViewStatus `json:"view_status,omitempty" bson:"-"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt  time.Time  `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// ReservationUpdate carries a partial update. Nil/zero fields are left
// untouched by the merge; Reference is deliberately absent because it is
// immutable after creation.
type ReservationUpdate struct {
	CarID     string     `json:"car_id,omitempty" validate:"omitempty,mongodb"`
	StartDate *time.Time `json:"start_date,omitempty" validate:"omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty" validate:"omitempty"`
	Amount    *float64   `json:"amount,omitempty" validate:"omitempty,gte=0"`
	Status    string     `json:"status,omitempty" validate:"omitempty"`
}

// DateOnly truncates t to a UTC calendar date. Reservation windows are
// whole days; all comparisons happen on truncated values.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WindowDays returns the billable length of [start, end] in days, never
// below one. A same-day reservation bills a full day.
func WindowDays(start, end time.Time) int {
	days := int(DateOnly(end).Sub(DateOnly(start)).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return days
}
