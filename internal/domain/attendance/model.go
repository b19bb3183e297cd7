package attendance

import (
	"errors"
	"time"

	"arena/internal/domain/batch"
	"arena/internal/domain/calendar"
)

// Domain errors
var (
	ErrAlreadyCheckedOut = errors.New("already checked out")
	ErrNotFound          = errors.New("attendance not found")
	ErrDuplicateDay      = errors.New("attendance already recorded for this member and day")
)

// Attendance holds state for the concept.
// At most one record exists per (MemberID, ClassDate).
type Attendance struct {
	ID           string
	MemberID     string
	MemberName   string // denormalized at check-in
	MemberPhone  string // denormalized at check-in
	CheckInTime  time.Time
	CheckOutTime time.Time
	ClassDate    string // YYYY-MM-DD in the civil zone
	Batch        string
}

// Validate checks if the Attendance has valid data.
// PRE: Attendance struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: MemberID must not be empty, CheckInTime must be set
func (a *Attendance) Validate() error {
	if a.MemberID == "" {
		return errors.New("attendance must be associated with a member")
	}
	if a.CheckInTime.IsZero() {
		return errors.New("check-in time must be set")
	}
	if !calendar.IsDateString(a.ClassDate) {
		return errors.New("class date must be YYYY-MM-DD")
	}
	if !batch.IsValid(a.Batch) {
		return errors.New("batch must be 'Morning', 'Evening', or 'Ladies'")
	}
	if !a.CheckOutTime.IsZero() && a.CheckOutTime.Before(a.CheckInTime) {
		return errors.New("check-out time cannot be before check-in time")
	}
	return nil
}

// IsCheckedOut returns true if the member has checked out.
// PRE: Attendance is initialized
// POST: Returns boolean indicating check-out status
func (a *Attendance) IsCheckedOut() bool {
	return !a.CheckOutTime.IsZero()
}

// CheckOut records the check-out instant. A record is checked out at most once.
// PRE: Attendance is not checked out
// POST: CheckOutTime = at
func (a *Attendance) CheckOut(at time.Time) error {
	if a.IsCheckedOut() {
		return ErrAlreadyCheckedOut
	}
	a.CheckOutTime = at
	return nil
}

// Duration returns the duration of a completed session.
// PRE: Attendance is checked out
// POST: Returns CheckOutTime - CheckInTime, or zero if still checked in
func (a *Attendance) Duration() time.Duration {
	if !a.IsCheckedOut() {
		return 0
	}
	return a.CheckOutTime.Sub(a.CheckInTime)
}

// CapacityExceeded reports whether a batch that already holds count check-ins
// for the day is full. A missing capacity entry means no limit.
func CapacityExceeded(capacity map[string]int, batchName string, count int) (limit int, full bool) {
	limit, ok := capacity[batchName]
	if !ok || limit <= 0 {
		return 0, false
	}
	return limit, count >= limit
}
