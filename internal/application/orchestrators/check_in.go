package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"arena/internal/domain/apperr"
	"arena/internal/domain/attendance"
	"arena/internal/domain/batch"
	"arena/internal/domain/calendar"
	"arena/internal/domain/member"
)

// CheckInMemberStore is the member persistence needed by check-in.
type CheckInMemberStore interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
	SetLastAttendance(ctx context.Context, id string, d calendar.Date) error
}

// CheckInAttendanceStore is the attendance persistence needed by check-in.
type CheckInAttendanceStore interface {
	GetByMemberAndDate(ctx context.Context, memberID string, date string) (attendance.Attendance, error)
	CountByDateAndBatch(ctx context.Context, date string, batch string) (int, error)
	Insert(ctx context.Context, a attendance.Attendance) error
}

// CheckInInput carries input for the check-in orchestrator.
type CheckInInput struct {
	MemberID string
}

// CheckInDeps holds dependencies for CheckIn.
type CheckInDeps struct {
	MemberStore     CheckInMemberStore
	AttendanceStore CheckInAttendanceStore
	Clock           calendar.Clock
	Capacity        map[string]int // per-batch daily limit; nil means unlimited
	NewID           func() string
}

const (
	msgAlreadyCheckedIn = "Already checked in today. One check-in per day allowed."
	msgBatchFull        = "Batch full. %s batch has reached capacity (%d). Try another batch."
)

// ExecuteCheckIn records today's check-in for a member.
// PRE: MemberID refers to an existing member
// POST: Attendance record created with the civil date and the batch of the
// check-in instant; member.LastAttendance = today
// INVARIANT: at most one record per (member, civil date); the unique index
// rejects a concurrent duplicate that slips past the lookup
func ExecuteCheckIn(ctx context.Context, input CheckInInput, deps CheckInDeps) (attendance.Attendance, error) {
	m, err := loadMember(ctx, deps.MemberStore, input.MemberID)
	if err != nil {
		return attendance.Attendance{}, err
	}

	now := deps.Clock.Now()
	today := calendar.DateOf(now)
	date := today.String()
	slot := batch.For(now)

	_, err = deps.AttendanceStore.GetByMemberAndDate(ctx, m.ID, date)
	if err == nil {
		return attendance.Attendance{}, apperr.Conflict(msgAlreadyCheckedIn)
	}
	if !errors.Is(err, attendance.ErrNotFound) {
		return attendance.Attendance{}, err
	}

	if limit, ok := deps.Capacity[slot]; ok && limit > 0 {
		count, err := deps.AttendanceStore.CountByDateAndBatch(ctx, date, slot)
		if err != nil {
			return attendance.Attendance{}, err
		}
		if _, full := attendance.CapacityExceeded(deps.Capacity, slot, count); full {
			return attendance.Attendance{}, apperr.Conflict(msgBatchFull, slot, limit)
		}
	}

	a := attendance.Attendance{
		ID:          idGenerator(deps.NewID)(),
		MemberID:    m.ID,
		MemberName:  m.Name,
		MemberPhone: m.Phone,
		CheckInTime: now,
		ClassDate:   date,
		Batch:       slot,
	}
	if err := a.Validate(); err != nil {
		return attendance.Attendance{}, err
	}
	if err := deps.AttendanceStore.Insert(ctx, a); err != nil {
		if errors.Is(err, attendance.ErrDuplicateDay) {
			return attendance.Attendance{}, apperr.Conflict(msgAlreadyCheckedIn)
		}
		return attendance.Attendance{}, err
	}

	if err := deps.MemberStore.SetLastAttendance(ctx, m.ID, today); err != nil {
		return attendance.Attendance{}, err
	}

	slog.Info("checkin_event", "event", "member_checked_in", "member_id", m.ID, "name", m.Name, "date", date, "batch", slot)
	return a, nil
}

// CheckOutAttendanceStore is the attendance persistence needed by check-out.
type CheckOutAttendanceStore interface {
	GetByID(ctx context.Context, id string) (attendance.Attendance, error)
	GetByMemberAndDate(ctx context.Context, memberID string, date string) (attendance.Attendance, error)
	CheckOut(ctx context.Context, id string, at time.Time) error
}

// CheckOutDeps holds dependencies for CheckOut.
type CheckOutDeps struct {
	MemberStore     MemberGetter
	AttendanceStore CheckOutAttendanceStore
	Clock           calendar.Clock
}

// ExecuteCheckOut records the check-out for today's check-in.
// PRE: the member checked in today and has not checked out
// POST: CheckOutTime = now on today's record
func ExecuteCheckOut(ctx context.Context, memberID string, deps CheckOutDeps) (attendance.Attendance, error) {
	m, err := loadMember(ctx, deps.MemberStore, memberID)
	if err != nil {
		return attendance.Attendance{}, err
	}

	now := deps.Clock.Now()
	a, err := deps.AttendanceStore.GetByMemberAndDate(ctx, m.ID, calendar.DateOf(now).String())
	if errors.Is(err, attendance.ErrNotFound) {
		return attendance.Attendance{}, apperr.InvalidState("No check-in found for today. Check in first.")
	}
	if err != nil {
		return attendance.Attendance{}, err
	}
	if a.IsCheckedOut() {
		return attendance.Attendance{}, apperr.InvalidState("Already checked out today.")
	}

	if err := deps.AttendanceStore.CheckOut(ctx, a.ID, now); err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedOut) {
			return attendance.Attendance{}, apperr.InvalidState("Already checked out today.")
		}
		return attendance.Attendance{}, err
	}
	updated, err := deps.AttendanceStore.GetByID(ctx, a.ID)
	if err != nil {
		return attendance.Attendance{}, err
	}

	slog.Info("checkin_event", "event", "member_checked_out", "member_id", m.ID, "attendance_id", a.ID, "minutes", int(updated.Duration().Minutes()))
	return updated, nil
}

// AttendanceDeleter removes an attendance record.
type AttendanceDeleter interface {
	Delete(ctx context.Context, id string) error
}

// ExecuteDeleteAttendance removes a check-in record (admin correction).
// POST: the record no longer exists; member.LastAttendance is left as is
func ExecuteDeleteAttendance(ctx context.Context, attendanceID string, store AttendanceDeleter) error {
	err := store.Delete(ctx, attendanceID)
	if errors.Is(err, attendance.ErrNotFound) {
		return apperr.NotFound("Attendance record not found")
	}
	if err != nil {
		return err
	}
	slog.Info("checkin_event", "event", "attendance_deleted", "attendance_id", attendanceID)
	return nil
}
