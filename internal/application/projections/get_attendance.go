package projections

import (
	"context"
	"fmt"
	"math"

	"arena/internal/domain/apperr"
	domainAttendance "arena/internal/domain/attendance"
	"arena/internal/domain/calendar"
)

// GetAttendanceDeps holds dependencies for the attendance projections.
type GetAttendanceDeps struct {
	AttendanceStore AttendanceStore
	Clock           calendar.Clock
}

// QueryAttendanceToday returns today's check-ins in the civil zone, ordered by batch then check-in time.
func QueryAttendanceToday(ctx context.Context, deps GetAttendanceDeps) ([]domainAttendance.Attendance, error) {
	today := deps.Clock.Today().String()
	return deps.AttendanceStore.ListByDateRange(ctx, today, today)
}

// QueryAttendanceByDate returns the check-ins of one civil date.
// PRE: date has the YYYY-MM-DD shape
// POST: Returns InvalidInput for a malformed date
func QueryAttendanceByDate(ctx context.Context, date string, deps GetAttendanceDeps) ([]domainAttendance.Attendance, error) {
	if !calendar.IsDateString(date) {
		return nil, apperr.InvalidInput("date must be YYYY-MM-DD")
	}
	return deps.AttendanceStore.ListByDateRange(ctx, date, date)
}

// AttendanceRangeQuery carries input for the range projection.
type AttendanceRangeQuery struct {
	DateFrom string
	DateTo   string
}

// QueryAttendanceRange returns check-ins with DateFrom <= date <= DateTo,
// ordered by (date, batch, check-in time).
// PRE: both bounds have the YYYY-MM-DD shape and DateFrom <= DateTo
func QueryAttendanceRange(ctx context.Context, query AttendanceRangeQuery, deps GetAttendanceDeps) ([]domainAttendance.Attendance, error) {
	if !calendar.IsDateString(query.DateFrom) || !calendar.IsDateString(query.DateTo) {
		return nil, apperr.InvalidInput("date_from and date_to must be YYYY-MM-DD")
	}
	if query.DateFrom > query.DateTo {
		return nil, apperr.InvalidInput("date_from must be <= date_to")
	}
	return deps.AttendanceStore.ListByDateRange(ctx, query.DateFrom, query.DateTo)
}

// AttendanceSummary carries the dashboard attendance cards.
type AttendanceSummary struct {
	TodayCheckIns  int
	CurrentlyInGym int
	ThisWeek       int     // check-ins over the last seven civil days, today included
	AverageDaily   float64 // ThisWeek / 7, one decimal
}

// QueryAttendanceSummary returns today's and this week's attendance figures.
func QueryAttendanceSummary(ctx context.Context, deps GetAttendanceDeps) (AttendanceSummary, error) {
	today := deps.Clock.Today()
	counts, err := deps.AttendanceStore.CountDay(ctx, today.String())
	if err != nil {
		return AttendanceSummary{}, fmt.Errorf("count today: %w", err)
	}
	week, err := deps.AttendanceStore.CountByDateRange(ctx, today.AddDays(-6).String(), today.String())
	if err != nil {
		return AttendanceSummary{}, fmt.Errorf("count week: %w", err)
	}
	return AttendanceSummary{
		TodayCheckIns:  counts.CheckIns,
		CurrentlyInGym: counts.CurrentlyIn(),
		ThisWeek:       week,
		AverageDaily:   roundTenth(float64(week) / 7),
	}, nil
}

// GetMemberAttendanceStatsDeps holds dependencies for the member stats projection.
type GetMemberAttendanceStatsDeps struct {
	MemberStore     MemberStore
	AttendanceStore AttendanceStore
	Clock           calendar.Clock
}

// MemberAttendanceStats summarises one member's visits.
type MemberAttendanceStats struct {
	TotalVisits        int
	VisitsThisMonth    int
	AvgDurationMinutes *float64 // nil when no visit has a check-out
}

// QueryMemberAttendanceStats returns visit counts and the average workout length for a member.
// POST: Returns NotFound if the member does not exist
func QueryMemberAttendanceStats(ctx context.Context, memberID string, deps GetMemberAttendanceStatsDeps) (MemberAttendanceStats, error) {
	if _, err := getMember(ctx, deps.MemberStore, memberID); err != nil {
		return MemberAttendanceStats{}, err
	}
	records, err := deps.AttendanceStore.ListByMemberID(ctx, memberID)
	if err != nil {
		return MemberAttendanceStats{}, err
	}

	today := deps.Clock.Today()
	monthStart, monthEnd := today.FirstOfMonth().String(), today.String()

	stats := MemberAttendanceStats{TotalVisits: len(records)}
	var totalMinutes float64
	var finished int
	for _, r := range records {
		if r.ClassDate >= monthStart && r.ClassDate <= monthEnd {
			stats.VisitsThisMonth++
		}
		if r.IsCheckedOut() {
			totalMinutes += r.Duration().Minutes()
			finished++
		}
	}
	if finished > 0 {
		avg := roundTenth(totalMinutes / float64(finished))
		stats.AvgDurationMinutes = &avg
	}
	return stats, nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
