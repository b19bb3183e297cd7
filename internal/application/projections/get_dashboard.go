package projections

import (
	"context"
	"fmt"

	memberstore "arena/internal/adapters/storage/member"
	"arena/internal/domain/apperr"
	"arena/internal/domain/calendar"
	domainMember "arena/internal/domain/member"
)

// GetDashboardQuery carries the optional reporting range.
// The range applies only when both bounds are given.
type GetDashboardQuery struct {
	DateFrom string
	DateTo   string
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	MemberStore     MemberStore
	AttendanceStore AttendanceStore
	PaymentStore    PaymentStore
	Clock           calendar.Clock
}

// DashboardRange carries the in-range aggregates.
type DashboardRange struct {
	DateFrom         string
	DateTo           string
	AttendanceCount  int // check-ins whose instant falls inside the civil-zone range
	PaymentsReceived int // amount of payments whose paid_at falls inside the range
	PaymentsCount    int
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	ActiveMembers    int
	InactiveMembers  int
	RegularCount     int
	PTCount          int
	PendingFees      int // Due + Overdue amount
	TotalCollections int // Paid amount
	TodayCheckIns    int
	TodayCheckOuts   int
	TodayCurrentlyIn int
	Range            *DashboardRange
}

// QueryGetDashboard returns the admin dashboard figures.
// PRE: when both range bounds are set they must be YYYY-MM-DD
// POST: Range is nil unless both bounds were supplied
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (DashboardResult, error) {
	var res DashboardResult
	counts := []struct {
		filter memberstore.CountFilter
		dst    *int
	}{
		{memberstore.CountFilter{Status: domainMember.StatusActive}, &res.ActiveMembers},
		{memberstore.CountFilter{Status: domainMember.StatusInactive}, &res.InactiveMembers},
		{memberstore.CountFilter{MembershipType: domainMember.TypeRegular}, &res.RegularCount},
		{memberstore.CountFilter{MembershipType: domainMember.TypePT}, &res.PTCount},
	}
	for _, c := range counts {
		n, err := deps.MemberStore.Count(ctx, c.filter)
		if err != nil {
			return DashboardResult{}, fmt.Errorf("count members: %w", err)
		}
		*c.dst = n
	}

	summary, err := deps.PaymentStore.Summary(ctx)
	if err != nil {
		return DashboardResult{}, fmt.Errorf("payment summary: %w", err)
	}
	res.PendingFees = summary.Due.TotalAmount + summary.Overdue.TotalAmount
	res.TotalCollections = summary.Paid.TotalAmount

	day, err := deps.AttendanceStore.CountDay(ctx, deps.Clock.Today().String())
	if err != nil {
		return DashboardResult{}, fmt.Errorf("count today: %w", err)
	}
	res.TodayCheckIns = day.CheckIns
	res.TodayCheckOuts = day.CheckOuts
	res.TodayCurrentlyIn = day.CurrentlyIn()

	if query.DateFrom == "" || query.DateTo == "" {
		return res, nil
	}
	r, err := dashboardRange(ctx, query, deps)
	if err != nil {
		return DashboardResult{}, err
	}
	res.Range = &r
	return res, nil
}

func dashboardRange(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (DashboardRange, error) {
	from, errFrom := calendar.ParseDate(query.DateFrom)
	to, errTo := calendar.ParseDate(query.DateTo)
	if errFrom != nil || errTo != nil {
		return DashboardRange{}, apperr.InvalidInput("date_from and date_to must be YYYY-MM-DD")
	}
	start, _ := deps.Clock.DayBounds(from)
	_, end := deps.Clock.DayBounds(to)

	attended, err := deps.AttendanceStore.CountCheckInsBetween(ctx, start, end)
	if err != nil {
		return DashboardRange{}, fmt.Errorf("count range check-ins: %w", err)
	}
	paid, err := deps.PaymentStore.SumPaidBetween(ctx, start, end)
	if err != nil {
		return DashboardRange{}, fmt.Errorf("sum range payments: %w", err)
	}
	return DashboardRange{
		DateFrom:         query.DateFrom,
		DateTo:           query.DateTo,
		AttendanceCount:  attended,
		PaymentsReceived: paid.TotalAmount,
		PaymentsCount:    paid.Count,
	}, nil
}
