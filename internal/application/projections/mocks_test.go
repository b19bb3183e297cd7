package projections

import (
	"context"
	"sort"
	"time"

	attendancestore "arena/internal/adapters/storage/attendance"
	invoicestore "arena/internal/adapters/storage/invoice"
	memberstore "arena/internal/adapters/storage/member"
	paymentstore "arena/internal/adapters/storage/payment"
	domainAttendance "arena/internal/domain/attendance"
	"arena/internal/domain/calendar"
	domainInvoice "arena/internal/domain/invoice"
	domainMember "arena/internal/domain/member"
	domainPayment "arena/internal/domain/payment"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func clockAt(y int, month time.Month, d, h, m int) calendar.Clock {
	at := time.Date(y, month, d, h, m, 0, 0, ist)
	return calendar.NewClock(ist, func() time.Time { return at })
}

type mockMemberStore struct {
	members    []domainMember.Member
	lastFilter memberstore.ListFilter
	phoneCalls []string
}

// GetByID returns a seeded member by ID.
func (s *mockMemberStore) GetByID(_ context.Context, id string) (domainMember.Member, error) {
	for _, m := range s.members {
		if m.ID == id {
			return m, nil
		}
	}
	return domainMember.Member{}, domainMember.ErrNotFound
}

// GetByPhone returns the first seeded member with an exact phone match.
func (s *mockMemberStore) GetByPhone(_ context.Context, phone string) (domainMember.Member, error) {
	s.phoneCalls = append(s.phoneCalls, phone)
	for _, m := range s.members {
		if m.Phone == phone {
			return m, nil
		}
	}
	return domainMember.Member{}, domainMember.ErrNotFound
}

// List records the filter and returns seeded members matching its status.
func (s *mockMemberStore) List(_ context.Context, filter memberstore.ListFilter) ([]domainMember.Member, error) {
	s.lastFilter = filter
	var out []domainMember.Member
	for _, m := range s.members {
		if filter.Status == "" || m.Status == filter.Status {
			out = append(out, m)
		}
	}
	return out, nil
}

// Count counts seeded members matching the filter.
func (s *mockMemberStore) Count(_ context.Context, filter memberstore.CountFilter) (int, error) {
	n := 0
	for _, m := range s.members {
		if (filter.Status == "" || m.Status == filter.Status) &&
			(filter.MembershipType == "" || m.MembershipType == filter.MembershipType) {
			n++
		}
	}
	return n, nil
}

type mockAttendanceStore struct {
	records []domainAttendance.Attendance
}

func (s *mockAttendanceStore) inRange(from, to string) []domainAttendance.Attendance {
	var out []domainAttendance.Attendance
	for _, r := range s.records {
		if r.ClassDate >= from && r.ClassDate <= to {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ClassDate != out[j].ClassDate {
			return out[i].ClassDate < out[j].ClassDate
		}
		if out[i].Batch != out[j].Batch {
			return out[i].Batch < out[j].Batch
		}
		return out[i].CheckInTime.Before(out[j].CheckInTime)
	})
	return out
}

// ListByDateRange returns seeded records in range, in store order.
func (s *mockAttendanceStore) ListByDateRange(_ context.Context, from, to string) ([]domainAttendance.Attendance, error) {
	return s.inRange(from, to), nil
}

// ListByMemberID returns a member's seeded records.
func (s *mockAttendanceStore) ListByMemberID(_ context.Context, memberID string) ([]domainAttendance.Attendance, error) {
	var out []domainAttendance.Attendance
	for _, r := range s.records {
		if r.MemberID == memberID {
			out = append(out, r)
		}
	}
	return out, nil
}

// CountDay splits one day's records by check-out state.
func (s *mockAttendanceStore) CountDay(_ context.Context, date string) (attendancestore.DayCounts, error) {
	var c attendancestore.DayCounts
	for _, r := range s.inRange(date, date) {
		c.CheckIns++
		if r.IsCheckedOut() {
			c.CheckOuts++
		}
	}
	return c, nil
}

// CountByDateRange counts seeded records in range.
func (s *mockAttendanceStore) CountByDateRange(_ context.Context, from, to string) (int, error) {
	return len(s.inRange(from, to)), nil
}

// CountCheckInsBetween counts check-ins inside [start, end].
func (s *mockAttendanceStore) CountCheckInsBetween(_ context.Context, start, end time.Time) (int, error) {
	n := 0
	for _, r := range s.records {
		if !r.CheckInTime.Before(start) && !r.CheckInTime.After(end) {
			n++
		}
	}
	return n, nil
}

type mockPaymentStore struct {
	payments   []domainPayment.Payment
	lastFilter paymentstore.ListFilter
	swept      []calendar.Date
}

// List records the filter and returns all seeded payments.
func (s *mockPaymentStore) List(_ context.Context, filter paymentstore.ListFilter) ([]domainPayment.Payment, error) {
	s.lastFilter = filter
	return s.payments, nil
}

// Summary groups seeded payments by status.
func (s *mockPaymentStore) Summary(_ context.Context) (domainPayment.Summary, error) {
	var sum domainPayment.Summary
	for _, p := range s.payments {
		var t *domainPayment.StatusTotals
		switch p.Status {
		case domainPayment.StatusPaid:
			t = &sum.Paid
		case domainPayment.StatusDue:
			t = &sum.Due
		case domainPayment.StatusOverdue:
			t = &sum.Overdue
		default:
			continue
		}
		t.Count++
		t.TotalAmount += p.Amount
	}
	return sum, nil
}

// SumPaidBetween totals payments paid inside [start, end].
func (s *mockPaymentStore) SumPaidBetween(_ context.Context, start, end time.Time) (domainPayment.StatusTotals, error) {
	var t domainPayment.StatusTotals
	for _, p := range s.payments {
		if p.Status == domainPayment.StatusPaid && !p.PaidAt.Before(start) && !p.PaidAt.After(end) {
			t.Count++
			t.TotalAmount += p.Amount
		}
	}
	return t, nil
}

// SweepOverdue flips seeded Due payments dated before today.
func (s *mockPaymentStore) SweepOverdue(_ context.Context, today calendar.Date) (int, error) {
	s.swept = append(s.swept, today)
	n := 0
	for i := range s.payments {
		if s.payments[i].IsOverdueOn(today) {
			s.payments[i].Status = domainPayment.StatusOverdue
			n++
		}
	}
	return n, nil
}

type mockInvoiceStore struct {
	lastFilter invoicestore.HistoryFilter
}

// History records the filter and returns nothing.
func (s *mockInvoiceStore) History(_ context.Context, filter invoicestore.HistoryFilter) ([]domainInvoice.Invoice, error) {
	s.lastFilter = filter
	return nil, nil
}
