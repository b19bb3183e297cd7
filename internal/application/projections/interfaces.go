package projections

import (
	"context"
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

// MemberStore interface for member queries.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (domainMember.Member, error)
	GetByPhone(ctx context.Context, phone string) (domainMember.Member, error)
	List(ctx context.Context, filter memberstore.ListFilter) ([]domainMember.Member, error)
	Count(ctx context.Context, filter memberstore.CountFilter) (int, error)
}

// AttendanceStore interface for attendance queries.
type AttendanceStore interface {
	ListByDateRange(ctx context.Context, startDate string, endDate string) ([]domainAttendance.Attendance, error)
	ListByMemberID(ctx context.Context, memberID string) ([]domainAttendance.Attendance, error)
	CountDay(ctx context.Context, date string) (attendancestore.DayCounts, error)
	CountByDateRange(ctx context.Context, startDate string, endDate string) (int, error)
	CountCheckInsBetween(ctx context.Context, start, end time.Time) (int, error)
}

// PaymentStore interface for payment queries.
type PaymentStore interface {
	List(ctx context.Context, filter paymentstore.ListFilter) ([]domainPayment.Payment, error)
	Summary(ctx context.Context) (domainPayment.Summary, error)
	SumPaidBetween(ctx context.Context, start, end time.Time) (domainPayment.StatusTotals, error)
	SweepOverdue(ctx context.Context, today calendar.Date) (int, error)
}

// InvoiceStore interface for invoice queries.
type InvoiceStore interface {
	History(ctx context.Context, filter invoicestore.HistoryFilter) ([]domainInvoice.Invoice, error)
}
