package payment

import (
	"context"
	"time"

	"arena/internal/domain/calendar"
	domain "arena/internal/domain/payment"
)

// Store persists Payment state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Payment, error)
	Save(ctx context.Context, value domain.Payment) error
	List(ctx context.Context, filter ListFilter) ([]domain.Payment, error)
	MarkPaid(ctx context.Context, id string, memberID string, at time.Time) (domain.Payment, error)
	SweepOverdue(ctx context.Context, today calendar.Date) (int, error)
	Summary(ctx context.Context) (domain.Summary, error)
	SumPaidBetween(ctx context.Context, start, end time.Time) (domain.StatusTotals, error)
	OutstandingByMember(ctx context.Context) ([]MemberBalance, error)
}

// ListFilter carries filtering parameters for List operations.
// Payments are always ordered newest first.
type ListFilter struct {
	MemberID string
	Status   string
	Limit    int
}

// MemberBalance is a member's total of Due and Overdue amounts.
type MemberBalance struct {
	MemberID string
	Amount   int
}
