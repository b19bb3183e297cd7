package projections

import (
	"context"
	"fmt"

	paymentstore "arena/internal/adapters/storage/payment"
	"arena/internal/domain/calendar"
	domainPayment "arena/internal/domain/payment"
)

// Payment list bounds.
const (
	DefaultPaymentListLimit = 1000
	MaxPaymentListLimit     = 1000
)

// GetFeesDeps holds dependencies for the fee projections.
type GetFeesDeps struct {
	PaymentStore PaymentStore
	Clock        calendar.Clock
}

// QueryFeesSummary returns Paid/Due/Overdue counts and totals.
// Due payments past their due date are swept to Overdue first, so the
// figures always reflect today's civil date.
func QueryFeesSummary(ctx context.Context, deps GetFeesDeps) (domainPayment.Summary, error) {
	if _, err := deps.PaymentStore.SweepOverdue(ctx, deps.Clock.Today()); err != nil {
		return domainPayment.Summary{}, fmt.Errorf("sweep overdue: %w", err)
	}
	return deps.PaymentStore.Summary(ctx)
}

// GetPaymentsQuery carries input for the payment list projection.
type GetPaymentsQuery struct {
	MemberID string
	Status   string
	Limit    int // callers default an absent limit to DefaultPaymentListLimit
}

// QueryGetPayments lists payments newest first.
// POST: Limit is clamped to [1, MaxPaymentListLimit]
func QueryGetPayments(ctx context.Context, query GetPaymentsQuery, deps GetFeesDeps) ([]domainPayment.Payment, error) {
	return deps.PaymentStore.List(ctx, paymentstore.ListFilter{
		MemberID: query.MemberID,
		Status:   query.Status,
		Limit:    clamp(query.Limit, 1, MaxPaymentListLimit),
	})
}
