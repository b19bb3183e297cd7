package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"arena/internal/domain/apperr"
	"arena/internal/domain/calendar"
	"arena/internal/domain/notification"
	"arena/internal/domain/payment"
)

// PaymentSaver persists a payment.
type PaymentSaver interface {
	Save(ctx context.Context, p payment.Payment) error
}

// LogMonthlyInput carries a monthly payment to record as already Paid.
type LogMonthlyInput struct {
	MemberID    string
	Period      string // YYYY-MM
	Amount      int
	PaymentDate string // YYYY-MM-DD; empty means today
}

// LogMonthlyDeps holds dependencies for LogMonthly.
type LogMonthlyDeps struct {
	MemberStore  MemberGetter
	PaymentStore PaymentSaver
	Clock        calendar.Clock
	Fees         payment.FeeSchedule
	NewID        func() string
}

// ExecuteLogMonthly records a monthly fee that was paid at the desk.
// PRE: Amount is one of the two monthly tiers
// POST: a Paid monthly payment exists whose due date and paid-at are both
// noon UTC of PaymentDate
func ExecuteLogMonthly(ctx context.Context, input LogMonthlyInput, deps LogMonthlyDeps) (payment.Payment, error) {
	m, err := loadMember(ctx, deps.MemberStore, input.MemberID)
	if err != nil {
		return payment.Payment{}, err
	}
	if !deps.Fees.IsMonthlyTier(input.Amount) {
		return payment.Payment{}, apperr.InvalidInput("Amount must be %d (Regular) or %d (PT)", deps.Fees.MonthlyRegular, deps.Fees.MonthlyPT)
	}

	payDate := deps.Clock.Today()
	if input.PaymentDate != "" {
		d, err := calendar.ParseDate(input.PaymentDate)
		if err != nil {
			return payment.Payment{}, apperr.InvalidInput("payment_date must be YYYY-MM-DD")
		}
		payDate = d
	}
	if !payment.IsPeriod(input.Period) {
		return payment.Payment{}, apperr.InvalidInput("period must be YYYY-MM")
	}

	at := payDate.NoonUTC()
	p := payment.Payment{
		ID:         idGenerator(deps.NewID)(),
		MemberID:   m.ID,
		MemberName: m.Name,
		Amount:     input.Amount,
		FeeType:    payment.FeeMonthly,
		Period:     input.Period,
		Status:     payment.StatusPaid,
		DueDate:    at,
		PaidAt:     at,
		CreatedAt:  deps.Clock.Now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return payment.Payment{}, apperr.InvalidInput("%s", err.Error())
	}
	if err := deps.PaymentStore.Save(ctx, p); err != nil {
		return payment.Payment{}, err
	}

	slog.Info("payment_event", "event", "monthly_logged", "payment_id", p.ID, "member_id", m.ID, "period", p.Period, "amount", p.Amount)
	return p, nil
}

// PaymentSettler settles a payment with a conditional write.
type PaymentSettler interface {
	MarkPaid(ctx context.Context, id, memberID string, at time.Time) (payment.Payment, error)
}

// MarkPaymentPaidInput identifies the payment and its owner.
type MarkPaymentPaidInput struct {
	PaymentID string
	MemberID  string
}

// MarkPaymentPaidDeps holds dependencies for MarkPaymentPaid.
type MarkPaymentPaidDeps struct {
	PaymentStore PaymentSettler
	MemberStore  MemberGetter
	Notifier     Notifier
	Clock        calendar.Clock
}

// ExecuteMarkPaymentPaid settles a Due or Overdue payment.
// PRE: the payment belongs to MemberID
// POST: Status = Paid, PaidAt = now; a payment_received notification is queued
// INVARIANT: a Paid payment is never settled twice
func ExecuteMarkPaymentPaid(ctx context.Context, input MarkPaymentPaidInput, deps MarkPaymentPaidDeps) (payment.Payment, error) {
	p, err := deps.PaymentStore.MarkPaid(ctx, input.PaymentID, input.MemberID, deps.Clock.Now().UTC())
	switch {
	case errors.Is(err, payment.ErrNotFound):
		return payment.Payment{}, apperr.NotFound("Payment not found")
	case errors.Is(err, payment.ErrAlreadyPaid):
		return payment.Payment{}, apperr.InvalidState("Already paid")
	case err != nil:
		return payment.Payment{}, err
	}

	slog.Info("payment_event", "event", "payment_paid", "payment_id", p.ID, "member_id", p.MemberID, "amount", p.Amount)
	if m, err := deps.MemberStore.GetByID(ctx, p.MemberID); err == nil {
		notifyMember(deps.Notifier, m, notification.Message{Type: notification.TypePaymentReceived, Amount: p.Amount})
	} else {
		slog.Warn("notification_skipped", "type", notification.TypePaymentReceived, "member_id", p.MemberID, "error", err)
	}
	return p, nil
}

// PaymentEditStore is the payment persistence needed for admin corrections.
type PaymentEditStore interface {
	GetByID(ctx context.Context, id string) (payment.Payment, error)
	Save(ctx context.Context, p payment.Payment) error
}

// UpdatePaymentStatusDeps holds dependencies for UpdatePaymentStatus.
type UpdatePaymentStatusDeps struct {
	PaymentStore PaymentEditStore
	Clock        calendar.Clock
}

// ExecuteUpdatePaymentStatus applies an admin status correction.
// POST: Status = status; PaidAt cleared unless status is Paid
func ExecuteUpdatePaymentStatus(ctx context.Context, paymentID, status string, deps UpdatePaymentStatusDeps) (payment.Payment, error) {
	if !payment.IsValidStatus(status) {
		return payment.Payment{}, apperr.InvalidInput("%s", payment.ErrInvalidStatus.Error())
	}
	p, err := deps.PaymentStore.GetByID(ctx, paymentID)
	if errors.Is(err, payment.ErrNotFound) {
		return payment.Payment{}, apperr.NotFound("Payment not found")
	}
	if err != nil {
		return payment.Payment{}, err
	}

	previous := p.Status
	if err := p.SetStatus(status, deps.Clock.Now().UTC()); err != nil {
		return payment.Payment{}, apperr.InvalidInput("%s", err.Error())
	}
	if err := deps.PaymentStore.Save(ctx, p); err != nil {
		return payment.Payment{}, err
	}
	slog.Info("payment_event", "event", "status_corrected", "payment_id", p.ID, "from", previous, "to", p.Status)
	return p, nil
}

// OverdueSweeper ages Due payments past their due date.
type OverdueSweeper interface {
	SweepOverdue(ctx context.Context, today calendar.Date) (int, error)
}

// ExecuteSweepOverdue moves every Due payment whose due date is before
// today (civil zone) to Overdue.
// POST: returns the number of payments changed; a second run on the same
// day changes nothing
func ExecuteSweepOverdue(ctx context.Context, store OverdueSweeper, clock calendar.Clock) (int, error) {
	today := clock.Today()
	n, err := store.SweepOverdue(ctx, today)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("sweep_event", "event", "payments_overdue", "count", n, "today", today.String())
	}
	return n, nil
}
