package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	paymentstore "arena/internal/adapters/storage/payment"
	"arena/internal/domain/notification"
)

// OutstandingLister totals unpaid amounts per member.
type OutstandingLister interface {
	OutstandingByMember(ctx context.Context) ([]paymentstore.MemberBalance, error)
}

// FeeRemindersDeps holds dependencies for FeeReminders.
type FeeRemindersDeps struct {
	PaymentStore OutstandingLister
	MemberStore  MemberGetter
	Notifier     Notifier
}

// ExecuteFeeReminders queues one fees_due message per member with Due or
// Overdue payments, carrying the member's total pending amount. Balances
// whose member no longer resolves are skipped.
// POST: returns the number of members a reminder was queued for
func ExecuteFeeReminders(ctx context.Context, deps FeeRemindersDeps) (int, error) {
	balances, err := deps.PaymentStore.OutstandingByMember(ctx)
	if err != nil {
		return 0, fmt.Errorf("outstanding balances: %w", err)
	}

	sent := 0
	for _, b := range balances {
		m, err := deps.MemberStore.GetByID(ctx, b.MemberID)
		if err != nil {
			slog.Warn("notification_skipped", "type", notification.TypeFeesDue, "member_id", b.MemberID, "error", err)
			continue
		}
		notifyMember(deps.Notifier, m, notification.Message{Type: notification.TypeFeesDue, Amount: b.Amount})
		sent++
	}

	slog.Info("payment_event", "event", "fee_reminders_queued", "count", sent)
	return sent, nil
}

// FeeRemindersMessage is the operator-facing summary of a reminder run.
func FeeRemindersMessage(sent int) string {
	return fmt.Sprintf("Month-end reminders queued for %d member(s).", sent)
}
