package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"arena/internal/domain/apperr"
	"arena/internal/domain/calendar"
	"arena/internal/domain/invoice"
	"arena/internal/domain/notification"
)

// InvoiceSettler settles an invoice with a conditional write.
type InvoiceSettler interface {
	MarkPaid(ctx context.Context, id string, at time.Time) (invoice.Invoice, error)
}

// MarkInvoicePaidDeps holds dependencies for MarkInvoicePaid.
type MarkInvoicePaidDeps struct {
	InvoiceStore InvoiceSettler
	MemberStore  MemberGetter
	Notifier     Notifier
	Clock        calendar.Clock
}

// ExecuteMarkInvoicePaid settles an Unpaid invoice. The payments issued with
// it are not touched.
// POST: Status = Paid, PaidAt = now; a payment_received notification for the
// invoice total is queued
func ExecuteMarkInvoicePaid(ctx context.Context, invoiceID string, deps MarkInvoicePaidDeps) (invoice.Invoice, error) {
	inv, err := deps.InvoiceStore.MarkPaid(ctx, invoiceID, deps.Clock.Now().UTC())
	switch {
	case errors.Is(err, invoice.ErrNotFound):
		return invoice.Invoice{}, apperr.NotFound("Invoice not found")
	case errors.Is(err, invoice.ErrAlreadyPaid):
		return invoice.Invoice{}, apperr.InvalidState("Already paid")
	case err != nil:
		return invoice.Invoice{}, err
	}

	slog.Info("billing_event", "event", "invoice_paid", "invoice_id", inv.ID, "member_id", inv.MemberID, "total", inv.Total)
	if m, err := deps.MemberStore.GetByID(ctx, inv.MemberID); err == nil {
		notifyMember(deps.Notifier, m, notification.Message{Type: notification.TypePaymentReceived, Amount: inv.Total})
	} else {
		slog.Warn("notification_skipped", "type", notification.TypePaymentReceived, "member_id", inv.MemberID, "error", err)
	}
	return inv, nil
}
