package orchestrators

import (
	"context"
	"log/slog"

	"arena/internal/adapters/storage/enrollment"
	"arena/internal/domain/apperr"
	"arena/internal/domain/calendar"
	"arena/internal/domain/invoice"
	"arena/internal/domain/member"
	"arena/internal/domain/notification"
	"arena/internal/domain/payment"
)

// IssueWalkInInput carries the new member's details.
type IssueWalkInInput struct {
	Name           string
	Phone          string
	Email          string
	MembershipType string
	Batch          string
}

// IssueWalkInDeps holds dependencies for IssueWalkIn.
type IssueWalkInDeps struct {
	Enrollment EnrollmentStore
	Notifier   Notifier
	Clock      calendar.Clock
	Fees       payment.FeeSchedule
	NewID      func() string
}

// IssueWalkInResult is the member and the first bill.
type IssueWalkInResult struct {
	Member  member.Member
	Invoice invoice.Invoice
}

// ExecuteIssueWalkIn creates an Active member and issues the first bill
// (Registration + First Month). The same Due payment pair a normal
// registration creates is written alongside; invoice and payments settle
// independently.
// POST: one member, one Unpaid invoice, two Due payments
func ExecuteIssueWalkIn(ctx context.Context, input IssueWalkInInput, deps IssueWalkInDeps) (IssueWalkInResult, error) {
	newID := idGenerator(deps.NewID)
	now := deps.Clock.Now()

	m := newMember(newID(), RegisterMemberInput{
		Name:           input.Name,
		Phone:          input.Phone,
		Email:          input.Email,
		MembershipType: input.MembershipType,
		Batch:          input.Batch,
	}, now)
	if err := m.Validate(); err != nil {
		return IssueWalkInResult{}, apperr.InvalidInput("%s", err.Error())
	}

	inv := invoice.NewWalkIn(newID(), m, deps.Fees, now.UTC())
	pair := payment.NewEnrollmentPair(m, deps.Fees, calendar.DateOf(now), now.UTC(), newID)
	if err := deps.Enrollment.Enroll(ctx, enrollment.Enrollment{Member: m, Payments: pair, Invoice: &inv}); err != nil {
		return IssueWalkInResult{}, err
	}

	slog.Info("billing_event", "event", "walk_in_issued", "member_id", m.ID, "invoice_id", inv.ID, "total", inv.Total)
	notifyMember(deps.Notifier, m, notification.Message{Type: notification.TypeRegistration})
	return IssueWalkInResult{Member: m, Invoice: inv}, nil
}
