package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"arena/internal/adapters/storage/enrollment"
	"arena/internal/domain/apperr"
	"arena/internal/domain/calendar"
	"arena/internal/domain/member"
	"arena/internal/domain/notification"
	"arena/internal/domain/payment"
)

// EnrollmentStore writes a member and its seed records atomically.
type EnrollmentStore interface {
	Enroll(ctx context.Context, e enrollment.Enrollment) error
}

// RegisterMemberInput carries input for the orchestrator.
type RegisterMemberInput struct {
	Name           string
	Phone          string
	Email          string
	MembershipType string
	Batch          string
	Status         string // empty means Active
	Photo          string
	IDDocument     string
	IDDocumentType string
}

// RegisterMemberDeps holds dependencies for RegisterMember.
type RegisterMemberDeps struct {
	Enrollment EnrollmentStore
	Notifier   Notifier
	Clock      calendar.Clock
	Fees       payment.FeeSchedule
	NewID      func() string // optional: defaults to uuid
}

// ExecuteRegisterMember coordinates member registration.
// PRE: Valid email, non-empty name and phone, known type and batch
// POST: Member created together with a Due registration fee and a Due
// first-month fee for the current period; a registration notification is queued
// INVARIANT: the member and both payments are written in one transaction
func ExecuteRegisterMember(ctx context.Context, input RegisterMemberInput, deps RegisterMemberDeps) (member.Member, error) {
	newID := idGenerator(deps.NewID)
	now := deps.Clock.Now()

	m := newMember(newID(), input, now)
	if err := m.Validate(); err != nil {
		return member.Member{}, apperr.InvalidInput("%s", err.Error())
	}

	pair := payment.NewEnrollmentPair(m, deps.Fees, calendar.DateOf(now), now.UTC(), newID)
	if err := deps.Enrollment.Enroll(ctx, enrollment.Enrollment{Member: m, Payments: pair}); err != nil {
		return member.Member{}, err
	}

	slog.Info("member_event", "event", "member_registered", "member_id", m.ID, "membership_type", m.MembershipType, "batch", m.Batch)
	notifyMember(deps.Notifier, m, notification.Message{Type: notification.TypeRegistration})
	return m, nil
}

func newMember(id string, input RegisterMemberInput, now time.Time) member.Member {
	status := input.Status
	if status == "" {
		status = member.StatusActive
	}
	return member.Member{
		ID:             id,
		Name:           strings.TrimSpace(input.Name),
		Phone:          member.NormalizePhone(input.Phone),
		Email:          strings.TrimSpace(input.Email),
		MembershipType: input.MembershipType,
		Batch:          input.Batch,
		Status:         status,
		CreatedAt:      now.UTC(),
		Photo:          input.Photo,
		IDDocument:     input.IDDocument,
		IDDocumentType: input.IDDocumentType,
	}
}
