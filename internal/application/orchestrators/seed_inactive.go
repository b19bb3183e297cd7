package orchestrators

import (
	"context"
	"log/slog"

	"arena/internal/domain/batch"
	"arena/internal/domain/calendar"
	"arena/internal/domain/member"
)

// SeedInactiveAge is how many days ago the seeded members last checked in:
// one past the inactivity threshold, so the next sweep flips them.
// A non-positive threshold means DefaultInactivityDays.
func SeedInactiveAge(thresholdDays int) int {
	if thresholdDays <= 0 {
		thresholdDays = DefaultInactivityDays
	}
	return thresholdDays + 1
}

// MemberSaver persists a member.
type MemberSaver interface {
	Save(ctx context.Context, m member.Member) error
}

// SeedInactiveDeps holds dependencies for SeedInactiveTestMembers.
type SeedInactiveDeps struct {
	MemberStore   MemberSaver
	Clock         calendar.Clock
	NewID         func() string
	ThresholdDays int // zero uses DefaultInactivityDays
}

// ExecuteSeedInactiveTestMembers inserts two Active members whose last
// check-in was SeedInactiveAge(deps.ThresholdDays) days ago. No payments are created for them.
// POST: returns the two seeded members
func ExecuteSeedInactiveTestMembers(ctx context.Context, deps SeedInactiveDeps) ([]member.Member, error) {
	newID := idGenerator(deps.NewID)
	now := deps.Clock.Now().UTC()
	last := deps.Clock.Today().AddDays(-SeedInactiveAge(deps.ThresholdDays))

	seeds := []member.Member{
		{
			Name:           "Test User (lapsed)",
			Phone:          "9999900001",
			Email:          "lapsed1@example.com",
			MembershipType: member.TypeRegular,
			Batch:          batch.Morning,
		},
		{
			Name:           "Another Test (lapsed)",
			Phone:          "9999900002",
			Email:          "lapsed2@example.com",
			MembershipType: member.TypePT,
			Batch:          batch.Evening,
		},
	}
	for i := range seeds {
		seeds[i].ID = newID()
		seeds[i].Status = member.StatusActive
		seeds[i].CreatedAt = now
		seeds[i].RecordAttendance(last)
		if err := deps.MemberStore.Save(ctx, seeds[i]); err != nil {
			return nil, err
		}
	}

	slog.Info("member_event", "event", "inactive_test_members_seeded", "count", len(seeds), "last_attendance", last.String())
	return seeds, nil
}
