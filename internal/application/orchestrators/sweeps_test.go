package orchestrators

import (
	"context"
	"testing"
	"time"

	"arena/internal/domain/calendar"
	"arena/internal/domain/member"
	"arena/internal/domain/notification"
)

func memberLastSeen(id string, last *calendar.Date) member.Member {
	m := testMember(id, "Member "+id)
	m.LastAttendance = last
	return m
}

// TestExecuteSweepInactive tests the 90-day rule at date granularity.
func TestExecuteSweepInactive(t *testing.T) {
	clock := clockAt(2025, time.July, 1, 0, 5)
	today := clock.Today()
	d := func(n int) *calendar.Date { x := today.AddDays(-n); return &x }

	store := newMockMemberStore(
		memberLastSeen("lapsed", d(91)),
		memberLastSeen("boundary", d(90)),
		memberLastSeen("recent", d(3)),
		memberLastSeen("never", nil),
	)
	notifier := &recordingNotifier{}
	deps := SweepInactiveDeps{MemberStore: store, Notifier: notifier, Clock: clock, ThresholdDays: 90}

	res, err := ExecuteSweepInactive(context.Background(), deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.UpdatedCount != 1 {
		t.Errorf("UpdatedCount = %d, want 1", res.UpdatedCount)
	}
	if res.Cutoff != today.AddDays(-90) {
		t.Errorf("Cutoff = %s, want %s", res.Cutoff, today.AddDays(-90))
	}
	want := map[string]string{
		"lapsed":   member.StatusInactive,
		"boundary": member.StatusActive,
		"recent":   member.StatusActive,
		"never":    member.StatusActive,
	}
	for id, status := range want {
		if got := store.members[id].Status; got != status {
			t.Errorf("%s status = %s, want %s", id, got, status)
		}
	}
	if len(notifier.messages) != 1 || notifier.messages[0].Type != notification.TypeStatusChange || notifier.messages[0].NewStatus != member.StatusInactive {
		t.Errorf("notifications = %+v", notifier.messages)
	}

	again, err := ExecuteSweepInactive(context.Background(), deps)
	if err != nil || again.UpdatedCount != 0 {
		t.Errorf("second sweep = %+v, %v; want 0 updates", again, err)
	}
}

// TestExecuteSweepInactive_CustomThreshold tests an injected threshold.
func TestExecuteSweepInactive_CustomThreshold(t *testing.T) {
	clock := clockAt(2025, time.July, 1, 12, 0)
	last := clock.Today().AddDays(-8)
	store := newMockMemberStore(memberLastSeen("m1", &last))

	res, err := ExecuteSweepInactive(context.Background(), SweepInactiveDeps{MemberStore: store, Clock: clock, ThresholdDays: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.UpdatedCount != 1 {
		t.Errorf("UpdatedCount = %d, want 1", res.UpdatedCount)
	}
}

// TestExecuteSeedInactiveTestMembers tests that seeded members are swept at
// the configured threshold.
func TestExecuteSeedInactiveTestMembers(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
		wantAge   int
	}{
		{"default threshold", 0, 91},
		{"configured threshold", 120, 121},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := clockAt(2025, time.July, 1, 12, 0)
			store := newMockMemberStore()

			seeded, err := ExecuteSeedInactiveTestMembers(context.Background(), SeedInactiveDeps{
				MemberStore:   store,
				Clock:         clock,
				NewID:         seqIDs("seed"),
				ThresholdDays: tt.threshold,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(seeded) != 2 {
				t.Fatalf("seeded = %d, want 2", len(seeded))
			}
			for _, m := range seeded {
				if err := m.Validate(); err != nil {
					t.Errorf("seeded member invalid: %v", err)
				}
				if m.LastAttendance == nil || *m.LastAttendance != clock.Today().AddDays(-tt.wantAge) {
					t.Errorf("LastAttendance = %v, want %d days ago", m.LastAttendance, tt.wantAge)
				}
			}

			res, err := ExecuteSweepInactive(context.Background(), SweepInactiveDeps{MemberStore: store, Clock: clock, ThresholdDays: tt.threshold})
			if err != nil || res.UpdatedCount != 2 {
				t.Errorf("sweep after seed = %+v, %v; want 2 updates", res, err)
			}
		})
	}
}

// TestExecuteSweeps tests the combined run.
func TestExecuteSweeps(t *testing.T) {
	clock := clockAt(2025, time.July, 1, 0, 5)
	last := clock.Today().AddDays(-100)
	members := newMockMemberStore(memberLastSeen("m1", &last))
	payments := newMockPaymentStore(duePayment("p1", "m1", 500, clock.Today().AddDays(-1)))

	report, err := ExecuteSweeps(context.Background(), SweepDeps{
		Inactive:     SweepInactiveDeps{MemberStore: members, Clock: clock},
		PaymentStore: payments,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Inactive.UpdatedCount != 1 || report.Overdue != 1 {
		t.Errorf("report = %+v", report)
	}
}

// TestNewSweepScheduler tests spec parsing.
func TestNewSweepScheduler(t *testing.T) {
	deps := SweepDeps{
		Inactive:     SweepInactiveDeps{MemberStore: newMockMemberStore(), Clock: clockAt(2025, 1, 1, 0, 0)},
		PaymentStore: newMockPaymentStore(),
	}
	c, err := NewSweepScheduler("5 0 * * *", deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Entries()) != 1 {
		t.Errorf("entries = %d, want 1", len(c.Entries()))
	}
	if _, err := NewSweepScheduler("every day", deps); err == nil {
		t.Error("expected error for a malformed spec")
	}
}
