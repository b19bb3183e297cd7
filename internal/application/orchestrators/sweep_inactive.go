package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"arena/internal/domain/calendar"
	"arena/internal/domain/member"
	"arena/internal/domain/notification"
)

// DefaultInactivityDays is the lapse threshold of the inactivity sweep.
const DefaultInactivityDays = 90

// LapsedMemberStore is the member persistence needed by the sweep.
type LapsedMemberStore interface {
	ListLapsed(ctx context.Context, cutoff calendar.Date) ([]member.Member, error)
	MarkInactive(ctx context.Context, id string) (bool, error)
}

// SweepInactiveDeps holds dependencies for SweepInactive.
type SweepInactiveDeps struct {
	MemberStore   LapsedMemberStore
	Notifier      Notifier
	Clock         calendar.Clock
	ThresholdDays int // zero uses DefaultInactivityDays
}

// SweepInactiveResult reports what the sweep changed.
type SweepInactiveResult struct {
	UpdatedCount int
	Cutoff       calendar.Date
}

// ExecuteSweepInactive marks Inactive every member whose last attendance
// date is strictly before today minus the threshold. Members that never
// checked in are left alone, and the sweep never reactivates anyone.
// POST: re-running on the same day reports zero updates
func ExecuteSweepInactive(ctx context.Context, deps SweepInactiveDeps) (SweepInactiveResult, error) {
	days := deps.ThresholdDays
	if days <= 0 {
		days = DefaultInactivityDays
	}
	cutoff := member.InactivityCutoff(deps.Clock.Today(), days)

	lapsed, err := deps.MemberStore.ListLapsed(ctx, cutoff)
	if err != nil {
		return SweepInactiveResult{}, fmt.Errorf("list lapsed members: %w", err)
	}

	result := SweepInactiveResult{Cutoff: cutoff}
	for _, m := range lapsed {
		changed, err := deps.MemberStore.MarkInactive(ctx, m.ID)
		if err != nil {
			return result, fmt.Errorf("mark member %s inactive: %w", m.ID, err)
		}
		if !changed {
			continue
		}
		result.UpdatedCount++
		notifyMember(deps.Notifier, m, notification.Message{Type: notification.TypeStatusChange, NewStatus: member.StatusInactive})
	}

	slog.Info("sweep_event", "event", "members_inactive", "count", result.UpdatedCount, "cutoff", cutoff.String(), "threshold_days", days)
	return result, nil
}
