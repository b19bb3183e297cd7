package projections

import (
	"context"

	memberstore "arena/internal/adapters/storage/member"
	"arena/internal/domain/calendar"
	domainMember "arena/internal/domain/member"
)

// DefaultLapsingDays is the look-back used when none is given.
const DefaultLapsingDays = 30

// GetLapsingMembersQuery carries input for the lapsing radar projection.
type GetLapsingMembersQuery struct {
	DaysSinceLastCheckIn int // members absent for at least this many days
}

// GetLapsingMembersDeps holds dependencies for the lapsing radar.
type GetLapsingMembersDeps struct {
	MemberStore MemberStore
	Clock       calendar.Clock
}

// LapsingMemberResult represents a single Active member who stopped coming.
type LapsingMemberResult struct {
	MemberID       string
	Name           string
	Phone          string
	MembershipType string
	Batch          string
	LastCheckIn    string // YYYY-MM-DD or "never"
	DaysInactive   int    // -1 when the member never checked in
}

// QueryGetLapsingMembers returns Active members who have not checked in for
// the given number of days, or never. Front-desk staff use it to follow up
// before the inactivity sweep flips them.
func QueryGetLapsingMembers(ctx context.Context, query GetLapsingMembersQuery, deps GetLapsingMembersDeps) ([]LapsingMemberResult, error) {
	if query.DaysSinceLastCheckIn <= 0 {
		query.DaysSinceLastCheckIn = DefaultLapsingDays
	}
	today := deps.Clock.Today()
	cutoff := today.AddDays(-query.DaysSinceLastCheckIn)

	members, err := deps.MemberStore.List(ctx, memberstore.ListFilter{Status: domainMember.StatusActive, Brief: true})
	if err != nil {
		return nil, err
	}

	results := []LapsingMemberResult{}
	for _, m := range members {
		r := LapsingMemberResult{
			MemberID:       m.ID,
			Name:           m.Name,
			Phone:          m.Phone,
			MembershipType: m.MembershipType,
			Batch:          m.Batch,
		}
		switch {
		case m.LastAttendance == nil:
			r.LastCheckIn = "never"
			r.DaysInactive = -1
		case m.LastAttendance.Before(cutoff.AddDays(1)):
			r.LastCheckIn = m.LastAttendance.String()
			r.DaysInactive = daysBetween(*m.LastAttendance, today)
		default:
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

func daysBetween(from, to calendar.Date) int {
	return int(to.MidnightUTC().Sub(from.MidnightUTC()).Hours() / 24)
}
