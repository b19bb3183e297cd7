package web

import (
	"fmt"
	"net/http"
	"time"

	"arena/internal/adapters/http/perf"
	"arena/internal/application/orchestrators"
	"arena/internal/application/projections"
)

// handleMarkInactiveByAttendance handles POST /admin/mark-inactive-by-attendance
func handleMarkInactiveByAttendance(w http.ResponseWriter, r *http.Request) {
	res, err := orchestrators.ExecuteSweepInactive(r.Context(), orchestrators.SweepInactiveDeps{
		MemberStore:   stores.MemberStore,
		Notifier:      settings.Notifier,
		Clock:         settings.Clock,
		ThresholdDays: settings.InactivityDays,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"updated_count":   res.UpdatedCount,
		"cutoff_date_ist": res.Cutoff.String(),
	})
}

// handleRunFeeReminders handles POST /admin/run-fee-reminders
func handleRunFeeReminders(w http.ResponseWriter, r *http.Request) {
	sent, err := orchestrators.ExecuteFeeReminders(r.Context(), orchestrators.FeeRemindersDeps{
		PaymentStore: stores.PaymentStore,
		MemberStore:  stores.MemberStore,
		Notifier:     settings.Notifier,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": orchestrators.FeeRemindersMessage(sent)})
}

// handleSeedInactiveTest handles POST /admin/seed-inactive-test
func handleSeedInactiveTest(w http.ResponseWriter, r *http.Request) {
	seeded, err := orchestrators.ExecuteSeedInactiveTestMembers(r.Context(), orchestrators.SeedInactiveDeps{
		MemberStore:   stores.MemberStore,
		Clock:         settings.Clock,
		NewID:         generateID,
		ThresholdDays: settings.InactivityDays,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	members := make([]map[string]string, 0, len(seeded))
	for _, m := range seeded {
		members = append(members, map[string]string{"id": m.ID, "name": m.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Created %d test members with last check-in %d days ago.", len(seeded), orchestrators.SeedInactiveAge(settings.InactivityDays)),
		"members": members,
	})
}

// handleLapsingMembers handles GET /admin/lapsing-members?days=N
func handleLapsingMembers(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(w, r, "days", projections.DefaultLapsingDays)
	if !ok {
		return
	}
	results, err := projections.QueryGetLapsingMembers(r.Context(), projections.GetLapsingMembersQuery{
		DaysSinceLastCheckIn: days,
	}, projections.GetLapsingMembersDeps{MemberStore: stores.MemberStore, Clock: settings.Clock})
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(results))
	for _, m := range results {
		out = append(out, map[string]any{
			"member_id":       m.MemberID,
			"name":            m.Name,
			"phone":           m.Phone,
			"membership_type": m.MembershipType,
			"batch":           m.Batch,
			"last_check_in":   m.LastCheckIn,
			"days_inactive":   m.DaysInactive,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAdminPerf handles GET /admin/perf: request timings over the last hour.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if perfCollector == nil {
		writeJSON(w, http.StatusOK, perf.Snapshot{})
		return
	}
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(time.Now().Add(-time.Hour), 10))
}
