package web

import (
	"net/http"

	"arena/internal/application/orchestrators"
	"arena/internal/application/projections"
)

func attendanceQueryDeps() projections.GetAttendanceDeps {
	return projections.GetAttendanceDeps{AttendanceStore: stores.AttendanceStore, Clock: settings.Clock}
}

// handleCheckIn handles POST /attendance/check-in/{id}
func handleCheckIn(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "member")
	if !ok {
		return
	}
	deps := orchestrators.CheckInDeps{
		MemberStore:     stores.MemberStore,
		AttendanceStore: stores.AttendanceStore,
		Clock:           settings.Clock,
		Capacity:        settings.BatchCapacity,
		NewID:           generateID,
	}
	rec, err := orchestrators.ExecuteCheckIn(r.Context(), orchestrators.CheckInInput{MemberID: id}, deps)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceJSON(rec))
}

// handleCheckOut handles POST /attendance/check-out/{id}
func handleCheckOut(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "member")
	if !ok {
		return
	}
	deps := orchestrators.CheckOutDeps{
		MemberStore:     stores.MemberStore,
		AttendanceStore: stores.AttendanceStore,
		Clock:           settings.Clock,
	}
	rec, err := orchestrators.ExecuteCheckOut(r.Context(), id, deps)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceJSON(rec))
}

// handleAttendanceToday handles GET /attendance/today
func handleAttendanceToday(w http.ResponseWriter, r *http.Request) {
	records, err := projections.QueryAttendanceToday(r.Context(), attendanceQueryDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendancesJSON(records))
}

// handleAttendanceByDate handles GET /attendance/by-date?date=YYYY-MM-DD
func handleAttendanceByDate(w http.ResponseWriter, r *http.Request) {
	records, err := projections.QueryAttendanceByDate(r.Context(), r.URL.Query().Get("date"), attendanceQueryDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendancesJSON(records))
}

// handleAttendanceByDateRange handles GET /attendance/by-date-range?date_from&date_to
func handleAttendanceByDateRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := projections.QueryAttendanceRange(r.Context(), projections.AttendanceRangeQuery{
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
	}, attendanceQueryDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendancesJSON(records))
}

// handleAttendanceSummary handles GET /attendance/summary
func handleAttendanceSummary(w http.ResponseWriter, r *http.Request) {
	s, err := projections.QueryAttendanceSummary(r.Context(), attendanceQueryDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"today_check_ins":  s.TodayCheckIns,
		"currently_in_gym": s.CurrentlyInGym,
		"this_week":        s.ThisWeek,
		"average_daily":    s.AverageDaily,
	})
}

// handleDeleteAttendance handles DELETE /attendance/{id}
func handleDeleteAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "attendance")
	if !ok {
		return
	}
	if err := orchestrators.ExecuteDeleteAttendance(r.Context(), id, stores.AttendanceStore); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Attendance record deleted"})
}
