package web

import (
	"net/http"

	"arena/internal/application/orchestrators"
	"arena/internal/application/projections"
)

type createMemberRequest struct {
	Name             string  `json:"name" validate:"required,max=200"`
	Phone            string  `json:"phone" validate:"required,max=20"`
	Email            string  `json:"email" validate:"required,email"`
	MembershipType   string  `json:"membership_type" validate:"required,oneof=Regular PT"`
	Batch            string  `json:"batch" validate:"required,oneof=Morning Evening Ladies"`
	Status           string  `json:"status" validate:"max=50"`
	PhotoBase64      *string `json:"photo_base64"`
	IDDocumentBase64 *string `json:"id_document_base64"`
	IDDocumentType   *string `json:"id_document_type"`
}

type updateMemberRequest struct {
	Name            *string `json:"name"`
	Phone           *string `json:"phone"`
	Email           *string `json:"email"`
	MembershipType  *string `json:"membership_type" validate:"omitnil,oneof=Regular PT"`
	Batch           *string `json:"batch" validate:"omitnil,oneof=Morning Evening Ladies"`
	Status          *string `json:"status"`
	WorkoutSchedule *string `json:"workout_schedule"`
	DietChart       *string `json:"diet_chart"`
}

type photoRequest struct {
	PhotoBase64 *string `json:"photo_base64"`
}

type idDocumentRequest struct {
	IDDocumentBase64 *string `json:"id_document_base64"`
	IDDocumentType   *string `json:"id_document_type"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func memberEditDeps() orchestrators.UpdateMemberDeps {
	return orchestrators.UpdateMemberDeps{MemberStore: stores.MemberStore}
}

func memberQueryDeps() projections.GetMemberListDeps {
	return projections.GetMemberListDeps{MemberStore: stores.MemberStore}
}

// handleCreateMember handles POST /members
func handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var body createMemberRequest
	if !decodeBody(w, r, &body) {
		return
	}

	deps := orchestrators.RegisterMemberDeps{
		Enrollment: stores.EnrollmentStore,
		Notifier:   settings.Notifier,
		Clock:      settings.Clock,
		Fees:       settings.Fees,
		NewID:      generateID,
	}
	m, err := orchestrators.ExecuteRegisterMember(r.Context(), orchestrators.RegisterMemberInput{
		Name:           body.Name,
		Phone:          body.Phone,
		Email:          body.Email,
		MembershipType: body.MembershipType,
		Batch:          body.Batch,
		Status:         body.Status,
		Photo:          deref(body.PhotoBase64),
		IDDocument:     deref(body.IDDocumentBase64),
		IDDocumentType: deref(body.IDDocumentType),
	}, deps)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberJSON(m))
}

// handleListMembers handles GET /members?skip&limit&brief
func handleListMembers(w http.ResponseWriter, r *http.Request) {
	skip, ok := queryInt(w, r, "skip", 0)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", projections.DefaultMemberListLimit)
	if !ok {
		return
	}
	query := projections.GetMemberListQuery{
		Skip:  skip,
		Limit: limit,
		Brief: r.URL.Query().Get("brief") == "true",
	}
	members, err := projections.QueryGetMemberList(r.Context(), query, memberQueryDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMembersJSON(members))
}

// handleGetMember handles GET /members/{id}
func handleGetMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "member")
	if !ok {
		return
	}
	m, err := projections.QueryGetMember(r.Context(), id, memberQueryDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberJSON(m))
}

// handleMemberSubresource handles GET /members/by-phone/{phone} and
// GET /members/{id}/attendance-stats
func handleMemberSubresource(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("id") == "by-phone" {
		handleGetMemberByPhone(w, r, r.PathValue("sub"))
		return
	}
	if r.PathValue("sub") == "attendance-stats" {
		handleMemberAttendanceStats(w, r)
		return
	}
	writeDetail(w, http.StatusNotFound, "Not Found")
}

func handleGetMemberByPhone(w http.ResponseWriter, r *http.Request, phone string) {
	m, err := projections.QueryGetMemberByPhone(r.Context(), phone, memberQueryDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberJSON(m))
}

func handleMemberAttendanceStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "member")
	if !ok {
		return
	}
	stats, err := projections.QueryMemberAttendanceStats(r.Context(), id, projections.GetMemberAttendanceStatsDeps{
		MemberStore:     stores.MemberStore,
		AttendanceStore: stores.AttendanceStore,
		Clock:           settings.Clock,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_visits":         stats.TotalVisits,
		"visits_this_month":    stats.VisitsThisMonth,
		"avg_duration_minutes": stats.AvgDurationMinutes,
	})
}

// handleUpdateMember handles PATCH /members/{id}
func handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "member")
	if !ok {
		return
	}
	var body updateMemberRequest
	if !decodeBody(w, r, &body) {
		return
	}
	m, err := orchestrators.ExecuteUpdateMember(r.Context(), orchestrators.UpdateMemberInput{
		MemberID:        id,
		Name:            body.Name,
		Phone:           body.Phone,
		Email:           body.Email,
		MembershipType:  body.MembershipType,
		Batch:           body.Batch,
		Status:          body.Status,
		WorkoutSchedule: body.WorkoutSchedule,
		DietChart:       body.DietChart,
	}, memberEditDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberJSON(m))
}

// handleUpdateMemberPhoto handles PATCH /members/{id}/photo; a null photo clears it.
func handleUpdateMemberPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "member")
	if !ok {
		return
	}
	var body photoRequest
	if !decodeBody(w, r, &body) {
		return
	}
	m, err := orchestrators.ExecuteSetMemberPhoto(r.Context(), id, body.PhotoBase64, memberEditDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberJSON(m))
}

// handleUpdateMemberIDDocument handles PATCH /members/{id}/id-document; a null document clears it and its type.
func handleUpdateMemberIDDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "member")
	if !ok {
		return
	}
	var body idDocumentRequest
	if !decodeBody(w, r, &body) {
		return
	}
	m, err := orchestrators.ExecuteSetMemberIDDocument(r.Context(), id, body.IDDocumentBase64, body.IDDocumentType, memberEditDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberJSON(m))
}
