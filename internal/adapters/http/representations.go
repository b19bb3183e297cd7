package web

import (
	"time"

	"arena/internal/application/projections"
	"arena/internal/domain/attendance"
	"arena/internal/domain/calendar"
	"arena/internal/domain/invoice"
	"arena/internal/domain/member"
	"arena/internal/domain/outbox"
	"arena/internal/domain/payment"
)

type memberJSON struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Phone              string    `json:"phone"`
	Email              string    `json:"email"`
	MembershipType     string    `json:"membership_type"`
	Batch              string    `json:"batch"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	LastAttendanceDate *string   `json:"last_attendance_date"`
	WorkoutSchedule    *string   `json:"workout_schedule"`
	DietChart          *string   `json:"diet_chart"`
	PhotoBase64        *string   `json:"photo_base64"`
	IDDocumentBase64   *string   `json:"id_document_base64"`
	IDDocumentType     *string   `json:"id_document_type"`
}

type attendanceJSON struct {
	ID          string     `json:"id"`
	MemberID    string     `json:"member_id"`
	MemberName  string     `json:"member_name"`
	MemberPhone *string    `json:"member_phone"`
	CheckInAt   time.Time  `json:"check_in_at"`
	DateIST     string     `json:"date_ist"`
	Batch       string     `json:"batch"`
	CheckOutAt  *time.Time `json:"check_out_at"`
}

type paymentJSON struct {
	ID         string     `json:"id"`
	MemberID   string     `json:"member_id"`
	MemberName string     `json:"member_name"`
	Amount     int        `json:"amount"`
	FeeType    string     `json:"fee_type"`
	Period     *string    `json:"period"`
	Status     string     `json:"status"`
	DueDate    *string    `json:"due_date"`
	PaidAt     *time.Time `json:"paid_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

type invoiceItemJSON struct {
	Description string `json:"description"`
	Amount      int    `json:"amount"`
}

type invoiceJSON struct {
	ID         string            `json:"id"`
	MemberID   string            `json:"member_id"`
	MemberName string            `json:"member_name"`
	Items      []invoiceItemJSON `json:"items"`
	Total      int               `json:"total"`
	Status     string            `json:"status"`
	IssuedAt   time.Time         `json:"issued_at"`
	PaidAt     *time.Time        `json:"paid_at"`
}

type statusTotalsJSON struct {
	Count       int `json:"count"`
	TotalAmount int `json:"total_amount"`
}

type feesSummaryJSON struct {
	Paid    statusTotalsJSON `json:"paid"`
	Due     statusTotalsJSON `json:"due"`
	Overdue statusTotalsJSON `json:"overdue"`
}

type outboxEntryJSON struct {
	ID              string     `json:"id"`
	ActionType      string     `json:"action_type"`
	Status          string     `json:"status"`
	Attempts        int        `json:"attempts"`
	MaxAttempts     int        `json:"max_attempts"`
	LastAttemptedAt *time.Time `json:"last_attempted_at"`
	CreatedAt       time.Time  `json:"created_at"`
	ExternalID      *string    `json:"external_id"`
	ErrorMessage    *string    `json:"error_message"`
}

// optional maps an empty string to JSON null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// civil renders an instant in the civil zone.
func civil(t time.Time) time.Time {
	return t.In(settings.Clock.Location())
}

// optionalTime maps a zero instant to JSON null.
func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	c := civil(t)
	return &c
}

func toMemberJSON(m member.Member) memberJSON {
	out := memberJSON{
		ID:               m.ID,
		Name:             m.Name,
		Phone:            m.Phone,
		Email:            m.Email,
		MembershipType:   m.MembershipType,
		Batch:            m.Batch,
		Status:           m.Status,
		CreatedAt:        civil(m.CreatedAt),
		WorkoutSchedule:  optional(m.WorkoutSchedule),
		DietChart:        optional(m.DietChart),
		PhotoBase64:      optional(m.Photo),
		IDDocumentBase64: optional(m.IDDocument),
		IDDocumentType:   optional(m.IDDocumentType),
	}
	if m.LastAttendance != nil {
		out.LastAttendanceDate = optional(m.LastAttendance.String())
	}
	return out
}

func toMembersJSON(ms []member.Member) []memberJSON {
	out := make([]memberJSON, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMemberJSON(m))
	}
	return out
}

func toAttendanceJSON(a attendance.Attendance) attendanceJSON {
	return attendanceJSON{
		ID:          a.ID,
		MemberID:    a.MemberID,
		MemberName:  a.MemberName,
		MemberPhone: optional(a.MemberPhone),
		CheckInAt:   civil(a.CheckInTime),
		DateIST:     a.ClassDate,
		Batch:       a.Batch,
		CheckOutAt:  optionalTime(a.CheckOutTime),
	}
}

func toAttendancesJSON(records []attendance.Attendance) []attendanceJSON {
	out := make([]attendanceJSON, 0, len(records))
	for _, a := range records {
		out = append(out, toAttendanceJSON(a))
	}
	return out
}

func toPaymentJSON(p payment.Payment) paymentJSON {
	out := paymentJSON{
		ID:         p.ID,
		MemberID:   p.MemberID,
		MemberName: p.MemberName,
		Amount:     p.Amount,
		FeeType:    p.FeeType,
		Period:     optional(p.Period),
		Status:     p.Status,
		PaidAt:     optionalTime(p.PaidAt),
		CreatedAt:  civil(p.CreatedAt),
	}
	if !p.DueDate.IsZero() {
		out.DueDate = optional(calendar.DateOf(p.DueDate.UTC()).String())
	}
	return out
}

func toPaymentsJSON(ps []payment.Payment) []paymentJSON {
	out := make([]paymentJSON, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPaymentJSON(p))
	}
	return out
}

func toInvoiceJSON(inv invoice.Invoice) invoiceJSON {
	items := make([]invoiceItemJSON, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, invoiceItemJSON{Description: it.Description, Amount: it.Amount})
	}
	return invoiceJSON{
		ID:         inv.ID,
		MemberID:   inv.MemberID,
		MemberName: inv.MemberName,
		Items:      items,
		Total:      inv.Total,
		Status:     inv.Status,
		IssuedAt:   civil(inv.IssuedAt),
		PaidAt:     optionalTime(inv.PaidAt),
	}
}

func toInvoicesJSON(invs []invoice.Invoice) []invoiceJSON {
	out := make([]invoiceJSON, 0, len(invs))
	for _, inv := range invs {
		out = append(out, toInvoiceJSON(inv))
	}
	return out
}

func toFeesSummaryJSON(s payment.Summary) feesSummaryJSON {
	return feesSummaryJSON{
		Paid:    statusTotalsJSON(s.Paid),
		Due:     statusTotalsJSON(s.Due),
		Overdue: statusTotalsJSON(s.Overdue),
	}
}

func toOutboxEntriesJSON(entries []outbox.Entry) []outboxEntryJSON {
	out := make([]outboxEntryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, toOutboxEntryJSON(e))
	}
	return out
}

func toOutboxEntryJSON(e outbox.Entry) outboxEntryJSON {
	return outboxEntryJSON{
		ID:              e.ID,
		ActionType:      e.ActionType,
		Status:          e.Status,
		Attempts:        e.Attempts,
		MaxAttempts:     e.MaxAttempts,
		LastAttemptedAt: optionalTime(e.LastAttemptedAt),
		CreatedAt:       civil(e.CreatedAt),
		ExternalID:      optional(e.ExternalID),
		ErrorMessage:    optional(e.ErrorMessage),
	}
}

// dashboardJSON flattens the dashboard; range fields appear only with a range.
func dashboardJSON(d projections.DashboardResult) map[string]any {
	out := map[string]any{
		"active_members":         d.ActiveMembers,
		"inactive_members":       d.InactiveMembers,
		"regular_count":          d.RegularCount,
		"pt_count":               d.PTCount,
		"pending_fees_amount":    d.PendingFees,
		"total_collections":      d.TotalCollections,
		"today_attendance_count": d.TodayCheckIns,
		"today_check_ins":        d.TodayCheckIns,
		"today_check_outs":       d.TodayCheckOuts,
		"today_currently_in":     d.TodayCurrentlyIn,
	}
	if r := d.Range; r != nil {
		out["attendance_count_in_range"] = r.AttendanceCount
		out["payments_received_in_range"] = r.PaymentsReceived
		out["payments_count_in_range"] = r.PaymentsCount
		out["date_from"] = r.DateFrom
		out["date_to"] = r.DateTo
	}
	return out
}
