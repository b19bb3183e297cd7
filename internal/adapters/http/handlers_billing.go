package web

import (
	"net/http"

	"arena/internal/application/orchestrators"
	"arena/internal/application/projections"
)

type walkInRequest struct {
	Name           string `json:"name" validate:"required,max=200"`
	Phone          string `json:"phone" validate:"required,max=20"`
	Email          string `json:"email" validate:"required,email"`
	MembershipType string `json:"membership_type" validate:"required,oneof=Regular PT"`
	Batch          string `json:"batch" validate:"required,oneof=Morning Evening Ladies"`
}

// handleBillingIssue handles POST /billing/issue: a new walk-in member and their first bill.
func handleBillingIssue(w http.ResponseWriter, r *http.Request) {
	var body walkInRequest
	if !decodeBody(w, r, &body) {
		return
	}
	res, err := orchestrators.ExecuteIssueWalkIn(r.Context(), orchestrators.IssueWalkInInput{
		Name:           body.Name,
		Phone:          body.Phone,
		Email:          body.Email,
		MembershipType: body.MembershipType,
		Batch:          body.Batch,
	}, orchestrators.IssueWalkInDeps{
		Enrollment: stores.EnrollmentStore,
		Notifier:   settings.Notifier,
		Clock:      settings.Clock,
		Fees:       settings.Fees,
		NewID:      generateID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceJSON(res.Invoice))
}

// handleBillingHistory handles GET /billing/history?member_id&search&date_from&date_to
func handleBillingHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	invoices, err := projections.QueryGetBillingHistory(r.Context(), projections.GetBillingHistoryQuery{
		MemberID: q.Get("member_id"),
		Search:   q.Get("search"),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
	}, projections.GetBillingHistoryDeps{InvoiceStore: stores.InvoiceStore, Clock: settings.Clock})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoicesJSON(invoices))
}

// handleBillingPay handles POST /billing/pay?invoice_id
func handleBillingPay(w http.ResponseWriter, r *http.Request) {
	id, ok := checkID(w, r.URL.Query().Get("invoice_id"), "invoice")
	if !ok {
		return
	}
	inv, err := orchestrators.ExecuteMarkInvoicePaid(r.Context(), id, orchestrators.MarkInvoicePaidDeps{
		InvoiceStore: stores.InvoiceStore,
		MemberStore:  stores.MemberStore,
		Notifier:     settings.Notifier,
		Clock:        settings.Clock,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceJSON(inv))
}
