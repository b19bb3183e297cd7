package web

import (
	"bytes"
	"net/http"
	"strconv"

	"arena/internal/adapters/export"
	memberStore "arena/internal/adapters/storage/member"
	paymentStore "arena/internal/adapters/storage/payment"
	invoiceStore "arena/internal/adapters/storage/invoice"
	"arena/internal/application/projections"
)

// handleDashboard handles GET /analytics/dashboard?date_from&date_to
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
	}, projections.GetDashboardDeps{
		MemberStore:     stores.MemberStore,
		AttendanceStore: stores.AttendanceStore,
		PaymentStore:    stores.PaymentStore,
		Clock:           settings.Clock,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardJSON(d))
}

// writeWorkbook buffers the workbook so a failure can still answer 500.
func writeWorkbook(w http.ResponseWriter, sheet export.Sheet) {
	var buf bytes.Buffer
	if err := export.Write(&buf, sheet); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+sheet.Filename)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// handleExportMembers handles GET /export/members
func handleExportMembers(w http.ResponseWriter, r *http.Request) {
	members, err := stores.MemberStore.List(r.Context(), memberStore.ListFilter{Brief: true})
	if err != nil {
		internalError(w, err)
		return
	}
	writeWorkbook(w, export.Members(members))
}

// handleExportPayments handles GET /export/payments
func handleExportPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := stores.PaymentStore.List(r.Context(), paymentStore.ListFilter{})
	if err != nil {
		internalError(w, err)
		return
	}
	writeWorkbook(w, export.Payments(payments, settings.Clock.Location()))
}

// handleExportBilling handles GET /export/billing
func handleExportBilling(w http.ResponseWriter, r *http.Request) {
	invoices, err := stores.InvoiceStore.History(r.Context(), invoiceStore.HistoryFilter{})
	if err != nil {
		internalError(w, err)
		return
	}
	writeWorkbook(w, export.Billing(invoices, settings.Clock.Location()))
}
