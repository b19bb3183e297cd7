package web

import (
	"net/http"

	"arena/internal/application/orchestrators"
	"arena/internal/application/projections"
)

type logMonthlyRequest struct {
	MemberID    string `json:"member_id" validate:"required"`
	Period      string `json:"period" validate:"required"`
	Amount      int    `json:"amount" validate:"required"`
	PaymentDate string `json:"payment_date"`
}

type paymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Paid Due Overdue"`
}

func feesQueryDeps() projections.GetFeesDeps {
	return projections.GetFeesDeps{PaymentStore: stores.PaymentStore, Clock: settings.Clock}
}

// handleListPayments handles GET /payments?member_id&status&limit
func handleListPayments(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit", projections.DefaultPaymentListLimit)
	if !ok {
		return
	}
	q := r.URL.Query()
	payments, err := projections.QueryGetPayments(r.Context(), projections.GetPaymentsQuery{
		MemberID: q.Get("member_id"),
		Status:   q.Get("status"),
		Limit:    limit,
	}, feesQueryDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentsJSON(payments))
}

// handleFeesSummary handles GET /payments/fees-summary
func handleFeesSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := projections.QueryFeesSummary(r.Context(), feesQueryDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFeesSummaryJSON(summary))
}

// handleLogMonthly handles POST /payments/log-monthly
func handleLogMonthly(w http.ResponseWriter, r *http.Request) {
	var body logMonthlyRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if _, ok := checkID(w, body.MemberID, "member"); !ok {
		return
	}
	p, err := orchestrators.ExecuteLogMonthly(r.Context(), orchestrators.LogMonthlyInput{
		MemberID:    body.MemberID,
		Period:      body.Period,
		Amount:      body.Amount,
		PaymentDate: body.PaymentDate,
	}, orchestrators.LogMonthlyDeps{
		MemberStore:  stores.MemberStore,
		PaymentStore: stores.PaymentStore,
		Clock:        settings.Clock,
		Fees:         settings.Fees,
		NewID:        generateID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentJSON(p))
}

// handlePayPayment handles POST /payments/pay?member_id&payment_id
func handlePayPayment(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	paymentID, ok := checkID(w, q.Get("payment_id"), "payment")
	if !ok {
		return
	}
	p, err := orchestrators.ExecuteMarkPaymentPaid(r.Context(), orchestrators.MarkPaymentPaidInput{
		PaymentID: paymentID,
		MemberID:  q.Get("member_id"),
	}, orchestrators.MarkPaymentPaidDeps{
		PaymentStore: stores.PaymentStore,
		MemberStore:  stores.MemberStore,
		Notifier:     settings.Notifier,
		Clock:        settings.Clock,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentJSON(p))
}

// handleUpdatePaymentStatus handles PATCH /payments/{id}
func handleUpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "payment")
	if !ok {
		return
	}
	var body paymentStatusRequest
	if !decodeBody(w, r, &body) {
		return
	}
	p, err := orchestrators.ExecuteUpdatePaymentStatus(r.Context(), id, body.Status, orchestrators.UpdatePaymentStatusDeps{
		PaymentStore: stores.PaymentStore,
		Clock:        settings.Clock,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentJSON(p))
}
