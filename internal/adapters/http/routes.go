package web

import "net/http"

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleRoot)
	mux.HandleFunc("GET /version", handleVersion)

	// Members
	mux.HandleFunc("POST /members", handleCreateMember)
	mux.HandleFunc("GET /members", handleListMembers)
	mux.HandleFunc("GET /members/{id}", handleGetMember)
	// by-phone/{phone} and {id}/attendance-stats overlap as mux patterns.
	mux.HandleFunc("GET /members/{id}/{sub}", handleMemberSubresource)
	mux.HandleFunc("PATCH /members/{id}", handleUpdateMember)
	mux.HandleFunc("PATCH /members/{id}/photo", handleUpdateMemberPhoto)
	mux.HandleFunc("PATCH /members/{id}/id-document", handleUpdateMemberIDDocument)

	// Attendance
	mux.HandleFunc("POST /attendance/check-in/{id}", handleCheckIn)
	mux.HandleFunc("POST /attendance/check-out/{id}", handleCheckOut)
	mux.HandleFunc("GET /attendance/today", handleAttendanceToday)
	mux.HandleFunc("GET /attendance/by-date", handleAttendanceByDate)
	mux.HandleFunc("GET /attendance/by-date-range", handleAttendanceByDateRange)
	mux.HandleFunc("GET /attendance/summary", handleAttendanceSummary)
	mux.HandleFunc("DELETE /attendance/{id}", handleDeleteAttendance)

	// Payments
	mux.HandleFunc("GET /payments", handleListPayments)
	mux.HandleFunc("GET /payments/fees-summary", handleFeesSummary)
	mux.HandleFunc("POST /payments/log-monthly", handleLogMonthly)
	mux.HandleFunc("POST /payments/pay", handlePayPayment)
	mux.HandleFunc("PATCH /payments/{id}", handleUpdatePaymentStatus)

	// Billing
	mux.HandleFunc("POST /billing/issue", handleBillingIssue)
	mux.HandleFunc("GET /billing/history", handleBillingHistory)
	mux.HandleFunc("POST /billing/pay", handleBillingPay)

	// Reporting
	mux.HandleFunc("GET /analytics/dashboard", handleDashboard)
	mux.HandleFunc("GET /export/members", handleExportMembers)
	mux.HandleFunc("GET /export/payments", handleExportPayments)
	mux.HandleFunc("GET /export/billing", handleExportBilling)

	// Admin
	mux.HandleFunc("POST /admin/mark-inactive-by-attendance", handleMarkInactiveByAttendance)
	mux.HandleFunc("POST /admin/run-fee-reminders", handleRunFeeReminders)
	mux.HandleFunc("POST /admin/seed-inactive-test", handleSeedInactiveTest)
	mux.HandleFunc("GET /admin/lapsing-members", handleLapsingMembers)
	mux.HandleFunc("GET /admin/perf", handleAdminPerf)
	mux.HandleFunc("GET /admin/outbox", handleAdminOutboxList)
	mux.HandleFunc("POST /admin/outbox/{id}/{action}", handleAdminOutboxAction)
}
