package projections

import (
	"context"
	"strings"

	invoicestore "arena/internal/adapters/storage/invoice"
	"arena/internal/domain/calendar"
	domainInvoice "arena/internal/domain/invoice"
)

// GetBillingHistoryQuery carries input for the billing history projection.
// Malformed dates are ignored rather than rejected.
type GetBillingHistoryQuery struct {
	MemberID string
	Search   string // member name substring or exact invoice id
	DateFrom string // YYYY-MM-DD, civil zone
	DateTo   string // YYYY-MM-DD, civil zone
}

// GetBillingHistoryDeps holds dependencies for the billing history projection.
type GetBillingHistoryDeps struct {
	InvoiceStore InvoiceStore
	Clock        calendar.Clock
}

// QueryGetBillingHistory lists invoices newest first.
func QueryGetBillingHistory(ctx context.Context, query GetBillingHistoryQuery, deps GetBillingHistoryDeps) ([]domainInvoice.Invoice, error) {
	filter := invoicestore.HistoryFilter{
		MemberID: query.MemberID,
		Search:   strings.TrimSpace(query.Search),
	}
	if d, err := calendar.ParseDate(query.DateFrom); err == nil {
		filter.From, _ = deps.Clock.DayBounds(d)
	}
	if d, err := calendar.ParseDate(query.DateTo); err == nil {
		_, filter.To = deps.Clock.DayBounds(d)
	}
	return deps.InvoiceStore.History(ctx, filter)
}
