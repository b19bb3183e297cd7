package invoice

import (
	"context"
	"time"

	domain "arena/internal/domain/invoice"
)

// Store persists Invoice state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Invoice, error)
	Save(ctx context.Context, value domain.Invoice) error
	MarkPaid(ctx context.Context, id string, at time.Time) (domain.Invoice, error)
	History(ctx context.Context, filter HistoryFilter) ([]domain.Invoice, error)
}

// HistoryFilter narrows History. Zero fields match everything.
type HistoryFilter struct {
	MemberID string
	// Search matches member_name case-insensitively, or the invoice id exactly.
	Search string
	From   time.Time // inclusive, on issued_at
	To     time.Time // inclusive, on issued_at
}
