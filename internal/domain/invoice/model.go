package invoice

import (
	"errors"
	"time"

	"arena/internal/domain/member"
	"arena/internal/domain/payment"
)

// Status constants for the invoice lifecycle.
const (
	StatusUnpaid = "Unpaid"
	StatusPaid   = "Paid"
)

// Line item descriptions for a walk-in invoice.
const (
	ItemRegistration = "Registration"
	ItemFirstMonth   = "First Month"
)

// Domain errors
var (
	ErrAlreadyPaid = errors.New("invoice already paid")
	ErrNotFound    = errors.New("invoice not found")
)

// Item is a single invoice line.
type Item struct {
	Description string
	Amount      int
}

// Invoice records a walk-in billing event. It settles independently of the
// Payment records created alongside it.
// INVARIANT: Total == sum of Items[i].Amount
type Invoice struct {
	ID         string
	MemberID   string
	MemberName string
	Items      []Item
	Total      int
	Status     string
	IssuedAt   time.Time
	PaidAt     time.Time
}

// NewWalkIn builds the two-line invoice for a new walk-in member.
// POST: Status = Unpaid, Total = registration + first month
func NewWalkIn(id string, m member.Member, fees payment.FeeSchedule, issuedAt time.Time) Invoice {
	items := []Item{
		{Description: ItemRegistration, Amount: fees.Registration},
		{Description: ItemFirstMonth, Amount: fees.Monthly(m.MembershipType)},
	}
	return Invoice{
		ID:         id,
		MemberID:   m.ID,
		MemberName: m.Name,
		Items:      items,
		Total:      Sum(items),
		Status:     StatusUnpaid,
		IssuedAt:   issuedAt,
	}
}

// Sum totals the line items.
func Sum(items []Item) int {
	total := 0
	for _, it := range items {
		total += it.Amount
	}
	return total
}

// Validate checks if the Invoice has valid data.
// PRE: Invoice struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (i *Invoice) Validate() error {
	if i.MemberID == "" {
		return errors.New("invoice must be associated with a member")
	}
	if len(i.Items) == 0 {
		return errors.New("invoice must have at least one item")
	}
	if i.Total != Sum(i.Items) {
		return errors.New("invoice total must equal the sum of its items")
	}
	if i.Status != StatusUnpaid && i.Status != StatusPaid {
		return errors.New("status must be 'Unpaid' or 'Paid'")
	}
	if i.IssuedAt.IsZero() {
		return errors.New("issued_at must be set")
	}
	return nil
}

// MarkPaid settles the invoice.
// PRE: Status is Unpaid
// POST: Status = Paid, PaidAt = at
func (i *Invoice) MarkPaid(at time.Time) error {
	if i.Status == StatusPaid {
		return ErrAlreadyPaid
	}
	i.Status = StatusPaid
	i.PaidAt = at
	return nil
}
