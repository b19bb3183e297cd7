package payment

import (
	"errors"
	"time"

	"arena/internal/domain/calendar"
	"arena/internal/domain/member"
)

// Status constants for the payment lifecycle.
const (
	StatusDue     = "Due"
	StatusOverdue = "Overdue"
	StatusPaid    = "Paid"
)

// Fee type constants.
const (
	FeeRegistration = "registration"
	FeeMonthly      = "monthly"
)

// Domain errors
var (
	ErrAlreadyPaid   = errors.New("already paid")
	ErrNotFound      = errors.New("payment not found")
	ErrInvalidStatus = errors.New("status must be 'Paid', 'Due', or 'Overdue'")
)

// FeeSchedule holds the fee tiers in whole rupees.
type FeeSchedule struct {
	Registration   int
	MonthlyRegular int
	MonthlyPT      int
}

// DefaultFees returns the tiers of the source deployment.
func DefaultFees() FeeSchedule {
	return FeeSchedule{Registration: 1000, MonthlyRegular: 500, MonthlyPT: 2000}
}

// Monthly returns the monthly fee for a membership type.
func (f FeeSchedule) Monthly(membershipType string) int {
	if membershipType == member.TypePT {
		return f.MonthlyPT
	}
	return f.MonthlyRegular
}

// IsMonthlyTier reports whether amount is one of the two permitted monthly tiers.
func (f FeeSchedule) IsMonthlyTier(amount int) bool {
	return amount == f.MonthlyRegular || amount == f.MonthlyPT
}

// Payment is a single fee obligation.
// INVARIANT: PaidAt is set iff Status == Paid
type Payment struct {
	ID         string
	MemberID   string
	MemberName string // denormalized at creation
	Amount     int
	FeeType    string
	Period     string // YYYY-MM, monthly fees only
	Status     string
	DueDate    time.Time // civil date persisted as a UTC instant
	PaidAt     time.Time
	CreatedAt  time.Time
}

// Validate checks if the Payment has valid data.
// PRE: Payment struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (p *Payment) Validate() error {
	if p.MemberID == "" {
		return errors.New("payment must be associated with a member")
	}
	if p.Amount <= 0 {
		return errors.New("payment amount must be positive")
	}
	switch p.FeeType {
	case FeeRegistration:
		if p.Period != "" {
			return errors.New("registration fee has no period")
		}
	case FeeMonthly:
		if !IsPeriod(p.Period) {
			return errors.New("monthly fee period must be YYYY-MM")
		}
	default:
		return errors.New("fee type must be 'registration' or 'monthly'")
	}
	if !IsValidStatus(p.Status) {
		return ErrInvalidStatus
	}
	if (p.Status == StatusPaid) != !p.PaidAt.IsZero() {
		return errors.New("paid_at must be set exactly when status is Paid")
	}
	return nil
}

// IsValidStatus reports whether s is a known status.
func IsValidStatus(s string) bool {
	return s == StatusDue || s == StatusOverdue || s == StatusPaid
}

// IsPeriod reports whether s has the YYYY-MM shape.
func IsPeriod(s string) bool {
	_, err := time.Parse(calendar.PeriodLayout, s)
	return err == nil && len(s) == 7
}

// IsOutstanding reports whether the payment still awaits settlement.
func (p *Payment) IsOutstanding() bool {
	return p.Status == StatusDue || p.Status == StatusOverdue
}

// IsOverdueOn reports whether a Due payment's due date has passed on today.
func (p *Payment) IsOverdueOn(today calendar.Date) bool {
	return p.Status == StatusDue && calendar.DateOf(p.DueDate.UTC()).Before(today)
}

// MarkPaid settles an outstanding payment.
// PRE: Status is Due or Overdue
// POST: Status = Paid, PaidAt = at
func (p *Payment) MarkPaid(at time.Time) error {
	if p.Status == StatusPaid {
		return ErrAlreadyPaid
	}
	p.Status = StatusPaid
	p.PaidAt = at
	return nil
}

// SetStatus applies an admin correction. Any status other than Paid clears PaidAt.
// PRE: status is a known status
func (p *Payment) SetStatus(status string, at time.Time) error {
	if !IsValidStatus(status) {
		return ErrInvalidStatus
	}
	p.Status = status
	if status != StatusPaid {
		p.PaidAt = time.Time{}
	} else if p.PaidAt.IsZero() {
		p.PaidAt = at
	}
	return nil
}

// NewEnrollmentPair builds the registration and first-month payments that
// accompany every new member. Both are Due today.
// POST: returns exactly two payments; IDs come from newID
func NewEnrollmentPair(m member.Member, fees FeeSchedule, today calendar.Date, now time.Time, newID func() string) []Payment {
	due := today.MidnightUTC()
	return []Payment{
		{
			ID:         newID(),
			MemberID:   m.ID,
			MemberName: m.Name,
			Amount:     fees.Registration,
			FeeType:    FeeRegistration,
			Status:     StatusDue,
			DueDate:    due,
			CreatedAt:  now,
		},
		{
			ID:         newID(),
			MemberID:   m.ID,
			MemberName: m.Name,
			Amount:     fees.Monthly(m.MembershipType),
			FeeType:    FeeMonthly,
			Period:     today.Period(),
			Status:     StatusDue,
			DueDate:    due,
			CreatedAt:  now,
		},
	}
}

// StatusTotals is a per-status count and amount.
type StatusTotals struct {
	Count       int
	TotalAmount int
}

// Summary groups totals by status.
type Summary struct {
	Paid    StatusTotals
	Due     StatusTotals
	Overdue StatusTotals
}
