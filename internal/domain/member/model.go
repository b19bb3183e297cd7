package member

import (
	"errors"
	"strings"
	"time"

	"arena/internal/domain/batch"
	"arena/internal/domain/calendar"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 200
	MaxPhoneLength = 20
)

// Business rule constants
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
	TypeRegular    = "Regular"
	TypePT         = "PT"
)

// Domain errors
var (
	ErrAlreadyInactive = errors.New("member is already inactive")
	ErrNotFound        = errors.New("member not found")
)

// Member holds state for the concept.
// Status is stored, not derived live: the inactivity sweep and admin edits
// are its only writers, and a new check-in never flips Inactive back to Active.
type Member struct {
	ID              string
	Name            string
	Phone           string
	Email           string
	MembershipType  string
	Batch           string
	Status          string
	CreatedAt       time.Time
	LastAttendance  *calendar.Date // civil date of the latest check-in
	WorkoutSchedule string
	DietChart       string
	Photo           string // base64
	IDDocument      string // base64
	IDDocumentType  string
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Email must contain '@', Name and Phone must not be empty
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("member name cannot be empty")
	}
	if len(m.Name) > MaxNameLength {
		return errors.New("member name cannot exceed 200 characters")
	}
	if strings.TrimSpace(m.Phone) == "" {
		return errors.New("member phone cannot be empty")
	}
	if len(m.Phone) > MaxPhoneLength {
		return errors.New("member phone cannot exceed 20 characters")
	}
	if !strings.Contains(m.Email, "@") {
		return errors.New("member email must be valid")
	}
	if !IsValidType(m.MembershipType) {
		return errors.New("membership type must be 'Regular' or 'PT'")
	}
	if !batch.IsValid(m.Batch) {
		return errors.New("batch must be 'Morning', 'Evening', or 'Ladies'")
	}
	if m.Status != StatusActive && m.Status != StatusInactive {
		return errors.New("status must be 'Active' or 'Inactive'")
	}
	return nil
}

// IsValidType reports whether t is a known membership type.
func IsValidType(t string) bool {
	return t == TypeRegular || t == TypePT
}

// NormalizePhone trims surrounding whitespace from a phone number.
func NormalizePhone(phone string) string {
	return strings.TrimSpace(phone)
}

// IsActive returns true if the member is currently active.
// INVARIANT: Status field is not mutated
func (m *Member) IsActive() bool {
	return m.Status == StatusActive
}

// RecordAttendance stamps the civil date of a check-in.
// POST: LastAttendance = d; Status is untouched
func (m *Member) RecordAttendance(d calendar.Date) {
	m.LastAttendance = &d
}

// IsLapsed reports whether the member's last attendance is strictly older than
// the cutoff date. Members who never attended are never lapsed.
func (m *Member) IsLapsed(cutoff calendar.Date) bool {
	if m.LastAttendance == nil {
		return false
	}
	return m.LastAttendance.Before(cutoff)
}

// MarkInactive applies the sweep transition Active -> Inactive.
// PRE: Member is not already inactive
// POST: Status is set to inactive
func (m *Member) MarkInactive() error {
	if m.Status == StatusInactive {
		return ErrAlreadyInactive
	}
	m.Status = StatusInactive
	return nil
}

// InactivityCutoff returns the earliest last-attendance date that still
// counts as active for the given threshold.
func InactivityCutoff(today calendar.Date, thresholdDays int) calendar.Date {
	return today.AddDays(-thresholdDays)
}
