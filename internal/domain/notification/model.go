package notification

import (
	"errors"
	"fmt"
	"strings"
)

// Type constants for notification templates.
const (
	TypeRegistration    = "registration"
	TypePaymentReceived = "payment_received"
	TypeFeesDue         = "fees_due"
	TypeStatusChange    = "status_change"
)

// GymName appears in welcome messages.
const GymName = "Jupiter Arena"

// Domain errors
var (
	ErrUnknownType = errors.New("unknown notification type")
	ErrNoRecipient = errors.New("notification needs a phone or email")
)

// Message is a notification addressed to one member. Amount and NewStatus
// are the template variables for Type.
type Message struct {
	Type       string
	MemberID   string
	MemberName string
	Phone      string
	Email      string
	Amount     int    // payment_received, fees_due
	NewStatus  string // status_change
}

// Validate checks if the Message has valid data.
// PRE: Message struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (m *Message) Validate() error {
	if !IsKnownType(m.Type) {
		return ErrUnknownType
	}
	if strings.TrimSpace(m.Phone) == "" && strings.TrimSpace(m.Email) == "" {
		return ErrNoRecipient
	}
	return nil
}

// IsKnownType reports whether t names a template.
func IsKnownType(t string) bool {
	switch t {
	case TypeRegistration, TypePaymentReceived, TypeFeesDue, TypeStatusChange:
		return true
	}
	return false
}

// Text renders the plain message body.
// PRE: Type is known
func (m *Message) Text() string {
	name := m.MemberName
	if name == "" {
		name = "Member"
	}
	switch m.Type {
	case TypeRegistration:
		return fmt.Sprintf("Welcome to %s, %s! Your registration is complete.", GymName, name)
	case TypePaymentReceived:
		return fmt.Sprintf("Hi %s, we received your payment of ₹%d. Thank you!", name, m.Amount)
	case TypeFeesDue:
		return fmt.Sprintf("Hi %s, your pending fee of ₹%d is due. Please pay at the gym.", name, m.Amount)
	case TypeStatusChange:
		return fmt.Sprintf("Hi %s, your membership status is now: %s.", name, m.NewStatus)
	}
	return ""
}

// Subject is the email subject line for the message.
func (m *Message) Subject() string {
	switch m.Type {
	case TypeRegistration:
		return "Welcome to " + GymName
	case TypePaymentReceived:
		return "Payment received"
	case TypeFeesDue:
		return "Fee reminder"
	case TypeStatusChange:
		return "Membership status update"
	}
	return GymName
}

// Markdown renders the email body as markdown.
func (m *Message) Markdown() string {
	return fmt.Sprintf("## %s\n\n%s\n\n*%s*\n", m.Subject(), m.Text(), GymName)
}
