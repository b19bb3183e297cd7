package notification_test

import (
	"strings"
	"testing"

	"arena/internal/domain/notification"
)

// TestMessageText tests the rendered template texts.
func TestMessageText(t *testing.T) {
	tests := []struct {
		name string
		msg  notification.Message
		want string
	}{
		{"registration", notification.Message{Type: notification.TypeRegistration, MemberName: "Asha"},
			"Welcome to Jupiter Arena, Asha! Your registration is complete."},
		{"payment received", notification.Message{Type: notification.TypePaymentReceived, MemberName: "Asha", Amount: 500},
			"Hi Asha, we received your payment of ₹500. Thank you!"},
		{"fees due", notification.Message{Type: notification.TypeFeesDue, MemberName: "Asha", Amount: 1500},
			"Hi Asha, your pending fee of ₹1500 is due. Please pay at the gym."},
		{"status change", notification.Message{Type: notification.TypeStatusChange, MemberName: "Asha", NewStatus: "Inactive"},
			"Hi Asha, your membership status is now: Inactive."},
		{"missing name", notification.Message{Type: notification.TypeRegistration},
			"Welcome to Jupiter Arena, Member! Your registration is complete."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestMessageValidation tests type and recipient checks.
func TestMessageValidation(t *testing.T) {
	tests := []struct {
		name    string
		msg     notification.Message
		wantErr error
	}{
		{"phone only", notification.Message{Type: notification.TypeFeesDue, Phone: "98"}, nil},
		{"email only", notification.Message{Type: notification.TypeFeesDue, Email: "a@x.com"}, nil},
		{"unknown type", notification.Message{Type: "promo", Phone: "98"}, notification.ErrUnknownType},
		{"no recipient", notification.Message{Type: notification.TypeFeesDue, Phone: " "}, notification.ErrNoRecipient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.msg.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestMessageMarkdown tests that the email body carries the text.
func TestMessageMarkdown(t *testing.T) {
	msg := notification.Message{Type: notification.TypePaymentReceived, MemberName: "Asha", Amount: 2000}
	md := msg.Markdown()
	if !strings.HasPrefix(md, "## Payment received") {
		t.Errorf("Markdown() heading = %q", md)
	}
	if !strings.Contains(md, msg.Text()) {
		t.Error("Markdown() should contain the plain text")
	}
}
