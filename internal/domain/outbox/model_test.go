package outbox_test

import (
	"errors"
	"testing"
	"time"

	"arena/internal/domain/outbox"
)

// TestEntryValidation tests required fields and the attempts default.
func TestEntryValidation(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	e := outbox.Entry{ActionType: outbox.ActionTypeNotificationEmail, Payload: "{}", CreatedAt: created}
	if err := e.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if e.MaxAttempts != outbox.DefaultMaxAttempts {
		t.Errorf("MaxAttempts = %d, want %d", e.MaxAttempts, outbox.DefaultMaxAttempts)
	}
	if err := (&outbox.Entry{Payload: "{}", CreatedAt: created}).Validate(); err != outbox.ErrEmptyActionType {
		t.Errorf("missing action type = %v", err)
	}
	if err := (&outbox.Entry{ActionType: "x", CreatedAt: created}).Validate(); err != outbox.ErrEmptyPayload {
		t.Errorf("missing payload = %v", err)
	}
}

// TestEntryLifecycle tests attempt accounting up to the failure limit.
func TestEntryLifecycle(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	e := outbox.Entry{Status: outbox.StatusPending, MaxAttempts: 2}

	e.MarkAttempt(at)
	e.MarkFailed(errors.New("boom"))
	if e.Status != outbox.StatusRetrying || !e.CanRetry() || e.IsTerminal() {
		t.Fatalf("after 1 failure: %+v", e)
	}

	e.MarkAttempt(at)
	e.MarkFailed(errors.New("boom"))
	if e.Status != outbox.StatusFailed || e.CanRetry() || !e.IsTerminal() {
		t.Fatalf("after 2 failures: %+v", e)
	}
	if e.ErrorMessage != "boom" {
		t.Errorf("ErrorMessage = %q", e.ErrorMessage)
	}

	ok := outbox.Entry{Status: outbox.StatusPending, MaxAttempts: 2}
	ok.MarkAttempt(at)
	ok.MarkSuccess("msg-1")
	if !ok.IsTerminal() || ok.ExternalID != "msg-1" {
		t.Errorf("after success: %+v", ok)
	}
}

// TestEntryBackoff tests exponential delay and due checks.
func TestEntryBackoff(t *testing.T) {
	base, max := 30*time.Second, 10*time.Minute
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, 30 * time.Second},
		{1, time.Minute},
		{3, 4 * time.Minute},
		{10, max},
		{64, max},
	}
	for _, tt := range tests {
		e := outbox.Entry{Attempts: tt.attempts}
		if got := e.NextRetryDelay(base, max); got != tt.want {
			t.Errorf("attempts=%d: delay = %v, want %v", tt.attempts, got, tt.want)
		}
	}

	last := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	e := outbox.Entry{Attempts: 1, LastAttemptedAt: last}
	if e.IsDue(last.Add(59*time.Second), base, max) {
		t.Error("expected not due inside the backoff window")
	}
	if !e.IsDue(last.Add(time.Minute), base, max) {
		t.Error("expected due once the window elapses")
	}
	if !(&outbox.Entry{}).IsDue(last, base, max) {
		t.Error("never-attempted entries are always due")
	}
}
