package invoice_test

import (
	"testing"
	"time"

	"arena/internal/domain/batch"
	"arena/internal/domain/invoice"
	"arena/internal/domain/member"
	"arena/internal/domain/payment"
)

// TestNewWalkIn tests the two-line walk-in invoice.
func TestNewWalkIn(t *testing.T) {
	issued := time.Date(2025, 5, 5, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		membershipType string
		wantTotal      int
	}{
		{member.TypeRegular, 1500},
		{member.TypePT, 3000},
	}
	for _, tt := range tests {
		t.Run(tt.membershipType, func(t *testing.T) {
			m := member.Member{ID: "m1", Name: "A", MembershipType: tt.membershipType, Batch: batch.Morning}
			inv := invoice.NewWalkIn("inv-1", m, payment.DefaultFees(), issued)
			if len(inv.Items) != 2 {
				t.Fatalf("items = %d, want 2", len(inv.Items))
			}
			if inv.Items[0].Description != invoice.ItemRegistration || inv.Items[1].Description != invoice.ItemFirstMonth {
				t.Errorf("items = %+v", inv.Items)
			}
			if inv.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", inv.Total, tt.wantTotal)
			}
			if inv.Status != invoice.StatusUnpaid {
				t.Errorf("Status = %s, want Unpaid", inv.Status)
			}
			if err := inv.Validate(); err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}

// TestInvoiceValidation tests invariants on stored invoices.
func TestInvoiceValidation(t *testing.T) {
	issued := time.Date(2025, 5, 5, 9, 0, 0, 0, time.UTC)
	items := []invoice.Item{{Description: "x", Amount: 10}}
	tests := []struct {
		name    string
		inv     invoice.Invoice
		wantErr bool
	}{
		{"valid", invoice.Invoice{MemberID: "m", Items: items, Total: 10, Status: invoice.StatusUnpaid, IssuedAt: issued}, false},
		{"no member", invoice.Invoice{Items: items, Total: 10, Status: invoice.StatusUnpaid, IssuedAt: issued}, true},
		{"no items", invoice.Invoice{MemberID: "m", Status: invoice.StatusUnpaid, IssuedAt: issued}, true},
		{"total mismatch", invoice.Invoice{MemberID: "m", Items: items, Total: 11, Status: invoice.StatusUnpaid, IssuedAt: issued}, true},
		{"bad status", invoice.Invoice{MemberID: "m", Items: items, Total: 10, Status: "Void", IssuedAt: issued}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.inv.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestInvoiceMarkPaid tests the single Unpaid -> Paid transition.
func TestInvoiceMarkPaid(t *testing.T) {
	inv := invoice.Invoice{Status: invoice.StatusUnpaid}
	at := time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC)
	if err := inv.MarkPaid(at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Status != invoice.StatusPaid || !inv.PaidAt.Equal(at) {
		t.Errorf("invoice = %+v", inv)
	}
	if err := inv.MarkPaid(at); err != invoice.ErrAlreadyPaid {
		t.Errorf("retry error = %v, want ErrAlreadyPaid", err)
	}
}
