// Package enrollment writes a new member together with the records that
// must exist alongside it.
package enrollment

import (
	"context"
	"fmt"

	"arena/internal/adapters/storage"
	invoicestore "arena/internal/adapters/storage/invoice"
	memberstore "arena/internal/adapters/storage/member"
	paymentstore "arena/internal/adapters/storage/payment"
	"arena/internal/domain/invoice"
	"arena/internal/domain/member"
	"arena/internal/domain/payment"
)

// Enrollment is everything created by a registration or walk-in.
// Invoice is nil for a plain registration.
type Enrollment struct {
	Member   member.Member
	Payments []payment.Payment
	Invoice  *invoice.Invoice
}

// Store persists an Enrollment atomically.
type Store interface {
	Enroll(ctx context.Context, e Enrollment) error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new enrollment store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Enroll inserts the member, its payments and the optional invoice in one
// transaction.
// PRE: every entity has been validated
// POST: either all rows exist or none do
func (s *SQLiteStore) Enroll(ctx context.Context, e Enrollment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := memberstore.Insert(ctx, tx, e.Member); err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	for _, p := range e.Payments {
		if err := paymentstore.Insert(ctx, tx, p); err != nil {
			return fmt.Errorf("insert payment %s: %w", p.FeeType, err)
		}
	}
	if e.Invoice != nil {
		if err := invoicestore.Insert(ctx, tx, *e.Invoice); err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}
	}
	return tx.Commit()
}
