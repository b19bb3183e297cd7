package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"arena/internal/adapters/storage"
	"arena/internal/domain/calendar"
	domain "arena/internal/domain/payment"
)

const columns = "id, member_id, member_name, amount, fee_type, period, status, due_date, paid_at, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new PaymentStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPayment(row scanner) (domain.Payment, error) {
	var entity domain.Payment
	var dueDate, createdAt string
	var paidAt sql.NullString
	err := row.Scan(
		&entity.ID,
		&entity.MemberID,
		&entity.MemberName,
		&entity.Amount,
		&entity.FeeType,
		&entity.Period,
		&entity.Status,
		&dueDate,
		&paidAt,
		&createdAt,
	)
	if err != nil {
		return domain.Payment{}, err
	}
	if entity.DueDate, err = storage.ParseTime(dueDate); err != nil {
		return domain.Payment{}, fmt.Errorf("payment %s due_date: %w", entity.ID, err)
	}
	if entity.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Payment{}, fmt.Errorf("payment %s created_at: %w", entity.ID, err)
	}
	if paidAt.Valid {
		if entity.PaidAt, err = storage.ParseTime(paidAt.String); err != nil {
			return domain.Payment{}, fmt.Errorf("payment %s paid_at: %w", entity.ID, err)
		}
	}
	return entity, nil
}

// GetByID retrieves a Payment by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Payment, error) {
	entity, err := scanPayment(s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM payment WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Payment{}, fmt.Errorf("payment %s: %w", id, domain.ErrNotFound)
	}
	return entity, err
}

// Save persists a Payment to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Payment) error {
	return Insert(ctx, s.db, entity)
}

// Execer is satisfied by *sql.Tx and SQLDB.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Insert upserts entity through ex, so it can join a caller's transaction.
func Insert(ctx context.Context, ex Execer, entity domain.Payment) error {
	fields := strings.Split(columns, ", ")
	placeholders := make([]string, len(fields))
	updates := make([]string, 0, len(fields)-1)
	for i, f := range fields {
		placeholders[i] = "?"
		if f != "id" && f != "created_at" {
			updates = append(updates, f+"=excluded."+f)
		}
	}
	query := fmt.Sprintf(
		"INSERT INTO payment (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		columns, strings.Join(placeholders, ", "), strings.Join(updates, ", "),
	)
	_, err := ex.ExecContext(ctx, query,
		entity.ID,
		entity.MemberID,
		entity.MemberName,
		entity.Amount,
		entity.FeeType,
		entity.Period,
		entity.Status,
		storage.FormatTime(entity.DueDate),
		storage.NullTime(entity.PaidAt),
		storage.FormatTime(entity.CreatedAt),
	)
	return err
}

// List returns payments ordered by created_at descending.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Payment, error) {
	query := "SELECT " + columns + " FROM payment WHERE 1=1"
	var args []any
	if filter.MemberID != "" {
		query += " AND member_id = ?"
		args = append(args, filter.MemberID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Payment{}
	for rows.Next() {
		entity, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// MarkPaid settles a member's Due or Overdue payment with a single
// conditional write, so two concurrent settlements cannot both succeed.
// POST: Returns the updated payment; an error wrapping domain.ErrNotFound if
// no such payment belongs to memberID; domain.ErrAlreadyPaid if it was Paid
func (s *SQLiteStore) MarkPaid(ctx context.Context, id string, memberID string, at time.Time) (domain.Payment, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE payment SET status = ?, paid_at = ? WHERE id = ? AND member_id = ? AND status != ?",
		domain.StatusPaid, storage.FormatTime(at), id, memberID, domain.StatusPaid)
	if err != nil {
		return domain.Payment{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Payment{}, err
	}

	p, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Payment{}, err
	}
	if p.MemberID != memberID {
		return domain.Payment{}, fmt.Errorf("payment %s for member %s: %w", id, memberID, domain.ErrNotFound)
	}
	if n == 0 {
		return domain.Payment{}, domain.ErrAlreadyPaid
	}
	return p, nil
}

// SweepOverdue moves every Due payment whose due date is before today to Overdue.
// POST: Returns the number of payments changed; re-running on the same day returns 0
func (s *SQLiteStore) SweepOverdue(ctx context.Context, today calendar.Date) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE payment SET status = ? WHERE status = ? AND due_date < ?",
		domain.StatusOverdue, domain.StatusDue, storage.FormatTime(today.MidnightUTC()))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Summary groups count and total amount by status.
func (s *SQLiteStore) Summary(ctx context.Context) (domain.Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT status, COUNT(*), COALESCE(SUM(amount), 0) FROM payment GROUP BY status")
	if err != nil {
		return domain.Summary{}, err
	}
	defer rows.Close()

	var sum domain.Summary
	for rows.Next() {
		var status string
		var t domain.StatusTotals
		if err := rows.Scan(&status, &t.Count, &t.TotalAmount); err != nil {
			return domain.Summary{}, err
		}
		switch status {
		case domain.StatusPaid:
			sum.Paid = t
		case domain.StatusDue:
			sum.Due = t
		case domain.StatusOverdue:
			sum.Overdue = t
		}
	}
	return sum, rows.Err()
}

// SumPaidBetween totals Paid payments whose paid_at falls in [start, end].
func (s *SQLiteStore) SumPaidBetween(ctx context.Context, start, end time.Time) (domain.StatusTotals, error) {
	var t domain.StatusTotals
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM payment WHERE status = ? AND paid_at >= ? AND paid_at <= ?",
		domain.StatusPaid, storage.FormatTime(start), storage.FormatTime(end)).Scan(&t.Count, &t.TotalAmount)
	return t, err
}

// OutstandingByMember sums Due and Overdue amounts per member.
func (s *SQLiteStore) OutstandingByMember(ctx context.Context) ([]MemberBalance, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id, SUM(amount) FROM payment WHERE status IN (?, ?) GROUP BY member_id ORDER BY MIN(created_at)",
		domain.StatusDue, domain.StatusOverdue)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []MemberBalance{}
	for rows.Next() {
		var b MemberBalance
		if err := rows.Scan(&b.MemberID, &b.Amount); err != nil {
			return nil, err
		}
		results = append(results, b)
	}
	return results, rows.Err()
}
