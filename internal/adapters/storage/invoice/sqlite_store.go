package invoice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"arena/internal/adapters/storage"
	domain "arena/internal/domain/invoice"
)

const columns = "id, member_id, member_name, items, total, status, issued_at, paid_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new InvoiceStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// itemRow is the persisted shape of a line item.
type itemRow struct {
	Description string `json:"description"`
	Amount      int    `json:"amount"`
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row scanner) (domain.Invoice, error) {
	var entity domain.Invoice
	var items, issuedAt string
	var paidAt sql.NullString
	err := row.Scan(
		&entity.ID,
		&entity.MemberID,
		&entity.MemberName,
		&items,
		&entity.Total,
		&entity.Status,
		&issuedAt,
		&paidAt,
	)
	if err != nil {
		return domain.Invoice{}, err
	}
	var rows []itemRow
	if err := json.Unmarshal([]byte(items), &rows); err != nil {
		return domain.Invoice{}, fmt.Errorf("invoice %s items: %w", entity.ID, err)
	}
	entity.Items = make([]domain.Item, len(rows))
	for i, r := range rows {
		entity.Items[i] = domain.Item{Description: r.Description, Amount: r.Amount}
	}
	if entity.IssuedAt, err = storage.ParseTime(issuedAt); err != nil {
		return domain.Invoice{}, fmt.Errorf("invoice %s issued_at: %w", entity.ID, err)
	}
	if paidAt.Valid {
		if entity.PaidAt, err = storage.ParseTime(paidAt.String); err != nil {
			return domain.Invoice{}, fmt.Errorf("invoice %s paid_at: %w", entity.ID, err)
		}
	}
	return entity, nil
}

// GetByID retrieves an Invoice by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	entity, err := scanInvoice(s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM invoice WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Invoice{}, fmt.Errorf("invoice %s: %w", id, domain.ErrNotFound)
	}
	return entity, err
}

// Save persists an Invoice to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Invoice) error {
	return Insert(ctx, s.db, entity)
}

// Execer is satisfied by *sql.Tx and SQLDB.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Insert upserts entity through ex, so it can join a caller's transaction.
func Insert(ctx context.Context, ex Execer, entity domain.Invoice) error {
	rows := make([]itemRow, len(entity.Items))
	for i, it := range entity.Items {
		rows[i] = itemRow{Description: it.Description, Amount: it.Amount}
	}
	items, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode invoice items: %w", err)
	}
	_, err = ex.ExecContext(ctx,
		`INSERT INTO invoice (`+columns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   member_id=excluded.member_id, member_name=excluded.member_name, items=excluded.items,
		   total=excluded.total, status=excluded.status, paid_at=excluded.paid_at`,
		entity.ID,
		entity.MemberID,
		entity.MemberName,
		string(items),
		entity.Total,
		entity.Status,
		storage.FormatTime(entity.IssuedAt),
		storage.NullTime(entity.PaidAt),
	)
	return err
}

// MarkPaid settles an Unpaid invoice with a conditional write.
// POST: Returns the updated invoice; an error wrapping domain.ErrNotFound if
// absent; domain.ErrAlreadyPaid if it was already Paid
func (s *SQLiteStore) MarkPaid(ctx context.Context, id string, at time.Time) (domain.Invoice, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE invoice SET status = ?, paid_at = ? WHERE id = ? AND status != ?",
		domain.StatusPaid, storage.FormatTime(at), id, domain.StatusPaid)
	if err != nil {
		return domain.Invoice{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Invoice{}, err
	}
	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if n == 0 {
		return domain.Invoice{}, domain.ErrAlreadyPaid
	}
	return inv, nil
}

// History returns invoices matching filter, newest issued first.
func (s *SQLiteStore) History(ctx context.Context, filter HistoryFilter) ([]domain.Invoice, error) {
	var where []string
	var args []any
	if filter.MemberID != "" {
		where = append(where, "member_id = ?")
		args = append(args, filter.MemberID)
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		where = append(where, "(LOWER(member_name) LIKE ? ESCAPE '\\' OR id = ?)")
		args = append(args, "%"+escapeLike(strings.ToLower(q))+"%", q)
	}
	if !filter.From.IsZero() {
		where = append(where, "issued_at >= ?")
		args = append(args, storage.FormatTime(filter.From))
	}
	if !filter.To.IsZero() {
		where = append(where, "issued_at <= ?")
		args = append(args, storage.FormatTime(filter.To))
	}

	query := "SELECT " + columns + " FROM invoice"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY issued_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Invoice{}
	for rows.Next() {
		entity, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// escapeLike makes a user search term literal inside a LIKE pattern.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
