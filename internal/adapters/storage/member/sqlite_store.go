package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"arena/internal/adapters/storage"
	"arena/internal/domain/calendar"
	domain "arena/internal/domain/member"
)

const fullColumns = "id, name, phone, email, membership_type, batch, status, created_at, last_attendance_date, workout_schedule, diet_chart, photo, id_document, id_document_type"

// briefColumns blanks the attachment columns so list pages stay small.
const briefColumns = "id, name, phone, email, membership_type, batch, status, created_at, last_attendance_date, workout_schedule, diet_chart, '', '', ''"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new MemberStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(row scanner) (domain.Member, error) {
	var entity domain.Member
	var createdAt string
	var lastAttendance sql.NullString
	err := row.Scan(
		&entity.ID,
		&entity.Name,
		&entity.Phone,
		&entity.Email,
		&entity.MembershipType,
		&entity.Batch,
		&entity.Status,
		&createdAt,
		&lastAttendance,
		&entity.WorkoutSchedule,
		&entity.DietChart,
		&entity.Photo,
		&entity.IDDocument,
		&entity.IDDocumentType,
	)
	if err != nil {
		return domain.Member{}, err
	}
	if entity.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Member{}, fmt.Errorf("member %s created_at: %w", entity.ID, err)
	}
	if lastAttendance.Valid {
		t, err := storage.ParseTime(lastAttendance.String)
		if err != nil {
			return domain.Member{}, fmt.Errorf("member %s last_attendance_date: %w", entity.ID, err)
		}
		d := calendar.DateOf(t)
		entity.LastAttendance = &d
	}
	return entity, nil
}

func lastAttendanceValue(d *calendar.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return storage.NullTime(d.MidnightUTC())
}

// GetByID retrieves a Member by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+fullColumns+" FROM member WHERE id = ?", id)
	entity, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, fmt.Errorf("member %s: %w", id, domain.ErrNotFound)
	}
	return entity, err
}

// GetByPhone retrieves the oldest Member stored with exactly this phone.
// PRE: phone is non-empty
// POST: Returns the entity or an error wrapping domain.ErrNotFound
func (s *SQLiteStore) GetByPhone(ctx context.Context, phone string) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+fullColumns+" FROM member WHERE phone = ? ORDER BY created_at LIMIT 1", phone)
	entity, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, fmt.Errorf("member with phone %q: %w", phone, domain.ErrNotFound)
	}
	return entity, err
}

// Save persists a Member to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Member) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := Insert(ctx, tx, entity); err != nil {
		return err
	}
	return tx.Commit()
}

// Execer is satisfied by *sql.Tx and SQLDB.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Insert upserts entity through ex, so it can join a caller's transaction.
func Insert(ctx context.Context, ex Execer, entity domain.Member) error {
	fields := strings.Split(fullColumns, ", ")
	placeholders := make([]string, len(fields))
	updates := make([]string, 0, len(fields)-1)
	for i, f := range fields {
		placeholders[i] = "?"
		if f != "id" && f != "created_at" {
			updates = append(updates, f+"=excluded."+f)
		}
	}

	query := fmt.Sprintf(
		"INSERT INTO member (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err := ex.ExecContext(ctx, query,
		entity.ID,
		entity.Name,
		entity.Phone,
		entity.Email,
		entity.MembershipType,
		entity.Batch,
		entity.Status,
		storage.FormatTime(entity.CreatedAt),
		lastAttendanceValue(entity.LastAttendance),
		entity.WorkoutSchedule,
		entity.DietChart,
		entity.Photo,
		entity.IDDocument,
		entity.IDDocumentType,
	)
	return err
}

// List returns members ordered by created_at descending.
// POST: Returns at most filter.Limit members after skipping filter.Offset
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Member, error) {
	columns := fullColumns
	if filter.Brief {
		columns = briefColumns
	}
	query := "SELECT " + columns + " FROM member"
	var args []any
	if filter.Status != "" {
		query += " WHERE status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}
	return s.query(ctx, query, args...)
}

// ListLapsed returns Active members whose last attendance is strictly before cutoff.
// Members that never attended are excluded.
func (s *SQLiteStore) ListLapsed(ctx context.Context, cutoff calendar.Date) ([]domain.Member, error) {
	return s.query(ctx,
		"SELECT "+briefColumns+" FROM member WHERE last_attendance_date IS NOT NULL AND last_attendance_date < ? AND status != ? ORDER BY created_at",
		storage.FormatTime(cutoff.MidnightUTC()), domain.StatusInactive)
}

// MarkInactive flips one member to Inactive.
// POST: Returns true if the row changed; false if it was already Inactive
func (s *SQLiteStore) MarkInactive(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE member SET status = ? WHERE id = ? AND status != ?",
		domain.StatusInactive, id, domain.StatusInactive)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// SetLastAttendance stamps the civil date of a check-in without touching status.
func (s *SQLiteStore) SetLastAttendance(ctx context.Context, id string, d calendar.Date) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE member SET last_attendance_date = ? WHERE id = ?",
		storage.FormatTime(d.MidnightUTC()), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("member %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Count returns the number of members matching filter.
func (s *SQLiteStore) Count(ctx context.Context, filter CountFilter) (int, error) {
	query := "SELECT COUNT(*) FROM member WHERE 1=1"
	var args []any
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.MembershipType != "" {
		query += " AND membership_type = ?"
		args = append(args, filter.MembershipType)
	}
	var n int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]domain.Member, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Member{}
	for rows.Next() {
		entity, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
