package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"arena/internal/adapters/storage"
	domain "arena/internal/domain/attendance"
)

const columns = "id, member_id, member_name, member_phone, check_in_at, check_out_at, class_date, batch"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AttendanceStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttendance(row scanner) (domain.Attendance, error) {
	var entity domain.Attendance
	var checkIn string
	var checkOut sql.NullString
	err := row.Scan(
		&entity.ID,
		&entity.MemberID,
		&entity.MemberName,
		&entity.MemberPhone,
		&checkIn,
		&checkOut,
		&entity.ClassDate,
		&entity.Batch,
	)
	if err != nil {
		return domain.Attendance{}, err
	}
	if entity.CheckInTime, err = storage.ParseTime(checkIn); err != nil {
		return domain.Attendance{}, fmt.Errorf("attendance %s check_in_at: %w", entity.ID, err)
	}
	if checkOut.Valid {
		if entity.CheckOutTime, err = storage.ParseTime(checkOut.String); err != nil {
			return domain.Attendance{}, fmt.Errorf("attendance %s check_out_at: %w", entity.ID, err)
		}
	}
	return entity, nil
}

// GetByID retrieves an Attendance by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Attendance, error) {
	entity, err := scanAttendance(s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM attendance WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Attendance{}, fmt.Errorf("attendance %s: %w", id, domain.ErrNotFound)
	}
	return entity, err
}

// GetByMemberAndDate retrieves the member's record for a civil date.
// POST: Returns the entity or an error wrapping domain.ErrNotFound
func (s *SQLiteStore) GetByMemberAndDate(ctx context.Context, memberID string, date string) (domain.Attendance, error) {
	entity, err := scanAttendance(s.db.QueryRowContext(ctx,
		"SELECT "+columns+" FROM attendance WHERE member_id = ? AND class_date = ?", memberID, date))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Attendance{}, fmt.Errorf("attendance for %s on %s: %w", memberID, date, domain.ErrNotFound)
	}
	return entity, err
}

// Insert stores a new check-in.
// PRE: entity has been validated
// POST: Returns an error wrapping domain.ErrDuplicateDay if the member
// already has a record for entity.ClassDate
func (s *SQLiteStore) Insert(ctx context.Context, entity domain.Attendance) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO attendance ("+columns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		entity.ID,
		entity.MemberID,
		entity.MemberName,
		entity.MemberPhone,
		storage.FormatTime(entity.CheckInTime),
		storage.NullTime(entity.CheckOutTime),
		entity.ClassDate,
		entity.Batch,
	)
	if storage.IsUniqueViolation(err) {
		return fmt.Errorf("member %s on %s: %w", entity.MemberID, entity.ClassDate, domain.ErrDuplicateDay)
	}
	return err
}

// CheckOut sets the check-out instant once.
// POST: Returns domain.ErrAlreadyCheckedOut if a check-out was already
// recorded, or an error wrapping domain.ErrNotFound if id is unknown
func (s *SQLiteStore) CheckOut(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE attendance SET check_out_at = ? WHERE id = ? AND check_out_at IS NULL",
		storage.FormatTime(at), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrAlreadyCheckedOut
}

// Delete removes an Attendance record.
// POST: Returns an error wrapping domain.ErrNotFound if nothing was deleted
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM attendance WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("attendance %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListByDateRange returns records with startDate <= class_date <= endDate,
// ordered by (class_date, batch, check_in_at).
func (s *SQLiteStore) ListByDateRange(ctx context.Context, startDate string, endDate string) ([]domain.Attendance, error) {
	return s.query(ctx,
		"SELECT "+columns+" FROM attendance WHERE class_date >= ? AND class_date <= ? ORDER BY class_date, batch, check_in_at",
		startDate, endDate)
}

// ListByMemberID returns a member's records, oldest first.
func (s *SQLiteStore) ListByMemberID(ctx context.Context, memberID string) ([]domain.Attendance, error) {
	return s.query(ctx,
		"SELECT "+columns+" FROM attendance WHERE member_id = ? ORDER BY class_date, check_in_at", memberID)
}

// CountByDateAndBatch counts check-ins in one batch on one civil date.
func (s *SQLiteStore) CountByDateAndBatch(ctx context.Context, date string, batch string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attendance WHERE class_date = ? AND batch = ?", date, batch).Scan(&n)
	return n, err
}

// CountDay counts check-ins and check-outs for one civil date.
func (s *SQLiteStore) CountDay(ctx context.Context, date string) (DayCounts, error) {
	var c DayCounts
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(check_out_at) FROM attendance WHERE class_date = ?", date).
		Scan(&c.CheckIns, &c.CheckOuts)
	return c, err
}

// CountByDateRange counts records with startDate <= class_date <= endDate.
func (s *SQLiteStore) CountByDateRange(ctx context.Context, startDate string, endDate string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attendance WHERE class_date >= ? AND class_date <= ?", startDate, endDate).Scan(&n)
	return n, err
}

// CountCheckInsBetween counts check-ins whose instant falls in [start, end].
func (s *SQLiteStore) CountCheckInsBetween(ctx context.Context, start, end time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attendance WHERE check_in_at >= ? AND check_in_at <= ?",
		storage.FormatTime(start), storage.FormatTime(end)).Scan(&n)
	return n, err
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]domain.Attendance, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Attendance{}
	for rows.Next() {
		entity, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
