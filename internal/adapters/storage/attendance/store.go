package attendance

import (
	"context"
	"time"

	domain "arena/internal/domain/attendance"
)

// Store persists Attendance state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Attendance, error)
	GetByMemberAndDate(ctx context.Context, memberID string, date string) (domain.Attendance, error)
	Insert(ctx context.Context, value domain.Attendance) error
	CheckOut(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	ListByDateRange(ctx context.Context, startDate string, endDate string) ([]domain.Attendance, error)
	ListByMemberID(ctx context.Context, memberID string) ([]domain.Attendance, error)
	CountByDateAndBatch(ctx context.Context, date string, batch string) (int, error)
	CountDay(ctx context.Context, date string) (DayCounts, error)
	CountByDateRange(ctx context.Context, startDate string, endDate string) (int, error)
	CountCheckInsBetween(ctx context.Context, start, end time.Time) (int, error)
}

// DayCounts splits a day's records by check-out state.
type DayCounts struct {
	CheckIns  int
	CheckOuts int
}

// CurrentlyIn is the number of members checked in but not yet out.
func (c DayCounts) CurrentlyIn() int {
	return c.CheckIns - c.CheckOuts
}
