package member

import (
	"context"

	"arena/internal/domain/calendar"
	domain "arena/internal/domain/member"
)

// Store persists Member state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Member, error)
	GetByPhone(ctx context.Context, phone string) (domain.Member, error)
	Save(ctx context.Context, value domain.Member) error
	List(ctx context.Context, filter ListFilter) ([]domain.Member, error)
	ListLapsed(ctx context.Context, cutoff calendar.Date) ([]domain.Member, error)
	MarkInactive(ctx context.Context, id string) (bool, error)
	SetLastAttendance(ctx context.Context, id string, d calendar.Date) error
	Count(ctx context.Context, filter CountFilter) (int, error)
}

// ListFilter carries filtering parameters for List operations.
// Members are always ordered newest first.
type ListFilter struct {
	Limit  int
	Offset int
	Status string
	// Brief skips the base64 attachment columns.
	Brief bool
}

// CountFilter narrows Count; empty fields match everything.
type CountFilter struct {
	Status         string
	MembershipType string
}
