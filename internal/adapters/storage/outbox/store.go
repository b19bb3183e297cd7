package outbox

import (
	"context"

	domain "arena/internal/domain/outbox"
)

// Store defines the interface for outbox entry persistence.
type Store interface {
	// GetByID retrieves an outbox entry by its ID.
	// PRE: id is non-empty
	// POST: Returns the entry or an error wrapping domain.ErrNotFound
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save persists an outbox entry to the database.
	// PRE: entity has been validated
	// POST: Entity is persisted (insert or update)
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns entries that still have attempts left.
	// PRE: offset >= 0, limit > 0
	// POST: Returns up to limit entries after skipping offset, ordered by created_at
	ListPending(ctx context.Context, offset, limit int) ([]domain.Entry, error)

	// ListFailed returns entries that spent their attempt budget.
	// PRE: limit > 0
	// POST: Returns up to limit entries ordered by last_attempted_at desc
	ListFailed(ctx context.Context, limit int) ([]domain.Entry, error)
}
