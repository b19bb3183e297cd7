package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"arena/internal/domain/apperr"
	domain "arena/internal/domain/outbox"
)

// OutboxStore is the persistence the processor needs.
type OutboxStore interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	Save(ctx context.Context, e domain.Entry) error
	ListPending(ctx context.Context, offset, limit int) ([]domain.Entry, error)
	ListFailed(ctx context.Context, limit int) ([]domain.Entry, error)
}

// ActionExecutor executes a specific type of external action.
type ActionExecutor interface {
	// Execute runs the external action with the given payload.
	// Returns the provider's ID for the delivered action and any error.
	Execute(ctx context.Context, payload string) (string, error)
}

// OutboxProcessor retries deliveries that failed on their first attempt.
type OutboxProcessor struct {
	store     OutboxStore
	executors map[string]ActionExecutor
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
	now       func() time.Time
}

// NewOutboxProcessor creates a new outbox processor.
func NewOutboxProcessor(store OutboxStore, executors map[string]ActionExecutor) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		baseDelay: 30 * time.Second,
		maxDelay:  1 * time.Hour,
		batchSize: 10,
		now:       time.Now,
	}
}

// WithClock replaces the processor's time source.
func (p *OutboxProcessor) WithClock(now func() time.Time) *OutboxProcessor {
	p.now = now
	return p
}

// ProcessPending processes pending outbox entries whose backoff has elapsed.
// PRE: Context is valid
// POST: Due entries are attempted once; results are saved
func (p *OutboxProcessor) ProcessPending(ctx context.Context) error {
	entries, err := p.dueEntries(ctx)
	if err != nil {
		return fmt.Errorf("list pending outbox entries: %w", err)
	}

	for _, entry := range entries {
		if err := p.processEntry(ctx, entry); err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "error", err.Error())
		}
	}
	return nil
}

// dueEntries pages through pending entries until a batch whose backoff has
// elapsed is collected, so entries still waiting never hide ready ones.
// Pages are read before any entry is attempted, keeping offsets stable.
func (p *OutboxProcessor) dueEntries(ctx context.Context) ([]domain.Entry, error) {
	now := p.now()
	due := []domain.Entry{}
	for offset := 0; len(due) < p.batchSize; offset += p.batchSize {
		page, err := p.store.ListPending(ctx, offset, p.batchSize)
		if err != nil {
			return nil, err
		}
		for _, entry := range page {
			if len(due) == p.batchSize {
				break
			}
			if entry.IsDue(now, p.baseDelay, p.maxDelay) {
				due = append(due, entry)
			}
		}
		if len(page) < p.batchSize {
			break
		}
	}
	return due, nil
}

func (p *OutboxProcessor) processEntry(ctx context.Context, entry domain.Entry) error {
	executor, ok := p.executors[entry.ActionType]
	if !ok {
		entry.MarkAttempt(p.now())
		entry.MarkFailed(fmt.Errorf("no executor registered for action type: %s", entry.ActionType))
		return p.store.Save(ctx, entry)
	}

	entry.MarkAttempt(p.now())
	externalID, err := executor.Execute(ctx, entry.Payload)
	if err != nil {
		entry.MarkFailed(err)
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "error", err.Error())
	} else {
		entry.MarkSuccess(externalID)
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	}
	return p.store.Save(ctx, entry)
}

// ProcessSingle manually processes a single outbox entry (for admin retry).
// Backoff is ignored and a failed entry gets one more attempt past its budget.
// PRE: entryID is non-empty
// POST: Entry is attempted once and returned with its new status
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) (domain.Entry, error) {
	entry, err := p.get(ctx, entryID)
	if err != nil {
		return domain.Entry{}, err
	}
	if entry.Status == domain.StatusDone || entry.Status == domain.StatusAbandoned {
		return domain.Entry{}, apperr.InvalidState("Outbox entry is %s and cannot be retried", entry.Status)
	}
	executor, ok := p.executors[entry.ActionType]
	if !ok {
		return domain.Entry{}, apperr.InvalidState("No executor registered for action type %s", entry.ActionType)
	}

	entry.MarkAttempt(p.now())
	externalID, err := executor.Execute(ctx, entry.Payload)
	if err != nil {
		entry.MarkFailed(err)
	} else {
		entry.MarkSuccess(externalID)
	}
	slog.Info("outbox_manual_retry", "entry_id", entry.ID, "status", entry.Status, "attempt", entry.Attempts)
	if err := p.store.Save(ctx, entry); err != nil {
		return domain.Entry{}, err
	}
	return entry, nil
}

// AbandonEntry marks an entry as abandoned by admin.
// PRE: entryID is non-empty
// POST: Entry status set to abandoned
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) (domain.Entry, error) {
	entry, err := p.get(ctx, entryID)
	if err != nil {
		return domain.Entry{}, err
	}
	if entry.Status == domain.StatusDone {
		return domain.Entry{}, apperr.InvalidState("Outbox entry was already delivered")
	}
	entry.MarkAbandoned()
	slog.Info("outbox_abandoned", "entry_id", entry.ID, "action_type", entry.ActionType)
	if err := p.store.Save(ctx, entry); err != nil {
		return domain.Entry{}, err
	}
	return entry, nil
}

// ListEntries returns pending entries, or failed ones when failed is true.
func (p *OutboxProcessor) ListEntries(ctx context.Context, failed bool, limit int) ([]domain.Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	if failed {
		return p.store.ListFailed(ctx, limit)
	}
	return p.store.ListPending(ctx, 0, limit)
}

func (p *OutboxProcessor) get(ctx context.Context, entryID string) (domain.Entry, error) {
	entry, err := p.store.GetByID(ctx, entryID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Entry{}, apperr.NotFound("Outbox entry not found")
	}
	if err != nil {
		return domain.Entry{}, fmt.Errorf("get outbox entry: %w", err)
	}
	return entry, nil
}

// StartBackgroundWorker starts a background goroutine that periodically processes pending outbox entries.
// PRE: stopCh is provided to signal shutdown
// POST: Worker runs until stopCh is closed
func StartBackgroundWorker(processor *OutboxProcessor, interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				if err := processor.ProcessPending(ctx); err != nil {
					slog.Error("outbox_background_process_failed", "error", err.Error())
				}
				cancel()
			case <-stopCh:
				slog.Info("outbox_background_worker_stopped")
				return
			}
		}
	}()
}
