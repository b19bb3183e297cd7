package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// SweepDeps bundles the two reconciliation passes.
type SweepDeps struct {
	Inactive     SweepInactiveDeps
	PaymentStore OverdueSweeper
}

// SweepReport summarizes one run of both sweeps.
type SweepReport struct {
	Inactive SweepInactiveResult
	Overdue  int
}

// ExecuteSweeps runs the inactivity sweep, then the overdue sweep.
// Runs at process start, from the scheduler and from the admin CLI.
func ExecuteSweeps(ctx context.Context, deps SweepDeps) (SweepReport, error) {
	inactive, err := ExecuteSweepInactive(ctx, deps.Inactive)
	if err != nil {
		return SweepReport{}, err
	}
	overdue, err := ExecuteSweepOverdue(ctx, deps.PaymentStore, deps.Inactive.Clock)
	if err != nil {
		return SweepReport{Inactive: inactive}, err
	}
	return SweepReport{Inactive: inactive, Overdue: overdue}, nil
}

// sweepTimeout bounds a single scheduled run.
const sweepTimeout = 4 * time.Minute

// NewSweepScheduler returns a stopped cron scheduler that runs both sweeps on
// spec, evaluated in the clock's civil zone. Overlapping runs are skipped.
// PRE: spec is a standard 5-field cron expression
func NewSweepScheduler(spec string, deps SweepDeps) (*cron.Cron, error) {
	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(deps.Inactive.Clock.Location()),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		report, err := ExecuteSweeps(ctx, deps)
		if err != nil {
			slog.Error("sweep_failed", "error", err)
			return
		}
		slog.Info("sweep_event", "event", "scheduled_sweep_done", "inactive", report.Inactive.UpdatedCount, "overdue", report.Overdue)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule sweeps %q: %w", spec, err)
	}
	return c, nil
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron_"+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron_"+msg, append(keysAndValues, "error", err)...)
}
