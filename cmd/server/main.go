package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	emailPkg "arena/internal/adapters/email"
	web "arena/internal/adapters/http"
	"arena/internal/adapters/http/perf"
	"arena/internal/adapters/notify"
	"arena/internal/adapters/storage"
	attendanceStore "arena/internal/adapters/storage/attendance"
	enrollmentStore "arena/internal/adapters/storage/enrollment"
	invoiceStore "arena/internal/adapters/storage/invoice"
	memberStore "arena/internal/adapters/storage/member"
	outboxStorePkg "arena/internal/adapters/storage/outbox"
	paymentStore "arena/internal/adapters/storage/payment"
	"arena/internal/application/orchestrators"
	"arena/internal/config"
	"arena/internal/domain/outbox"

	"github.com/google/uuid"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_invalid", "error", err.Error())
		os.Exit(1)
	}
	slog.SetDefault(cfg.Logger(os.Stderr))

	if err := run(cfg); err != nil {
		slog.Error("server_failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		return err
	}
	slog.Info("database_ready", "path", cfg.DBPath, "schema", storage.LatestSchemaVersion())

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery)

	stores := &web.Stores{
		MemberStore:     memberStore.NewSQLiteStore(timedDB),
		AttendanceStore: attendanceStore.NewSQLiteStore(timedDB),
		PaymentStore:    paymentStore.NewSQLiteStore(timedDB),
		InvoiceStore:    invoiceStore.NewSQLiteStore(timedDB),
		EnrollmentStore: enrollmentStore.NewSQLiteStore(timedDB),
		OutboxStore:     outboxStorePkg.NewSQLiteStore(timedDB),
	}

	// Configure email sender
	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom, cfg.EmailReplyTo)
		slog.Info("email_sender_configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_sender_configured", "provider", "noop", "detail", "GYM_RESEND_KEY is not set; email delivery is disabled")
		} else {
			slog.Info("email_sender_configured", "provider", "noop")
		}
	}

	dispatcher := notify.NewDispatcher(sender, stores.OutboxStore, notify.Options{
		NewID: func() string { return uuid.New().String() },
	})
	dispatcher.Start(context.Background())
	defer dispatcher.Close()

	clock := cfg.Clock()
	sweepDeps := orchestrators.SweepDeps{
		Inactive: orchestrators.SweepInactiveDeps{
			MemberStore:   stores.MemberStore,
			Notifier:      dispatcher,
			Clock:         clock,
			ThresholdDays: cfg.InactivityDays,
		},
		PaymentStore: stores.PaymentStore,
	}
	report, err := orchestrators.ExecuteSweeps(ctx, sweepDeps)
	if err != nil {
		return err
	}
	slog.Info("sweep_event", "event", "startup_sweep_done", "inactive", report.Inactive.UpdatedCount, "overdue", report.Overdue)

	if cfg.SweepSchedule != "" {
		scheduler, err := orchestrators.NewSweepScheduler(cfg.SweepSchedule, sweepDeps)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
	}

	// Start outbox background worker for retrying failed notification emails
	executors := map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeNotificationEmail: &notify.EmailExecutor{Sender: sender},
	}
	outboxStopCh := make(chan struct{})
	orchestrators.StartBackgroundWorker(orchestrators.NewOutboxProcessor(stores.OutboxStore, executors), time.Minute, outboxStopCh)
	defer close(outboxStopCh)

	handler := web.NewMux(ctx, stores, web.Settings{
		Clock:              clock,
		Fees:               cfg.Fees,
		InactivityDays:     cfg.InactivityDays,
		BatchCapacity:      cfg.BatchCapacity,
		MinAppVersion:      cfg.MinAppVersion,
		APIVersion:         cfg.APIVersion,
		CSRFKey:            cfg.CSRFKey,
		SecureCookies:      cfg.IsProduction(),
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		SlowRequest:        cfg.SlowRequest,
		Notifier:           dispatcher,
		Executors:          executors,
	}, collector)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "zone", cfg.Zone)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
