package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	emailPkg "arena/internal/adapters/email"
	"arena/internal/adapters/notify"
	"arena/internal/adapters/storage"
	memberStore "arena/internal/adapters/storage/member"
	outboxStore "arena/internal/adapters/storage/outbox"
	paymentStore "arena/internal/adapters/storage/payment"
	"arena/internal/application/orchestrators"
	"arena/internal/config"
	"arena/internal/domain/outbox"
)

// app holds what every subcommand needs once the root pre-run has opened it.
type app struct {
	cfg      config.Config
	db       *sql.DB
	members  *memberStore.SQLiteStore
	payments *paymentStore.SQLiteStore
	outbox   *outboxStore.SQLiteStore
	sender   emailPkg.Sender
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "gymctl",
		Short:         "Operator tasks for the gym backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.AddCommand(
		a.migrateCmd(),
		a.sweepCmd(),
		a.sweepInactiveCmd(),
		a.sweepOverdueCmd(),
		a.feeRemindersCmd(),
		a.seedInactiveCmd(),
		a.outboxFlushCmd(),
	)
	return root
}

// open loads configuration and brings the database to the latest schema.
func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(cfg.Logger(cmd.ErrOrStderr()))

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		db.Close()
		return err
	}
	a.cfg = cfg
	a.db = db
	a.members = memberStore.NewSQLiteStore(db)
	a.payments = paymentStore.NewSQLiteStore(db)
	a.outbox = outboxStore.NewSQLiteStore(db)
	if cfg.ResendKey != "" {
		a.sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom, cfg.EmailReplyTo)
	} else {
		a.sender = emailPkg.NewNoopSender()
	}
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// withNotifier runs fn with a started dispatcher and drains it afterwards.
func (a *app) withNotifier(cmd *cobra.Command, fn func(orchestrators.Notifier) error) error {
	d := notify.NewDispatcher(a.sender, a.outbox, notify.Options{
		NewID: func() string { return uuid.New().String() },
	})
	d.Start(cmd.Context())
	defer d.Close()
	return fn(d)
}

func (a *app) inactiveDeps(n orchestrators.Notifier) orchestrators.SweepInactiveDeps {
	return orchestrators.SweepInactiveDeps{
		MemberStore:   a.members,
		Notifier:      n,
		Clock:         a.cfg.Clock(),
		ThresholdDays: a.cfg.InactivityDays,
	}
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := storage.SchemaVersion(a.db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
			return nil
		},
	}
}

func (a *app) sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run the inactivity and overdue sweeps",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withNotifier(cmd, func(n orchestrators.Notifier) error {
				report, err := orchestrators.ExecuteSweeps(cmd.Context(), orchestrators.SweepDeps{
					Inactive:     a.inactiveDeps(n),
					PaymentStore: a.payments,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "inactive: %d (cutoff %s)\noverdue: %d\n",
					report.Inactive.UpdatedCount, report.Inactive.Cutoff, report.Overdue)
				return nil
			})
		},
	}
}

func (a *app) sweepInactiveCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "sweep-inactive",
		Short: "Mark members with no recent attendance Inactive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withNotifier(cmd, func(n orchestrators.Notifier) error {
				deps := a.inactiveDeps(n)
				if days > 0 {
					deps.ThresholdDays = days
				}
				res, err := orchestrators.ExecuteSweepInactive(cmd.Context(), deps)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated %d member(s); cutoff %s\n", res.UpdatedCount, res.Cutoff)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "inactivity threshold in days (default from config)")
	return cmd
}

func (a *app) sweepOverdueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-overdue",
		Short: "Move past-due payments to Overdue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := orchestrators.ExecuteSweepOverdue(cmd.Context(), a.payments, a.cfg.Clock())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "marked %d payment(s) Overdue\n", n)
			return nil
		},
	}
}

func (a *app) feeRemindersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fee-reminders",
		Short: "Queue a fees-due reminder for every member with unpaid fees",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withNotifier(cmd, func(n orchestrators.Notifier) error {
				sent, err := orchestrators.ExecuteFeeReminders(cmd.Context(), orchestrators.FeeRemindersDeps{
					PaymentStore: a.payments,
					MemberStore:  a.members,
					Notifier:     n,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), orchestrators.FeeRemindersMessage(sent))
				return nil
			})
		},
	}
}

func (a *app) seedInactiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-inactive-test",
		Short: "Insert two members whose last check-in is past the inactivity threshold",
		RunE: func(cmd *cobra.Command, _ []string) error {
			seeded, err := orchestrators.ExecuteSeedInactiveTestMembers(cmd.Context(), orchestrators.SeedInactiveDeps{
				MemberStore:   a.members,
				Clock:         a.cfg.Clock(),
				ThresholdDays: a.cfg.InactivityDays,
			})
			if err != nil {
				return err
			}
			for _, m := range seeded {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", m.ID, m.Name)
			}
			return nil
		},
	}
}

func (a *app) outboxFlushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outbox-flush",
		Short: "Attempt every pending outbox delivery whose backoff has elapsed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			processor := orchestrators.NewOutboxProcessor(a.outbox, map[string]orchestrators.ActionExecutor{
				outbox.ActionTypeNotificationEmail: &notify.EmailExecutor{Sender: a.sender},
			})
			if err := processor.ProcessPending(cmd.Context()); err != nil {
				return err
			}
			failed, err := a.outbox.ListFailed(cmd.Context(), 100)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d entr(ies) permanently failed\n", len(failed))
			return nil
		},
	}
}
