package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/activity"
	activityPostgres "github.com/frahmantamala/admin-dashboard/internal/activity/postgres"
	"github.com/frahmantamala/admin-dashboard/internal/core/events"
	"github.com/frahmantamala/admin-dashboard/internal/invitation"
	invitationPostgres "github.com/frahmantamala/admin-dashboard/internal/invitation/postgres"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

const (
	jobTimeout         = 5 * time.Minute
	expiryReportWindow = 24 * time.Hour
)

var workerRunOnce bool

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run scheduled maintenance jobs",
	Long:  `Purge spent password reset tokens and report invitations that expired unaccepted.`,
	Run: func(cmd *cobra.Command, args []string) {
		startWorker()
	},
}

// maintenance is the part of the invitation service the jobs drive.
type maintenance interface {
	PurgeResetTokens(ctx context.Context) (int64, error)
	ReportExpired(ctx context.Context, window time.Duration) (int, error)
}

func startWorker() {
	cfg, lg, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		lg.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	gormDB, err := initGorm(db, lg)
	if err != nil {
		lg.Error("failed to initialize orm", "error", err)
		os.Exit(1)
	}

	bus := events.NewEventBus(lg)
	recorder := activity.NewService(activityPostgres.NewActivityRepository(gormDB), lg, nil)
	svc := invitation.NewService(invitationPostgres.NewInvitationRepository(gormDB), recorder, bus, lg, cfg.Security.InvitationTTL)

	if workerRunOnce {
		runPurge(lg, svc)
		runExpiryReport(lg, svc)
		return
	}

	c := cron.New(cron.WithChain(
		cron.Recover(cron.PrintfLogger(slog.NewLogLogger(lg.Handler(), slog.LevelError))),
	))
	if err := scheduleJobs(c, cfg.Worker, lg, svc); err != nil {
		lg.Error("failed to schedule jobs", "error", err)
		os.Exit(1)
	}

	c.Start()
	lg.Info("worker started",
		"purge_schedule", cfg.Worker.PurgeSchedule,
		"expiry_report_schedule", cfg.Worker.ExpiryReportSchedule)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	lg.Info("received signal, shutting down worker", "signal", sig)

	// wait for running jobs
	ctx := c.Stop()
	select {
	case <-ctx.Done():
		lg.Info("worker shutdown complete")
	case <-time.After(30 * time.Second):
		lg.Warn("shutdown timeout reached, forcing exit")
	}
}

func scheduleJobs(c *cron.Cron, cfg internal.WorkerConfig, lg *slog.Logger, svc maintenance) error {
	if _, err := c.AddFunc(cfg.PurgeSchedule, func() { runPurge(lg, svc) }); err != nil {
		return fmt.Errorf("purge schedule %q: %w", cfg.PurgeSchedule, err)
	}
	if _, err := c.AddFunc(cfg.ExpiryReportSchedule, func() { runExpiryReport(lg, svc) }); err != nil {
		return fmt.Errorf("expiry report schedule %q: %w", cfg.ExpiryReportSchedule, err)
	}
	return nil
}

func runPurge(lg *slog.Logger, svc maintenance) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	n, err := svc.PurgeResetTokens(ctx)
	if err != nil {
		lg.Error("purge job failed", "error", err)
		return
	}
	lg.Info("purge job finished", "deleted", n, "duration_ms", time.Since(start).Milliseconds())
}

func runExpiryReport(lg *slog.Logger, svc maintenance) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := svc.ReportExpired(ctx, expiryReportWindow)
	if err != nil {
		lg.Error("expiry report job failed", "error", err)
		return
	}
	lg.Info("expiry report job finished", "expired", n)
}

func init() {
	workerCmd.Flags().BoolVar(&workerRunOnce, "once", false, "run every job once and exit")
}
