package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/frahmantamala/admin-dashboard/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/robfig/cron/v3"
)

type fakeMaintenance struct {
	purged     int
	reported   int
	lastWindow time.Duration
	err        error
}

func (f *fakeMaintenance) PurgeResetTokens(ctx context.Context) (int64, error) {
	f.purged++
	return 3, f.err
}

func (f *fakeMaintenance) ReportExpired(ctx context.Context, window time.Duration) (int, error) {
	f.reported++
	f.lastWindow = window
	return 1, f.err
}

var _ = Describe("worker jobs", func() {
	var (
		lg  *slog.Logger
		svc *fakeMaintenance
	)

	BeforeEach(func() {
		lg = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
		svc = &fakeMaintenance{}
	})

	It("schedules both jobs", func() {
		c := cron.New()
		err := scheduleJobs(c, internal.WorkerConfig{PurgeSchedule: "@hourly", ExpiryReportSchedule: "@daily"}, lg, svc)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Entries()).To(HaveLen(2))

		for _, e := range c.Entries() {
			e.Job.Run()
		}
		Expect(svc.purged).To(Equal(1))
		Expect(svc.reported).To(Equal(1))
		Expect(svc.lastWindow).To(Equal(expiryReportWindow))
	})

	It("rejects a malformed schedule", func() {
		err := scheduleJobs(cron.New(), internal.WorkerConfig{PurgeSchedule: "every tuesday", ExpiryReportSchedule: "@daily"}, lg, svc)
		Expect(err).To(MatchError(ContainSubstring("purge schedule")))
	})

	It("keeps running when a job fails", func() {
		svc.err = errors.New("db down")
		Expect(func() {
			runPurge(lg, svc)
			runExpiryReport(lg, svc)
		}).NotTo(Panic())
		Expect(svc.purged).To(Equal(1))
	})
})
