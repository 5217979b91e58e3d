// Package scheduler runs the periodic channel sync using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/orris-inc/channelsync/internal/application/channel/usecases"
	"github.com/orris-inc/channelsync/internal/shared/biztime"
	"github.com/orris-inc/channelsync/internal/shared/logger"
)

// SyncRunner performs one pass over every active channel.
type SyncRunner interface {
	SyncAll(ctx context.Context) (*usecases.SyncReport, error)
}

// SchedulerManager owns the gocron scheduler. Cron expressions are evaluated
// in the business timezone.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	// a pass is already running; the startup job and the cron job never overlap
	syncing atomic.Bool

	started   bool
	startedMu sync.RWMutex
}

func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterChannelSyncJobs registers the daily sync at cronExpr and, when
// runOnStartup is set, a one-shot pass as soon as the scheduler starts.
func (m *SchedulerManager) RegisterChannelSyncJobs(runner SyncRunner, cronExpr string, runOnStartup bool) error {
	_, err := m.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			m.runSync(context.Background(), runner, "cron")
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("channel", "sync"),
		gocron.WithName("channel-sync"),
	)
	if err != nil {
		return err
	}

	if runOnStartup {
		_, err = m.scheduler.NewJob(
			gocron.OneTimeJob(gocron.OneTimeJobStartImmediately()),
			gocron.NewTask(func() {
				m.runSync(context.Background(), runner, "startup")
			}),
			gocron.WithTags("channel", "sync", "startup"),
			gocron.WithName("channel-sync-startup"),
		)
		if err != nil {
			return err
		}
	}

	m.logger.Infow("registered channel sync jobs",
		"cron", cronExpr,
		"timezone", biztime.Location().String(),
		"run_on_startup", runOnStartup,
	)
	return nil
}

func (m *SchedulerManager) runSync(ctx context.Context, runner SyncRunner, trigger string) {
	if !m.syncing.CompareAndSwap(false, true) {
		m.logger.Warnw("channel sync already running, skipping", "trigger", trigger)
		return
	}
	defer m.syncing.Store(false)

	startTime := biztime.NowUTC()
	m.logger.Infow("channel sync started", "trigger", trigger)

	report, err := runner.SyncAll(ctx)
	if err != nil {
		m.logger.Errorw("channel sync failed",
			"trigger", trigger,
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Infow("channel sync completed",
		"trigger", trigger,
		"total", report.Total,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"deactivated", report.Deactivated,
		"duration", time.Since(startTime),
	)
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop waits for running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
