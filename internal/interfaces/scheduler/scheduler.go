package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"finsync/internal/domain/user"
)

// UserLister lists the users the scheduler fans work out to.
type UserLister interface {
	List(ctx context.Context) ([]*user.User, error)
}

// Config holds the schedules and pool sizing.
type Config struct {
	SyncCron     string
	BalanceCron  string
	Days         int
	WorkerCount  int
	JobDelay     time.Duration
	QueueSize    int
	RunOnStartup bool
}

// Scheduler submits per-user sync and balance jobs to a WorkerPool on cron
// schedules.
type Scheduler struct {
	cron   *cron.Cron
	pool   *WorkerPool
	users  UserLister
	syncer Syncer
	cfg    Config
	log    *zap.Logger
}

// New validates both cron expressions and builds a stopped scheduler.
func New(cfg Config, users UserLister, syncer Syncer, log *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cronLogger{log.Sugar()}))),
		pool:   NewWorkerPool(cfg.WorkerCount, cfg.JobDelay, cfg.QueueSize, log),
		users:  users,
		syncer: syncer,
		cfg:    cfg,
		log:    log,
	}

	if _, err := s.cron.AddFunc(cfg.SyncCron, func() { s.triggerSync() }); err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", cfg.SyncCron, err)
	}
	if _, err := s.cron.AddFunc(cfg.BalanceCron, func() { s.triggerBalances() }); err != nil {
		return nil, fmt.Errorf("invalid balance schedule %q: %w", cfg.BalanceCron, err)
	}

	return s, nil
}

// Start launches the worker pool and the cron loop.
func (s *Scheduler) Start() {
	s.pool.Start()
	s.cron.Start()

	s.log.Info("scheduler started",
		zap.String("sync_schedule", s.cfg.SyncCron),
		zap.String("balance_schedule", s.cfg.BalanceCron),
		zap.Int("workers", s.cfg.WorkerCount))

	if s.cfg.RunOnStartup {
		go s.triggerSync()
	}
}

// triggerSync queues a sync job for every user and returns how many were
// accepted.
func (s *Scheduler) triggerSync() int {
	return s.run("sync", s.syncJobs)
}

func (s *Scheduler) triggerBalances() int {
	return s.run("balances", s.balanceJobs)
}

// Shutdown stops scheduling, then drains the pool within timeout.
func (s *Scheduler) Shutdown(timeout time.Duration) {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(timeout):
		s.log.Warn("timed out waiting for cron entries to finish")
	}

	s.pool.Shutdown(timeout)
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) run(name string, build func(users []*user.User) []Job) int {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	users, err := s.users.List(ctx)
	if err != nil {
		s.log.Error("scheduler could not list users", zap.String("run", name), zap.Error(err))
		return 0
	}
	if len(users) == 0 {
		s.log.Info("scheduler found no users", zap.String("run", name))
		return 0
	}

	return s.pool.SubmitBatch(build(users))
}

func (s *Scheduler) syncJobs(users []*user.User) []Job {
	jobs := make([]Job, 0, len(users))
	for _, u := range users {
		jobs = append(jobs, NewUserSyncJob(u.ID, s.cfg.Days, s.syncer, s.log))
	}
	return jobs
}

func (s *Scheduler) balanceJobs(users []*user.User) []Job {
	jobs := make([]Job, 0, len(users))
	for _, u := range users {
		jobs = append(jobs, NewBalanceSnapshotJob(u.ID, s.syncer, s.log))
	}
	return jobs
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
