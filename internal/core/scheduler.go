package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/baxromumarov/gig-crawler/internal/config"
	"github.com/baxromumarov/gig-crawler/internal/observability"
	"github.com/baxromumarov/gig-crawler/internal/project"
)

// Runner crawls a set of listing pages for one platform.
type Runner interface {
	Run(ctx context.Context, listingURLs []string) (Summary, error)
}

// Expirer drops stored listings past the retention window.
type Expirer interface {
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type SchedulerOption func(*Scheduler)

// WithRetention adds a daily job deleting listings older than d.
func WithRetention(e Expirer, d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if e != nil && d > 0 {
			s.expirer = e
			s.retention = d
		}
	}
}

func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// Scheduler re-runs every configured target on a cron spec.
type Scheduler struct {
	cron      *cron.Cron
	spec      string
	targets   []config.Target
	runners   map[project.Platform]Runner
	expirer   Expirer
	retention time.Duration
	logger    *slog.Logger
	running   sync.Mutex
}

func NewScheduler(spec string, targets []config.Target, runners map[project.Platform]Runner, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		spec:    spec,
		targets: targets,
		runners: runners,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "scheduler")
	s.cron = cron.New(cron.WithLogger(cron.PrintfLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug))))
	return s
}

// Start registers the jobs, starts the cron loop and runs one cycle
// immediately without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return &config.ConfigurationError{Input: s.spec, Reason: "invalid schedule", Err: err}
	}
	if s.expirer != nil {
		if _, err := s.cron.AddFunc("@daily", func() { s.cleanup(ctx) }); err != nil {
			return fmt.Errorf("register retention job: %w", err)
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "spec", s.spec, "targets", len(s.targets))

	go s.RunOnce(ctx)
	if s.expirer != nil {
		go s.cleanup(ctx)
	}
	return nil
}

// Stop halts the cron loop. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("scheduler stopped")
	return s.cron.Stop()
}

// RunOnce crawls every target in order. A failing target is logged and the
// cycle moves on. Overlapping cycles are skipped.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if !s.running.TryLock() {
		s.logger.Warn("previous crawl cycle still running, skipping")
		return
	}
	defer s.running.Unlock()

	s.logger.Info("crawl cycle started", "targets", len(s.targets))
	failed := 0
	for _, t := range s.targets {
		if ctx.Err() != nil {
			return
		}
		runner, ok := s.runners[t.Platform]
		if !ok {
			failed++
			s.logger.Error("no crawler for target", "platform", string(t.Platform))
			continue
		}
		summary, err := runner.Run(ctx, t.URLs)
		if err != nil {
			failed++
			s.logger.Error("crawl target failed",
				"platform", string(t.Platform),
				"error_type", observability.Classify(err),
				"error", err,
			)
			continue
		}
		s.logger.Info("crawl target done",
			"platform", string(t.Platform),
			"fetched", summary.Fetched,
			"hidden", summary.Hidden,
		)
	}
	s.logger.Info("crawl cycle complete", "targets", len(s.targets), "failed", failed)
}

func (s *Scheduler) cleanup(ctx context.Context) {
	n, err := s.expirer.DeleteExpired(ctx, s.retention)
	if err != nil {
		s.logger.Error("retention cleanup failed", "error", err)
		return
	}
	s.logger.Info("retention cleanup done", "deleted", n)
}
