package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	appinv "github.com/erp/inventory/internal/application/inventory"
	"github.com/erp/inventory/internal/infrastructure/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReorderScanner runs one reorder-point pass over the active items
type ReorderScanner interface {
	Scan(ctx context.Context) (*appinv.ReorderScanStats, error)
}

// ReorderScanScheduler runs the reorder scan on a cron schedule.
// Runs never overlap: a tick that fires while a scan is still going is skipped.
type ReorderScanScheduler struct {
	schedule   string
	jobTimeout time.Duration
	scanner    ReorderScanner
	logger     *zap.Logger

	cron    *cron.Cron
	entryID cron.EntryID
	mu      sync.Mutex
	running bool
	busy    atomic.Bool
	last    atomic.Pointer[appinv.ReorderScanStats]
}

// NewReorderScanScheduler validates the cron expression and builds the scheduler
func NewReorderScanScheduler(cfg config.SchedulerConfig, scanner ReorderScanner, logger *zap.Logger) (*ReorderScanScheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := cron.ParseStandard(cfg.ReorderScanSchedule); err != nil {
		return nil, fmt.Errorf("%w: reorder_scan_schedule %q: %v", ErrInvalidConfig, cfg.ReorderScanSchedule, err)
	}
	if cfg.JobTimeout <= 0 {
		return nil, fmt.Errorf("%w: job_timeout must be positive", ErrInvalidConfig)
	}
	return &ReorderScanScheduler{
		schedule:   cfg.ReorderScanSchedule,
		jobTimeout: cfg.JobTimeout,
		scanner:    scanner,
		logger:     logger,
		cron:       cron.New(cron.WithLocation(time.UTC), cron.WithLogger(cronLogger{logger})),
	}, nil
}

// Start registers the scan job and starts the cron loop
func (s *ReorderScanScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	id, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.run(context.Background()); err != nil && err != ErrScanInProgress {
			s.logger.Error("Scheduled reorder scan failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reorder scan: %w", err)
	}
	s.entryID = id
	s.cron.Start()
	s.running = true

	s.logger.Info("Reorder scan scheduler started",
		zap.String("schedule", s.schedule),
		zap.Time("next_run", s.cron.Entry(id).Next),
	)
	return nil
}

// Stop halts the cron loop and waits for a running scan or ctx
func (s *ReorderScanScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cron.Remove(s.entryID)
	stopped := s.cron.Stop()
	s.mu.Unlock()

	select {
	case <-stopped.Done():
		s.logger.Info("Reorder scan scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TriggerNow runs a scan immediately outside the schedule
func (s *ReorderScanScheduler) TriggerNow(ctx context.Context) (*appinv.ReorderScanStats, error) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return nil, ErrSchedulerNotRunning
	}
	return s.run(ctx)
}

// LastRun returns the stats of the most recent successful scan, or nil
func (s *ReorderScanScheduler) LastRun() *appinv.ReorderScanStats {
	return s.last.Load()
}

// NextRun returns when the scheduled scan fires next; zero when stopped
func (s *ReorderScanScheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

func (s *ReorderScanScheduler) run(parent context.Context) (*appinv.ReorderScanStats, error) {
	if !s.busy.CompareAndSwap(false, true) {
		s.logger.Warn("Skipping reorder scan, previous run still in progress")
		return nil, ErrScanInProgress
	}
	defer s.busy.Store(false)

	ctx, cancel := context.WithTimeout(parent, s.jobTimeout)
	defer cancel()

	started := time.Now()
	stats, err := s.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	s.last.Store(stats)
	s.logger.Info("Reorder scan finished",
		zap.Int("scanned", stats.Scanned),
		zap.Int("below_reorder", stats.BelowReorder),
		zap.Duration("duration", time.Since(started)),
	)
	return stats, nil
}

// cronLogger routes robfig/cron diagnostics to zap
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, zap.Any("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, zap.Error(err), zap.Any("details", keysAndValues))
}
