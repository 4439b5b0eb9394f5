package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"

	"github.com/robfig/cron/v3"
)

// Scheduler runs tracking over every wallet on a cron schedule.
// A tick that fires while the previous run is still going is skipped.
type Scheduler struct {
	cron    *cron.Cron
	tracker port.TrackingService
	logger  port.Logger
	now     func() time.Time

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New parses spec (five standard cron fields or a descriptor like "@hourly")
// and registers the tracking job.
func New(spec string, tracker port.TrackingService, l port.Logger) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		tracker: tracker,
		logger:  l,
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
	}
	cl := cronLogger{l}
	s.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid tracker schedule %q: %w", spec, err)
	}
	return s, nil
}

// RunOnce tracks every registered wallet now.
func (s *Scheduler) RunOnce() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	summaries := s.tracker.RunAllWallets(ctx, s.now())
	failed := 0
	for _, sum := range summaries {
		failed += len(sum.Errors)
	}
	s.logger.Info("Scheduled tracking run finished",
		"wallets", len(summaries), "errors", failed, "duration", time.Since(start))
}

// Start begins firing on the schedule.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", "next", s.Next())
}

// Next returns the next scheduled run, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop cancels an in-flight run and waits for it to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type cronLogger struct {
	l port.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
