package infra

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"pocketdesk/internal/usecase"
)

var log = logrus.WithField("module", "scheduler")

// CycleRunner runs one refresh cycle
type CycleRunner interface {
	RunCycle(ctx context.Context) (usecase.CycleResult, error)
}

// Scheduler drives refresh cycles at a fixed period
type Scheduler struct {
	cron   *cron.Cron
	runner CycleRunner
	period time.Duration

	mu      sync.Mutex
	started bool
	initial sync.WaitGroup
}

// cronLogger routes cron's own messages through logrus
type cronLogger struct {
	entry *logrus.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}

// NewScheduler creates a new scheduler. Periods below one second run every
// second, the finest @every schedule cron supports.
func NewScheduler(runner CycleRunner, period time.Duration) *Scheduler {
	logger := cronLogger{entry: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.SkipIfStillRunning(logger)),
		),
		runner: runner,
		period: period,
	}
}

// Start schedules the periodic cadence and kicks off the initial cycle in the
// background. It returns without waiting for that cycle; the session reports
// loading until it is applied.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("scheduler already started")
	}

	log.Infof("Starting scheduler... [every %s]", s.period)
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.period), func() {
		s.tick(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.tick(ctx)
	}()

	s.cron.Start()
	s.started = true
	log.Info("[OK] Scheduler started successfully")
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	res, err := s.runner.RunCycle(ctx)
	switch {
	case errors.Is(err, usecase.ErrCycleInFlight):
		log.Debug("[CRON] previous cycle still running, skipping tick")
	case err != nil:
		log.Errorf("[ERROR] Refresh cycle failed: %v", err)
	case len(res.Failed) > 0:
		log.Debugf("[CRON] cycle %d: %d read(s) failed", res.Cycle, len(res.Failed))
	}
}

// Stop stops future ticks and waits for a running cycle to finish. The
// running cycle is never aborted.
func (s *Scheduler) Stop(ctx context.Context) error {
	log.Info("Stopping scheduler...")
	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		s.initial.Wait()
		<-cronDone.Done()
		close(done)
	}()

	select {
	case <-done:
		log.Info("[OK] Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to wait for running cycle: %w", ctx.Err())
	}
}
