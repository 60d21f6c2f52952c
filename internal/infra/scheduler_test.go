package infra

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketdesk/internal/usecase"
)

type countingRunner struct {
	calls    atomic.Int32
	finished atomic.Int32
	delay    time.Duration
}

func (r *countingRunner) RunCycle(ctx context.Context) (usecase.CycleResult, error) {
	n := r.calls.Add(1)
	time.Sleep(r.delay)
	r.finished.Add(1)
	return usecase.CycleResult{Cycle: uint64(n)}, nil
}

// gatedRunner blocks every cycle until release is closed
type gatedRunner struct {
	countingRunner
	release chan struct{}
}

func (r *gatedRunner) RunCycle(ctx context.Context) (usecase.CycleResult, error) {
	r.calls.Add(1)
	<-r.release
	r.finished.Add(1)
	return usecase.CycleResult{}, nil
}

func TestScheduler_StartDoesNotWaitForInitialCycle(t *testing.T) {
	runner := &gatedRunner{release: make(chan struct{})}
	s := NewScheduler(runner, time.Hour)

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(0), runner.finished.Load())
	assert.Error(t, s.Start(context.Background()))

	close(runner.release)
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, int32(1), runner.finished.Load(), "stop waits for the initial cycle")
}

func TestScheduler_StopTimesOutOnStuckInitialCycle(t *testing.T) {
	runner := &gatedRunner{release: make(chan struct{})}
	defer close(runner.release)
	s := NewScheduler(runner, time.Hour)
	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Stop(ctx), context.DeadlineExceeded)
}

func TestScheduler_Ticks(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for real cron ticks")
	}
	runner := &countingRunner{}
	s := NewScheduler(runner, time.Second)

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return runner.calls.Load() >= 3 }, 4*time.Second, 50*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_StopWaitsForRunningCycle(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for real cron ticks")
	}
	runner := &countingRunner{delay: 700 * time.Millisecond}
	s := NewScheduler(runner, time.Second)

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return runner.calls.Load() == 2 }, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, runner.calls.Load(), runner.finished.Load(), "stop returned while a cycle was running")
}

func TestScheduler_SubSecondPeriod(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, 200*time.Millisecond)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}
