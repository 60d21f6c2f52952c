package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"pocketdesk/internal/domain"
)

// ErrCycleInFlight is returned when a refresh is requested while one runs
var ErrCycleInFlight = errors.New("refresh cycle already in flight")

// CycleResult summarizes one refresh cycle
type CycleResult struct {
	Cycle   uint64
	Applied []string
	Failed  map[string]error
}

// SyncService runs refresh cycles of one source against a session
type SyncService struct {
	session     *Session
	source      domain.Source
	readTimeout time.Duration
	running     atomic.Bool
	log         *logrus.Entry
}

// NewSyncService creates a new SyncService. Every read of a cycle gets at most
// readTimeout, normally one refresh period.
func NewSyncService(session *Session, source domain.Source, readTimeout time.Duration) *SyncService {
	return &SyncService{
		session:     session,
		source:      source,
		readTimeout: readTimeout,
		log:         logrus.WithFields(logrus.Fields{"module": "sync", "source": source.Name()}),
	}
}

type readResult struct {
	patch domain.Patch
	err   error
}

// RunCycle fetches every read of the source concurrently, then applies the
// successful ones in read order and publishes the next snapshot. A failed
// read keeps its slice of the previous snapshot.
func (s *SyncService) RunCycle(ctx context.Context) (CycleResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return CycleResult{}, ErrCycleInFlight
	}
	defer s.running.Store(false)

	prev := s.session.Snapshot()
	reads := s.source.Reads()
	results := make([]readResult, len(reads))

	var wg sync.WaitGroup
	for i, r := range reads {
		wg.Add(1)
		go func(i int, r domain.Read) {
			defer wg.Done()
			results[i] = s.runRead(ctx, r, prev)
		}(i, r)
	}
	wg.Wait()

	res := CycleResult{Failed: make(map[string]error)}
	patches := make([]domain.Patch, 0, len(reads))
	for i, r := range reads {
		if err := results[i].err; err != nil {
			res.Failed[r.Name] = err
			s.log.WithField("read", r.Name).Warnf("[WARN] read failed, keeping previous data: %v", err)
			continue
		}
		res.Applied = append(res.Applied, r.Name)
		patches = append(patches, results[i].patch)
	}

	next := s.session.ApplyCycle(patches)
	res.Cycle = next.Cycle
	s.log.Debugf("cycle %d applied %v", res.Cycle, res.Applied)
	return res, nil
}

// runRead waits for one read at most readTimeout. A read that does not
// return in time is abandoned; its late result is discarded.
func (s *SyncService) runRead(ctx context.Context, r domain.Read, prev *domain.Snapshot) readResult {
	rctx, cancel := context.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	done := make(chan readResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- readResult{err: fmt.Errorf("panic: %v", p)}
			}
		}()
		patch, err := r.Fetch(rctx, prev)
		done <- readResult{patch: patch, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return readResult{err: fmt.Errorf("read %s: %w", r.Name, res.err)}
		}
		return res
	case <-rctx.Done():
		return readResult{err: fmt.Errorf("read %s: %w", r.Name, rctx.Err())}
	}
}
