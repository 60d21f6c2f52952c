package service

import (
	"context"
	"fmt"
	"sync"

	"pocketdesk/internal/domain"
)

// Walker advances a set of observations by one step
type Walker interface {
	Walk(obs []domain.Observation) []domain.Observation
}

// SignalFeed keeps the provider's signal table populated with a simulated
// stream when no upstream analyser writes to it
type SignalFeed struct {
	signalRepo domain.SignalRepository
	walker     Walker

	mu      sync.Mutex
	current []domain.Observation
}

// NewSignalFeed creates a feed starting from seed
func NewSignalFeed(signalRepo domain.SignalRepository, walker Walker, seed []domain.Observation) *SignalFeed {
	current := make([]domain.Observation, len(seed))
	copy(current, seed)
	return &SignalFeed{
		signalRepo: signalRepo,
		walker:     walker,
		current:    current,
	}
}

// Publish walks the feed one step and stores every observation. The step is
// kept even when a save fails so the walk stays continuous.
func (f *SignalFeed) Publish(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.current = f.walker.Walk(f.current)

	saved := 0
	for _, o := range f.current {
		record := &domain.SignalRecord{
			PairName:      o.Name,
			Price:         o.Price,
			ChangePercent: o.Change,
			Volatility:    o.Volatility,
			SignalType:    string(o.Signal),
			Probability:   o.Probability,
			Expiration:    o.Expiration,
		}
		if err := f.signalRepo.Save(ctx, record); err != nil {
			return saved, fmt.Errorf("failed to publish %s: %w", o.Name, err)
		}
		saved++
	}

	log.Debugf("[CRON] published %d signal(s)", saved)
	return saved, nil
}
