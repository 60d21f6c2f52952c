package source

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"pocketdesk/internal/domain"
)

var log = logrus.WithField("module", "source")

// LocalConfig holds the random walk parameters of the local simulation
type LocalConfig struct {
	PriceStep      float64 // max absolute price move per cycle
	ChangeStep     float64 // max absolute change move per cycle, percent points
	VolatilityStep float64
	MinVolatility  float64
	MaxVolatility  float64
	Stake          float64 // stake used when settling expired trades
}

// DefaultLocalConfig returns the walk the dashboard simulates with
func DefaultLocalConfig() LocalConfig {
	return LocalConfig{
		PriceStep:      0.005,
		ChangeStep:     0.05,
		VolatilityStep: 2.5,
		MinVolatility:  30,
		MaxVolatility:  100,
		Stake:          10,
	}
}

// LocalSource perturbs the previous snapshot instead of fetching data
type LocalSource struct {
	config LocalConfig
	now    func() time.Time

	mu  sync.Mutex // rand.Rand is not safe for concurrent use
	rng *rand.Rand
}

// NewLocalSource creates a local source. A nil rng is seeded from the clock,
// a nil now uses time.Now.
func NewLocalSource(config LocalConfig, rng *rand.Rand, now func() time.Time) *LocalSource {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	return &LocalSource{config: config, rng: rng, now: now}
}

// Name implements domain.Source
func (s *LocalSource) Name() string {
	return "local"
}

// Reads implements domain.Source
func (s *LocalSource) Reads() []domain.Read {
	return []domain.Read{
		{Name: "signals", Fetch: s.fetchSignals},
		{Name: "trades", Fetch: s.fetchTrades},
	}
}

func (s *LocalSource) fetchSignals(ctx context.Context, prev *domain.Snapshot) (domain.Patch, error) {
	next := s.Walk(prev.Observations)
	return func(snap *domain.Snapshot) {
		snap.ReplaceObservations(next)
	}, nil
}

// Walk returns a perturbed copy of obs. Identity, signal, probability and
// expiration are carried over unchanged.
func (s *LocalSource) Walk(obs []domain.Observation) []domain.Observation {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Observation, len(obs))
	for i, o := range obs {
		if price := o.Price + s.step(s.config.PriceStep); price > 0 {
			o.Price = price
		}
		o.Change = decimal.NewFromFloat(o.Change + s.step(s.config.ChangeStep)).Round(2).InexactFloat64()
		o.Volatility = domain.ClampFloat(o.Volatility+s.step(s.config.VolatilityStep), s.config.MinVolatility, s.config.MaxVolatility)
		next[i] = o
	}
	return next
}

// step draws uniformly from [-limit, +limit)
func (s *LocalSource) step(limit float64) float64 {
	return (s.rng.Float64() - 0.5) * 2 * limit
}

type settlement struct {
	tradeID string
	price   float64
}

// fetchTrades settles open trades whose signal window has elapsed at the
// last known price of their pair
func (s *LocalSource) fetchTrades(ctx context.Context, prev *domain.Snapshot) (domain.Patch, error) {
	now := s.now()

	var due []settlement
	for _, t := range prev.Trades {
		if t.IsClosed() {
			continue
		}
		expiresAt, ok := t.ExpiresAt()
		if !ok || now.Before(expiresAt) {
			continue
		}
		pair, ok := domain.FindObservationByName(prev.Observations, t.Pair)
		if !ok {
			log.Warnf("[WARN] cannot settle trade %s: pair %s no longer observed", t.ID, t.Pair)
			continue
		}
		due = append(due, settlement{tradeID: t.ID, price: pair.Price})
	}
	if len(due) == 0 {
		return nil, nil
	}

	stake := s.config.Stake
	return func(snap *domain.Snapshot) {
		for _, d := range due {
			if t, ok := snap.SettleTrade(d.tradeID, d.price, stake); ok {
				log.Infof("[OK] settled %s %s %s at %.5f, profit %.2f", t.ID, t.Type, t.Pair, t.ClosePrice, t.Profit)
			}
		}
	}, nil
}
