package source

import (
	"context"
	"time"

	"pocketdesk/internal/domain"
)

// ProviderClient is the subset of the provider API the remote source polls
type ProviderClient interface {
	FetchSignals(ctx context.Context) ([]domain.Observation, error)
	FetchTrades(ctx context.Context) ([]domain.Trade, error)
	FetchBalance(ctx context.Context) (domain.Balance, error)
}

// RemoteSource polls the provider with three independent reads. A failed
// read leaves its slice of the snapshot as it was.
type RemoteSource struct {
	client ProviderClient
	now    func() time.Time
}

// NewRemoteSource creates a remote source. now must be the session's clock,
// nil uses time.Now.
func NewRemoteSource(client ProviderClient, now func() time.Time) *RemoteSource {
	if now == nil {
		now = time.Now
	}
	return &RemoteSource{client: client, now: now}
}

// Name implements domain.Source
func (s *RemoteSource) Name() string {
	return "remote"
}

// Reads implements domain.Source
func (s *RemoteSource) Reads() []domain.Read {
	return []domain.Read{
		{Name: "signals", Fetch: s.fetchSignals},
		{Name: "trades", Fetch: s.fetchTrades},
		{Name: "balance", Fetch: s.fetchBalance},
	}
}

func (s *RemoteSource) fetchSignals(ctx context.Context, _ *domain.Snapshot) (domain.Patch, error) {
	obs, err := s.client.FetchSignals(ctx)
	if err != nil {
		return nil, err
	}
	return func(snap *domain.Snapshot) {
		snap.ReplaceObservations(obs)
	}, nil
}

func (s *RemoteSource) fetchTrades(ctx context.Context, _ *domain.Snapshot) (domain.Patch, error) {
	started := s.now()
	trades, err := s.client.FetchTrades(ctx)
	if err != nil {
		return nil, err
	}
	return func(snap *domain.Snapshot) {
		seen := make(map[string]bool, len(trades))
		for i := range trades {
			seen[trades[i].ID] = true
			// keep the open instant of trades opened in this session
			if j := snap.FindTrade(trades[i].ID); j >= 0 && trades[i].OpenedAt.IsZero() {
				trades[i].OpenedAt = snap.Trades[j].OpenedAt
			}
		}
		// trades submitted while the read was in flight are not in the payload yet
		for _, t := range snap.Trades {
			if !seen[t.ID] && !t.OpenedAt.Before(started) {
				trades = append(trades, t)
			}
		}
		snap.ReplaceTrades(trades)
	}, nil
}

// fetchBalance applies the balance only. Bot and connection flags belong to
// the operator and change through explicit operations.
func (s *RemoteSource) fetchBalance(ctx context.Context, _ *domain.Snapshot) (domain.Patch, error) {
	b, err := s.client.FetchBalance(ctx)
	if err != nil {
		return nil, err
	}
	return func(snap *domain.Snapshot) {
		if b.BotActive != snap.Settings.BotActive || b.IsConnected != snap.Settings.IsConnected {
			log.Debugf("provider flags bot=%t connected=%t differ from session, keeping session", b.BotActive, b.IsConnected)
		}
		snap.Balance = b.Balance
	}, nil
}
