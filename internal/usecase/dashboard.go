package usecase

import (
	"time"

	"pocketdesk/internal/domain"
	"pocketdesk/internal/metrics"
	"pocketdesk/internal/ranking"
)

// Dashboard is everything the operator sees, derived from one snapshot
type Dashboard struct {
	Loading     bool                 `json:"loading"`
	Cycle       uint64               `json:"cycle"`
	UpdatedAt   time.Time            `json:"updated_at"`
	TopSignal   *domain.Observation  `json:"top_signal"`
	BestSignals []domain.Observation `json:"best_signals"`
	Pairs       []domain.Observation `json:"pairs"`
	Trades      []domain.Trade       `json:"trades"`
	Account     domain.AccountState  `json:"account"`
	Metrics     metrics.Summary      `json:"metrics"`
	Settings    domain.Settings      `json:"settings"`
}

// Dashboard recomputes ranking and metrics from the published snapshot.
// bestSignals is the size of the best signals view.
func (s *Session) Dashboard(bestSignals int) Dashboard {
	snap := s.Snapshot()

	d := Dashboard{
		Loading:     s.Loading(),
		Cycle:       snap.Cycle,
		UpdatedAt:   snap.UpdatedAt,
		BestSignals: ranking.TopN(snap.Observations, bestSignals),
		Pairs:       snap.Observations,
		Trades:      snap.Trades,
		Account:     accountState(snap),
		Metrics:     metrics.Compute(snap),
		Settings:    snap.Settings,
	}
	if top, ok := ranking.TopSignal(snap.Observations); ok {
		d.TopSignal = &top
	}
	return d
}
