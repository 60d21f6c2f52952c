package domain

import "time"

// Snapshot is the complete state visible to the operator at one instant.
// Published snapshots are never mutated; writers work on a Clone.
type Snapshot struct {
	Cycle        uint64        `json:"cycle"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Observations []Observation `json:"observations"`
	Trades       []Trade       `json:"trades"`

	Balance        float64      `json:"balance"`
	ActivePosition *Observation `json:"active_position,omitempty"`
	ActiveTradeID  string       `json:"active_trade_id,omitempty"`
	Settings       Settings     `json:"settings"`

	// armedClosed holds the ids of trades already closed when the bot was
	// last armed. It is replaced, never mutated, so clones share it.
	armedClosed map[string]struct{}
}

// NewSnapshot builds the initial snapshot of a session
func NewSnapshot(balance float64, obs []Observation, trades []Trade) *Snapshot {
	s := &Snapshot{
		Balance:  balance,
		Settings: DefaultSettings(),
	}
	s.ReplaceObservations(obs)
	s.ReplaceTrades(trades)
	return s
}

// Clone returns a deep copy
func (s *Snapshot) Clone() *Snapshot {
	c := *s
	c.Observations = append([]Observation(nil), s.Observations...)
	c.Trades = append([]Trade(nil), s.Trades...)
	if s.ActivePosition != nil {
		p := *s.ActivePosition
		c.ActivePosition = &p
	}
	return &c
}

// Arm records the trades closed so far as the baseline of the loss limit
func (s *Snapshot) Arm() {
	closed := make(map[string]struct{}, len(s.Trades))
	for i := range s.Trades {
		if s.Trades[i].IsClosed() {
			closed[s.Trades[i].ID] = struct{}{}
		}
	}
	s.armedClosed = closed
}

// ProfitSinceArmed sums the profit of trades closed after the last Arm.
// Trades leaving the provider's window do not move it.
func (s *Snapshot) ProfitSinceArmed() float64 {
	total := 0.0
	for i := range s.Trades {
		if !s.Trades[i].IsClosed() {
			continue
		}
		if _, ok := s.armedClosed[s.Trades[i].ID]; ok {
			continue
		}
		total += s.Trades[i].Profit
	}
	return total
}

// ReplaceObservations swaps the observation set wholesale, clamping every entry
func (s *Snapshot) ReplaceObservations(obs []Observation) {
	next := make([]Observation, len(obs))
	for i, o := range obs {
		o.Clamp()
		next[i] = o
	}
	s.Observations = next
}

// ReplaceTrades swaps the trade set wholesale and drops a stale active position
func (s *Snapshot) ReplaceTrades(trades []Trade) {
	s.Trades = append([]Trade(nil), trades...)
	s.reconcileActivePosition()
}

// AppendTrade records a newly opened trade
func (s *Snapshot) AppendTrade(t Trade) {
	s.Trades = append(s.Trades, t)
}

// FindTrade returns the index of the trade with the given id, or -1
func (s *Snapshot) FindTrade(id string) int {
	for i := range s.Trades {
		if s.Trades[i].ID == id {
			return i
		}
	}
	return -1
}

// SetActivePosition marks obs as the operator's open position
func (s *Snapshot) SetActivePosition(obs Observation, tradeID string) {
	s.ActivePosition = &obs
	s.ActiveTradeID = tradeID
}

// ClearActivePosition drops the active position
func (s *Snapshot) ClearActivePosition() {
	s.ActivePosition = nil
	s.ActiveTradeID = ""
}

// reconcileActivePosition clears the active position once its trade is closed
func (s *Snapshot) reconcileActivePosition() {
	if s.ActiveTradeID == "" {
		return
	}
	if i := s.FindTrade(s.ActiveTradeID); i >= 0 && s.Trades[i].IsClosed() {
		s.ClearActivePosition()
	}
}

// SettleTrade closes an open trade by id and credits the balance with its profit
func (s *Snapshot) SettleTrade(id string, closePrice, stake float64) (Trade, bool) {
	i := s.FindTrade(id)
	if i < 0 {
		return Trade{}, false
	}
	if !s.Trades[i].Close(closePrice, stake) {
		return Trade{}, false
	}
	s.Balance += s.Trades[i].Profit
	s.reconcileActivePosition()
	return s.Trades[i], true
}
