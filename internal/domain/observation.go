package domain

// SignalType is the directional recommendation attached to an observation
type SignalType string

// SignalType constants
const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
	SignalHold SignalType = "HOLD"
)

// Valid reports whether the signal is one of BUY, SELL or HOLD
func (s SignalType) Valid() bool {
	switch s {
	case SignalBuy, SignalSell, SignalHold:
		return true
	}
	return false
}

// Actionable reports whether a trade can be opened from the signal
func (s SignalType) Actionable() bool {
	return s == SignalBuy || s == SignalSell
}

// Score bounds shared by volatility and probability
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Observation is one currency pair as seen in a single refresh cycle
type Observation struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Price       float64    `json:"price"`
	Change      float64    `json:"change"`     // percent since reference point
	Volatility  float64    `json:"volatility"` // [0,100]
	Signal      SignalType `json:"signal_type"`
	Probability float64    `json:"probability"` // [0,100], ranking score only
	Expiration  string     `json:"expiration"`  // e.g. "1m", "2m"
}

// Clamp forces volatility and probability into [0,100]
func (o *Observation) Clamp() {
	o.Volatility = ClampFloat(o.Volatility, MinScore, MaxScore)
	o.Probability = ClampFloat(o.Probability, MinScore, MaxScore)
}

// ClampFloat bounds v to [lo, hi]
func ClampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FindObservation returns the observation with the given id
func FindObservation(obs []Observation, id string) (Observation, bool) {
	for _, o := range obs {
		if o.ID == id {
			return o, true
		}
	}
	return Observation{}, false
}

// FindObservationByName returns the first observation for a pair symbol
func FindObservationByName(obs []Observation, name string) (Observation, bool) {
	for _, o := range obs {
		if o.Name == name {
			return o, true
		}
	}
	return Observation{}, false
}
