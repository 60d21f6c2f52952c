package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is a directional position opened from a signal
type Trade struct {
	ID         string     `json:"id"`
	Pair       string     `json:"pair"` // lookup key only, the observation may be gone
	Type       SignalType `json:"type"` // BUY or SELL
	OpenPrice  float64    `json:"open_price"`
	ClosePrice float64    `json:"close_price"` // 0 while open
	Profit     float64    `json:"profit"`
	Timestamp  string     `json:"timestamp"` // local display time of the open
	Expiration string     `json:"expiration"`

	// OpenedAt is only known for trades opened in this session
	OpenedAt time.Time `json:"-"`
}

// IsClosed reports whether the trade has a close price
func (t *Trade) IsClosed() bool {
	return t.ClosePrice != 0
}

// IsWin reports whether the trade closed in profit
func (t *Trade) IsWin() bool {
	return t.IsClosed() && t.Profit > 0
}

// ExpiresAt returns when the signal window of a session trade ends
func (t *Trade) ExpiresAt() (time.Time, bool) {
	if t.OpenedAt.IsZero() {
		return time.Time{}, false
	}
	d, err := time.ParseDuration(t.Expiration)
	if err != nil || d <= 0 {
		return time.Time{}, false
	}
	return t.OpenedAt.Add(d), true
}

// Close settles an open trade at closePrice. Closed trades are never modified.
func (t *Trade) Close(closePrice, stake float64) bool {
	if t.IsClosed() || closePrice <= 0 {
		return false
	}
	t.ClosePrice = closePrice
	t.Profit = DeriveProfit(t.Type, t.OpenPrice, closePrice, stake)
	return true
}

// DeriveProfit computes a direction consistent profit for a stake placed at
// openPrice and closed at closePrice, rounded to cents.
// BUY earns when close > open, SELL earns when close < open.
func DeriveProfit(side SignalType, openPrice, closePrice, stake float64) float64 {
	if openPrice <= 0 || closePrice <= 0 || !side.Actionable() {
		return 0
	}
	move := decimal.NewFromFloat(closePrice).Sub(decimal.NewFromFloat(openPrice))
	if side == SignalSell {
		move = move.Neg()
	}
	units := decimal.NewFromFloat(stake).Div(decimal.NewFromFloat(openPrice))
	return move.Mul(units).Round(2).InexactFloat64()
}

// ProfitAgreesWithDirection reports whether a reported profit has the sign the
// price move implies. Flat moves agree with anything.
func ProfitAgreesWithDirection(side SignalType, openPrice, closePrice, profit float64) bool {
	derived := DeriveProfit(side, openPrice, closePrice, 1)
	switch {
	case derived > 0:
		return profit >= 0
	case derived < 0:
		return profit <= 0
	}
	return true
}
