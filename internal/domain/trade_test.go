package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveProfit_DirectionConsistent(t *testing.T) {
	tests := []struct {
		name   string
		side   SignalType
		open   float64
		close  float64
		stake  float64
		expect func(t *testing.T, p float64)
	}{
		{"buy up wins", SignalBuy, 1.0850, 1.0875, 1000, func(t *testing.T, p float64) { assert.Greater(t, p, 0.0) }},
		{"buy down loses", SignalBuy, 149.40, 149.32, 1000, func(t *testing.T, p float64) { assert.Less(t, p, 0.0) }},
		{"sell down wins", SignalSell, 1.2650, 1.2634, 1000, func(t *testing.T, p float64) { assert.Greater(t, p, 0.0) }},
		{"sell up loses", SignalSell, 1.2634, 1.2650, 1000, func(t *testing.T, p float64) { assert.Less(t, p, 0.0) }},
		{"flat is zero", SignalBuy, 1.1, 1.1, 1000, func(t *testing.T, p float64) { assert.Equal(t, 0.0, p) }},
		{"hold never profits", SignalHold, 1.0, 2.0, 1000, func(t *testing.T, p float64) { assert.Equal(t, 0.0, p) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.expect(t, DeriveProfit(tt.side, tt.open, tt.close, tt.stake))
		})
	}
}

func TestDeriveProfit_Value(t *testing.T) {
	// 10 units of stake at 2.0 = 5 units, +0.5 move
	assert.Equal(t, 2.5, DeriveProfit(SignalBuy, 2.0, 2.5, 10))
	assert.Equal(t, -2.5, DeriveProfit(SignalSell, 2.0, 2.5, 10))
}

func TestProfitAgreesWithDirection(t *testing.T) {
	assert.True(t, ProfitAgreesWithDirection(SignalBuy, 1.0850, 1.0875, 25))
	assert.False(t, ProfitAgreesWithDirection(SignalBuy, 1.0850, 1.0875, -25))
	assert.True(t, ProfitAgreesWithDirection(SignalSell, 1.2650, 1.2634, 16))
	assert.False(t, ProfitAgreesWithDirection(SignalSell, 1.2650, 1.2634, -16))
	assert.True(t, ProfitAgreesWithDirection(SignalBuy, 1.0, 1.0, -3))
}

func TestTrade_CloseIsFinal(t *testing.T) {
	tr := Trade{ID: "1", Type: SignalBuy, OpenPrice: 2.0}
	assert.False(t, tr.IsClosed())

	assert.True(t, tr.Close(2.5, 10))
	assert.Equal(t, 2.5, tr.ClosePrice)
	assert.Equal(t, 2.5, tr.Profit)
	assert.True(t, tr.IsWin())

	assert.False(t, tr.Close(1.0, 10), "closed trade must stay immutable")
	assert.Equal(t, 2.5, tr.ClosePrice)
	assert.Equal(t, 2.5, tr.Profit)
}

func TestTrade_ExpiresAt(t *testing.T) {
	opened := time.Date(2026, 1, 2, 14, 0, 0, 0, time.UTC)

	tr := Trade{Expiration: "2m", OpenedAt: opened}
	at, ok := tr.ExpiresAt()
	assert.True(t, ok)
	assert.Equal(t, opened.Add(2*time.Minute), at)

	_, ok = (&Trade{Expiration: "2m"}).ExpiresAt()
	assert.False(t, ok, "trades without an open instant never expire locally")

	_, ok = (&Trade{Expiration: "soon", OpenedAt: opened}).ExpiresAt()
	assert.False(t, ok)
}
