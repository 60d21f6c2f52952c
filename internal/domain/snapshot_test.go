package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_CloneIsDeep(t *testing.T) {
	s := NewSnapshot(1000, []Observation{{ID: "1", Name: "EUR/USD", Price: 1.08}}, []Trade{{ID: "t1", Pair: "EUR/USD"}})
	s.SetActivePosition(s.Observations[0], "t1")

	c := s.Clone()
	c.Observations[0].Price = 9
	c.Trades[0].Pair = "X"
	c.ActivePosition.Name = "Y"

	assert.Equal(t, 1.08, s.Observations[0].Price)
	assert.Equal(t, "EUR/USD", s.Trades[0].Pair)
	assert.Equal(t, "EUR/USD", s.ActivePosition.Name)
}

func TestSnapshot_ReplaceObservationsClamps(t *testing.T) {
	s := NewSnapshot(0, nil, nil)
	s.ReplaceObservations([]Observation{
		{ID: "1", Volatility: 140, Probability: -3},
		{ID: "2", Volatility: 50, Probability: 87},
	})

	assert.Equal(t, 100.0, s.Observations[0].Volatility)
	assert.Equal(t, 0.0, s.Observations[0].Probability)
	assert.Equal(t, 50.0, s.Observations[1].Volatility)
	assert.Equal(t, 87.0, s.Observations[1].Probability)
}

func TestSnapshot_SettleTradeCreditsBalanceAndClearsPosition(t *testing.T) {
	obs := Observation{ID: "4", Name: "AUD/USD", Price: 2.0, Signal: SignalBuy}
	s := NewSnapshot(1000, []Observation{obs}, []Trade{{ID: "t1", Pair: "AUD/USD", Type: SignalBuy, OpenPrice: 2.0}})
	s.SetActivePosition(obs, "t1")

	settled, ok := s.SettleTrade("t1", 2.5, 10)
	require.True(t, ok)
	assert.Equal(t, 2.5, settled.Profit)
	assert.Equal(t, 1002.5, s.Balance)
	assert.Nil(t, s.ActivePosition)
	assert.Empty(t, s.ActiveTradeID)

	_, ok = s.SettleTrade("t1", 3.0, 10)
	assert.False(t, ok, "second settlement must be rejected")
	assert.Equal(t, 1002.5, s.Balance)
}

func TestSnapshot_ReplaceTradesKeepsOpenActivePosition(t *testing.T) {
	obs := Observation{ID: "1", Name: "EUR/USD"}
	s := NewSnapshot(1000, []Observation{obs}, nil)
	s.SetActivePosition(obs, "42")

	s.ReplaceTrades([]Trade{{ID: "42", Pair: "EUR/USD", Type: SignalBuy, OpenPrice: 1}})
	assert.NotNil(t, s.ActivePosition)

	s.ReplaceTrades([]Trade{{ID: "42", Pair: "EUR/USD", Type: SignalBuy, OpenPrice: 1, ClosePrice: 1.1, Profit: 3}})
	assert.Nil(t, s.ActivePosition)
}

func TestSnapshot_ProfitSinceArmed(t *testing.T) {
	s := NewSnapshot(1000, nil, []Trade{
		{ID: "1", ClosePrice: 1.1, Profit: 8},
		{ID: "2", OpenPrice: 1.2},
	})
	s.Arm()
	assert.Zero(t, s.ProfitSinceArmed())

	c := s.Clone()
	c.ReplaceTrades([]Trade{
		{ID: "2", OpenPrice: 1.2, ClosePrice: 1.1, Profit: -8.5},
		{ID: "3", ClosePrice: 1.3, Profit: 2},
	})
	assert.InDelta(t, -6.5, c.ProfitSinceArmed(), 1e-9)
	assert.Zero(t, s.ProfitSinceArmed(), "clone must not affect the original")
}
