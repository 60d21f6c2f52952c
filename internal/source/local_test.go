package source

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketdesk/internal/domain"
)

func newTestLocal(now time.Time) *LocalSource {
	return NewLocalSource(DefaultLocalConfig(), rand.New(rand.NewSource(42)), func() time.Time { return now })
}

func TestWalk_BoundsAndCarryOver(t *testing.T) {
	src := newTestLocal(time.Now())
	obs := DefaultPairs()

	for round := 0; round < 500; round++ {
		next := src.Walk(obs)
		require.Len(t, next, len(obs))

		for i := range next {
			prev, cur := obs[i], next[i]
			assert.Equal(t, prev.ID, cur.ID)
			assert.Equal(t, prev.Name, cur.Name)
			assert.Equal(t, prev.Signal, cur.Signal)
			assert.Equal(t, prev.Probability, cur.Probability)
			assert.Equal(t, prev.Expiration, cur.Expiration)

			assert.Greater(t, cur.Price, 0.0)
			assert.LessOrEqual(t, math.Abs(cur.Price-prev.Price), 0.005+1e-9)
			assert.LessOrEqual(t, math.Abs(cur.Change-prev.Change), 0.05+0.005+1e-9)
			assert.InDelta(t, math.Round(cur.Change*100)/100, cur.Change, 1e-12)
			assert.GreaterOrEqual(t, cur.Volatility, 30.0)
			assert.LessOrEqual(t, cur.Volatility, 100.0)
		}
		obs = next
	}
}

func TestWalk_VolatilityClampedFromOutside(t *testing.T) {
	src := newTestLocal(time.Now())
	obs := []domain.Observation{
		{ID: "1", Name: "LOW", Price: 1, Volatility: 2},
		{ID: "2", Name: "HIGH", Price: 1, Volatility: 100},
	}

	next := src.Walk(obs)
	assert.Equal(t, 30.0, next[0].Volatility)
	assert.LessOrEqual(t, next[1].Volatility, 100.0)
	assert.GreaterOrEqual(t, next[1].Volatility, 97.5)
}

func TestWalk_KeepsPriceWhenStepWouldGoNonPositive(t *testing.T) {
	src := newTestLocal(time.Now())
	obs := []domain.Observation{{ID: "1", Name: "TINY", Price: 0.000001, Volatility: 50}}

	for i := 0; i < 50; i++ {
		obs = src.Walk(obs)
		assert.Greater(t, obs[0].Price, 0.0)
	}
}

func TestWalk_DoesNotMutateInput(t *testing.T) {
	src := newTestLocal(time.Now())
	obs := DefaultPairs()
	src.Walk(obs)
	assert.Equal(t, DefaultPairs(), obs)
}

func TestFetchSignals_PatchReplacesObservations(t *testing.T) {
	src := newTestLocal(time.Now())
	prev := domain.NewSnapshot(1000, DefaultPairs(), nil)

	patch, err := src.Reads()[0].Fetch(context.Background(), prev)
	require.NoError(t, err)
	require.NotNil(t, patch)

	next := prev.Clone()
	patch(next)
	require.Len(t, next.Observations, 6)
	assert.Equal(t, prev.Observations[0].ID, next.Observations[0].ID)
	assert.NotEqual(t, prev.Observations[0].Price, next.Observations[0].Price)
}

func TestFetchTrades_SettlesExpiredTrades(t *testing.T) {
	opened := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)
	src := newTestLocal(opened.Add(90 * time.Second))

	prev := domain.NewSnapshot(1000, DefaultPairs(), DefaultTrades())
	prev.AppendTrade(domain.Trade{ID: "due", Pair: "AUD/USD", Type: domain.SignalBuy, OpenPrice: 0.6500, Expiration: "1m", OpenedAt: opened})
	prev.AppendTrade(domain.Trade{ID: "running", Pair: "EUR/USD", Type: domain.SignalBuy, OpenPrice: 1.0870, Expiration: "2m", OpenedAt: opened})
	prev.SetActivePosition(prev.Observations[3], "due")

	patch, err := src.Reads()[1].Fetch(context.Background(), prev)
	require.NoError(t, err)
	require.NotNil(t, patch)

	next := prev.Clone()
	patch(next)

	due := next.Trades[next.FindTrade("due")]
	assert.Equal(t, 0.6521, due.ClosePrice)
	assert.Equal(t, domain.DeriveProfit(domain.SignalBuy, 0.6500, 0.6521, 10), due.Profit)
	assert.Greater(t, due.Profit, 0.0)
	assert.InDelta(t, 1000+due.Profit, next.Balance, 1e-9)
	assert.Nil(t, next.ActivePosition)

	running := next.Trades[next.FindTrade("running")]
	assert.False(t, running.IsClosed())

	// history is left alone
	assert.Equal(t, 25.0, next.Trades[0].Profit)
}

func TestFetchTrades_NothingDue(t *testing.T) {
	src := newTestLocal(time.Now())
	prev := domain.NewSnapshot(1000, DefaultPairs(), DefaultTrades())

	patch, err := src.Reads()[1].Fetch(context.Background(), prev)
	require.NoError(t, err)
	assert.Nil(t, patch)
}

func TestDefaultSeed(t *testing.T) {
	pairs := DefaultPairs()
	require.Len(t, pairs, 6)
	assert.Equal(t, "AUD/USD", pairs[3].Name)
	require.Len(t, DefaultTrades(), 3)
	for _, tr := range DefaultTrades() {
		assert.True(t, tr.IsClosed())
	}
}
