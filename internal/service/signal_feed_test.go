package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pocketdesk/internal/domain"
)

type mockSignalRepo struct {
	mock.Mock
}

func (m *mockSignalRepo) GetRecent(ctx context.Context, window time.Duration, limit int) ([]*domain.SignalRecord, error) {
	args := m.Called(ctx, window, limit)
	return args.Get(0).([]*domain.SignalRecord), args.Error(1)
}

func (m *mockSignalRepo) Save(ctx context.Context, signal *domain.SignalRecord) error {
	return m.Called(ctx, signal).Error(0)
}

// priceBump raises every price by one
type priceBump struct{}

func (priceBump) Walk(obs []domain.Observation) []domain.Observation {
	out := make([]domain.Observation, len(obs))
	for i, o := range obs {
		o.Price++
		out[i] = o
	}
	return out
}

func feedSeed() []domain.Observation {
	return []domain.Observation{
		{ID: "1", Name: "EUR/USD", Price: 1, Signal: domain.SignalBuy, Probability: 87, Expiration: "2m"},
		{ID: "2", Name: "GBP/USD", Price: 2, Signal: domain.SignalHold, Probability: 60, Expiration: "5m"},
	}
}

func TestSignalFeed_PublishStoresWalkedSignals(t *testing.T) {
	repo := new(mockSignalRepo)
	var saved []*domain.SignalRecord
	repo.On("Save", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = append(saved, args.Get(1).(*domain.SignalRecord)) }).
		Return(nil)

	seed := feedSeed()
	feed := NewSignalFeed(repo, priceBump{}, seed)

	n, err := feed.Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = feed.Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, saved, 4)
	assert.Equal(t, "EUR/USD", saved[2].PairName)
	assert.Equal(t, 3.0, saved[2].Price)
	assert.Equal(t, "HOLD", saved[3].SignalType)
	assert.Equal(t, 1.0, seed[0].Price, "seed must not be modified")
}

func TestSignalFeed_SaveFailure(t *testing.T) {
	repo := new(mockSignalRepo)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

	feed := NewSignalFeed(repo, priceBump{}, feedSeed())

	n, err := feed.Publish(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, err.Error(), "EUR/USD")
	repo.AssertNumberOfCalls(t, "Save", 1)
}
