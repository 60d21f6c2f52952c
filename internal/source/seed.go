package source

import "pocketdesk/internal/domain"

// DefaultPairs returns the pairs a local session starts with
func DefaultPairs() []domain.Observation {
	return []domain.Observation{
		{ID: "1", Name: "EUR/USD", Price: 1.0875, Change: 0.34, Volatility: 72, Signal: domain.SignalBuy, Probability: 87, Expiration: "2m"},
		{ID: "2", Name: "GBP/USD", Price: 1.2634, Change: -0.21, Volatility: 65, Signal: domain.SignalSell, Probability: 82, Expiration: "1m"},
		{ID: "3", Name: "USD/JPY", Price: 149.32, Change: 0.18, Volatility: 58, Signal: domain.SignalBuy, Probability: 76, Expiration: "2m"},
		{ID: "4", Name: "AUD/USD", Price: 0.6521, Change: 0.45, Volatility: 81, Signal: domain.SignalBuy, Probability: 91, Expiration: "1m"},
		{ID: "5", Name: "USD/CHF", Price: 0.8834, Change: -0.12, Volatility: 48, Signal: domain.SignalHold, Probability: 62, Expiration: "2m"},
		{ID: "6", Name: "EUR/GBP", Price: 0.8605, Change: 0.28, Volatility: 69, Signal: domain.SignalBuy, Probability: 79, Expiration: "1m"},
	}
}

// DefaultTrades returns the closed trade history a local session starts with
func DefaultTrades() []domain.Trade {
	return []domain.Trade{
		{ID: "1", Pair: "EUR/USD", Type: domain.SignalBuy, OpenPrice: 1.0850, ClosePrice: 1.0875, Profit: 25, Timestamp: "14:32:15", Expiration: "2m"},
		{ID: "2", Pair: "GBP/USD", Type: domain.SignalSell, OpenPrice: 1.2650, ClosePrice: 1.2634, Profit: 16, Timestamp: "14:30:42", Expiration: "1m"},
		{ID: "3", Pair: "USD/JPY", Type: domain.SignalBuy, OpenPrice: 149.40, ClosePrice: 149.32, Profit: -8, Timestamp: "14:28:10", Expiration: "2m"},
	}
}
