// Package metrics derives the aggregate dashboard figures from a snapshot.
package metrics

import (
	"github.com/shopspring/decimal"

	"pocketdesk/internal/domain"
)

// Summary holds the aggregate values shown next to the ranking
type Summary struct {
	WinRate             float64 `json:"win_rate"`
	Wins                int     `json:"wins"`
	ClosedTrades        int     `json:"closed_trades"`
	TotalTrades         int     `json:"total_trades"`
	TotalProfit         float64 `json:"total_profit"`
	ActivePositionCount int     `json:"active_position_count"`
}

// Compute recomputes every aggregate from the snapshot
func Compute(s *domain.Snapshot) Summary {
	wins, closed := countOutcomes(s.Trades)
	sum := Summary{
		WinRate:      winRate(wins, closed),
		Wins:         wins,
		ClosedTrades: closed,
		TotalTrades:  len(s.Trades),
		TotalProfit:  TotalProfit(s.Trades),
	}
	if s.ActivePosition != nil {
		sum.ActivePositionCount = 1
	}
	return sum
}

// WinRate is the percentage of closed trades with positive profit, one
// decimal place. It is 0 when no trade has closed.
func WinRate(trades []domain.Trade) float64 {
	return winRate(countOutcomes(trades))
}

// TotalProfit sums the profit of all trades, rounded to cents
func TotalProfit(trades []domain.Trade) float64 {
	total := decimal.Zero
	for _, t := range trades {
		total = total.Add(decimal.NewFromFloat(t.Profit))
	}
	return total.Round(2).InexactFloat64()
}

func countOutcomes(trades []domain.Trade) (wins, closed int) {
	for i := range trades {
		if !trades[i].IsClosed() {
			continue
		}
		closed++
		if trades[i].IsWin() {
			wins++
		}
	}
	return wins, closed
}

func winRate(wins, closed int) float64 {
	if closed == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(wins)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(closed))).
		Round(1).
		InexactFloat64()
}
