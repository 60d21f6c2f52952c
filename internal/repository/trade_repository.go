package repository

import (
	"context"
	"fmt"

	"pocketdesk/internal/domain"
)

// TradeRepositoryImpl implements the TradeRepository interface
type TradeRepositoryImpl struct {
	db DBTX
}

// NewTradeRepository creates a new TradeRepository
func NewTradeRepository(db DBTX) domain.TradeRepository {
	return &TradeRepositoryImpl{db: db}
}

// GetByUserID retrieves the latest trades of a user
func (r *TradeRepositoryImpl) GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.TradeRecord, error) {
	query := `
		SELECT id, user_id, pair, trade_type, open_price, close_price,
		       profit, expiration, status, opened_at, closed_at
		FROM trades
		WHERE user_id = $1
		ORDER BY opened_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades by user ID: %w", err)
	}
	defer rows.Close()

	trades := make([]*domain.TradeRecord, 0)
	for rows.Next() {
		trade := &domain.TradeRecord{}
		err := rows.Scan(
			&trade.ID,
			&trade.UserID,
			&trade.Pair,
			&trade.TradeType,
			&trade.OpenPrice,
			&trade.ClosePrice,
			&trade.Profit,
			&trade.Expiration,
			&trade.Status,
			&trade.OpenedAt,
			&trade.ClosedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}

// Open inserts an OPEN trade
func (r *TradeRepositoryImpl) Open(ctx context.Context, trade *domain.TradeRecord) error {
	query := `
		INSERT INTO trades (user_id, pair, trade_type, open_price, expiration, status)
		VALUES ($1, $2, $3, $4, $5, 'OPEN')
		RETURNING id, status, opened_at
	`

	err := r.db.QueryRow(ctx, query,
		trade.UserID,
		trade.Pair,
		trade.TradeType,
		trade.OpenPrice,
		trade.Expiration,
	).Scan(&trade.ID, &trade.Status, &trade.OpenedAt)

	if err != nil {
		return fmt.Errorf("failed to open trade: %w", err)
	}

	return nil
}

// GetClosedProfit sums the profit of CLOSED trades of a user
func (r *TradeRepositoryImpl) GetClosedProfit(ctx context.Context, userID int64) (float64, error) {
	var total float64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(profit), 0)::float8
		FROM trades
		WHERE user_id = $1 AND status = 'CLOSED'
	`, userID).Scan(&total)

	if err != nil {
		return 0, fmt.Errorf("failed to sum closed profit: %w", err)
	}

	return total, nil
}
