package repository

import (
	"context"
	"fmt"
	"time"

	"pocketdesk/internal/domain"
)

// SignalRepositoryImpl implements the SignalRepository interface
type SignalRepositoryImpl struct {
	db DBTX
}

// NewSignalRepository creates a new SignalRepository
func NewSignalRepository(db DBTX) domain.SignalRepository {
	return &SignalRepositoryImpl{db: db}
}

// Save saves a new signal to the database
func (r *SignalRepositoryImpl) Save(ctx context.Context, signal *domain.SignalRecord) error {
	query := `
		INSERT INTO currency_signals (
			pair_name, price, change_percent, volatility,
			signal_type, probability, expiration
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		signal.PairName,
		signal.Price,
		signal.ChangePercent,
		signal.Volatility,
		signal.SignalType,
		signal.Probability,
		signal.Expiration,
	).Scan(&signal.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to save signal: %w", err)
	}

	return nil
}

// GetRecent retrieves the latest signal of each pair created within window,
// best probability first
func (r *SignalRepositoryImpl) GetRecent(ctx context.Context, window time.Duration, limit int) ([]*domain.SignalRecord, error) {
	query := `
		SELECT pair_name, price, change_percent, volatility,
		       signal_type, probability, expiration, created_at
		FROM (
			SELECT DISTINCT ON (pair_name)
			       pair_name, price, change_percent, volatility,
			       signal_type, probability, expiration, created_at
			FROM currency_signals
			WHERE created_at >= $1
			ORDER BY pair_name, created_at DESC, id DESC
		) latest
		ORDER BY probability DESC, pair_name
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, time.Now().Add(-window), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent signals: %w", err)
	}
	defer rows.Close()

	signals := make([]*domain.SignalRecord, 0)
	for rows.Next() {
		signal := &domain.SignalRecord{}
		err := rows.Scan(
			&signal.PairName,
			&signal.Price,
			&signal.ChangePercent,
			&signal.Volatility,
			&signal.SignalType,
			&signal.Probability,
			&signal.Expiration,
			&signal.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}
		signals = append(signals, signal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signals: %w", err)
	}

	return signals, nil
}
