package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pocketdesk/internal/domain"
)

// ErrSettingsNotFound is returned when a user has no settings row
var ErrSettingsNotFound = errors.New("settings not found")

// UserSettingsRepositoryImpl implements the UserSettingsRepository interface
type UserSettingsRepositoryImpl struct {
	db DBTX
}

// NewUserSettingsRepository creates a new UserSettingsRepository
func NewUserSettingsRepository(db DBTX) domain.UserSettingsRepository {
	return &UserSettingsRepositoryImpl{db: db}
}

// Upsert updates or creates the settings row of a pocket option account
func (r *UserSettingsRepositoryImpl) Upsert(ctx context.Context, settings domain.Settings) (*domain.UserSettingsRecord, error) {
	query := `
		INSERT INTO user_settings
			(pocket_option_id, is_connected, bot_active, loss_limit, trade_interval)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (pocket_option_id) DO UPDATE SET
			is_connected = EXCLUDED.is_connected,
			bot_active = EXCLUDED.bot_active,
			loss_limit = EXCLUDED.loss_limit,
			trade_interval = EXCLUDED.trade_interval,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id, pocket_option_id, is_connected, bot_active, loss_limit, trade_interval, balance
	`

	rec := &domain.UserSettingsRecord{}
	err := r.db.QueryRow(ctx, query,
		settings.PocketOptionID,
		settings.IsConnected,
		settings.BotActive,
		settings.LossLimit,
		settings.TradeInterval,
	).Scan(
		&rec.ID,
		&rec.PocketOptionID,
		&rec.IsConnected,
		&rec.BotActive,
		&rec.LossLimit,
		&rec.TradeInterval,
		&rec.Balance,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert settings %s: %w", settings.PocketOptionID, err)
	}

	return rec, nil
}

// GetByID retrieves the settings row of a user
func (r *UserSettingsRepositoryImpl) GetByID(ctx context.Context, userID int64) (*domain.UserSettingsRecord, error) {
	query := `
		SELECT id, pocket_option_id, is_connected, bot_active, loss_limit, trade_interval, balance
		FROM user_settings
		WHERE id = $1
	`

	rec := &domain.UserSettingsRecord{}
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&rec.ID,
		&rec.PocketOptionID,
		&rec.IsConnected,
		&rec.BotActive,
		&rec.LossLimit,
		&rec.TradeInterval,
		&rec.Balance,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings by ID: %w", err)
	}

	return rec, nil
}
