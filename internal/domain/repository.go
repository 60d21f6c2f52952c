package domain

import (
	"context"
	"time"
)

// Patch applies the result of one successful read to a snapshot clone
type Patch func(s *Snapshot)

// Read is one independent fetch of a refresh source
type Read struct {
	Name  string
	Fetch func(ctx context.Context, prev *Snapshot) (Patch, error)
}

// Source produces the reads of a refresh cycle. Local simulation and remote
// polling both implement it.
type Source interface {
	Name() string
	Reads() []Read
}

// SettingsStore persists the operator settings bundle
type SettingsStore interface {
	SaveSettings(ctx context.Context, settings Settings) error
}

// TradeSubmitter forwards an opened trade to the provider and returns the
// trade as recorded there
type TradeSubmitter interface {
	SubmitTrade(ctx context.Context, trade Trade) (Trade, error)
}

// Notifier delivers operator notifications
type Notifier interface {
	NotifyTradeOpened(trade Trade) error
	NotifyBotStopped(reason string) error
	NotifySettingsFailed(settings Settings, err error) error
}

// SignalRepository defines the provider's signal storage
type SignalRepository interface {
	// GetRecent retrieves the latest signal of each pair created within window, best probability first
	GetRecent(ctx context.Context, window time.Duration, limit int) ([]*SignalRecord, error)

	// Save stores a new signal
	Save(ctx context.Context, signal *SignalRecord) error
}

// TradeRepository defines the provider's trade storage
type TradeRepository interface {
	// GetByUserID retrieves the latest trades of a user, newest first
	GetByUserID(ctx context.Context, userID int64, limit int) ([]*TradeRecord, error)

	// Open inserts an OPEN trade and fills in its id and open time
	Open(ctx context.Context, trade *TradeRecord) error

	// GetClosedProfit sums the profit of CLOSED trades of a user
	GetClosedProfit(ctx context.Context, userID int64) (float64, error)
}

// UserSettingsRepository defines the provider's settings storage
type UserSettingsRepository interface {
	// Upsert stores settings keyed by pocket option id
	Upsert(ctx context.Context, settings Settings) (*UserSettingsRecord, error)

	// GetByID retrieves the settings row of a user
	GetByID(ctx context.Context, userID int64) (*UserSettingsRecord, error)
}
