package domain

import "time"

// SignalRecord is a signal row as stored by the provider
type SignalRecord struct {
	PairName      string    `json:"pair_name"`
	Price         float64   `json:"price"`
	ChangePercent float64   `json:"change_percent"`
	Volatility    float64   `json:"volatility"`
	SignalType    string    `json:"signal_type"`
	Probability   float64   `json:"probability"`
	Expiration    string    `json:"expiration"`
	CreatedAt     time.Time `json:"created_at"`
}

// TradeStatus constants
const (
	TradeStatusOpen   = "OPEN"
	TradeStatusClosed = "CLOSED"
)

// TradeRecord is a trade row as stored by the provider
type TradeRecord struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"-"`
	Pair       string     `json:"pair"`
	TradeType  string     `json:"trade_type"`
	OpenPrice  float64    `json:"open_price"`
	ClosePrice *float64   `json:"close_price"`
	Profit     *float64   `json:"profit"`
	Expiration string     `json:"expiration"`
	Status     string     `json:"status"`
	OpenedAt   time.Time  `json:"opened_at"`
	ClosedAt   *time.Time `json:"closed_at"`
}

// UserSettingsRecord is a persisted settings row with its balance
type UserSettingsRecord struct {
	ID             int64   `json:"id"`
	PocketOptionID string  `json:"pocket_option_id"`
	IsConnected    bool    `json:"is_connected"`
	BotActive      bool    `json:"bot_active"`
	LossLimit      float64 `json:"loss_limit"`
	TradeInterval  int     `json:"trade_interval"`
	Balance        float64 `json:"balance"`
}

// DefaultProviderBalance is reported for users without a settings row
const DefaultProviderBalance = 1000.0
