package domain

// Settings is the operator controlled activation bundle
type Settings struct {
	PocketOptionID string  `json:"pocket_option_id" validate:"required,max=64"`
	IsConnected    bool    `json:"is_connected"`
	BotActive      bool    `json:"bot_active"`
	LossLimit      float64 `json:"loss_limit" validate:"gt=0"`
	TradeInterval  int     `json:"trade_interval" validate:"min=1,max=1440"` // minutes between trades
}

// Default settings, matching the values the dashboard starts with
const (
	DefaultLossLimit     = 5.0
	DefaultTradeInterval = 1
)

// DefaultSettings returns the settings of a fresh session
func DefaultSettings() Settings {
	return Settings{
		LossLimit:     DefaultLossLimit,
		TradeInterval: DefaultTradeInterval,
	}
}

// Balance is the account slice returned by the balance read
type Balance struct {
	Balance     float64 `json:"balance"`
	TotalProfit float64 `json:"total_profit"`
	BotActive   bool    `json:"bot_active"`
	IsConnected bool    `json:"is_connected"`
}

// AccountState is the derived account view shown to the operator
type AccountState struct {
	Balance        float64      `json:"balance"`
	TotalProfit    float64      `json:"total_profit"`
	BotActive      bool         `json:"bot_active"`
	IsConnected    bool         `json:"is_connected"`
	ActivePosition *Observation `json:"active_position,omitempty"`
}
