package dto

import "pocketdesk/internal/domain"

// OpenTradeRequest represents the open trade payload
type OpenTradeRequest struct {
	PairID string `json:"pair_id" validate:"required"`
}

// SettingsRequest represents the settings bundle payload
type SettingsRequest struct {
	PocketOptionID string  `json:"pocket_option_id"`
	IsConnected    bool    `json:"is_connected"`
	BotActive      bool    `json:"bot_active"`
	LossLimit      float64 `json:"loss_limit"`
	TradeInterval  int     `json:"trade_interval"`
}

// ToDomain converts the payload into a settings bundle
func (r SettingsRequest) ToDomain() domain.Settings {
	return domain.Settings{
		PocketOptionID: r.PocketOptionID,
		IsConnected:    r.IsConnected,
		BotActive:      r.BotActive,
		LossLimit:      r.LossLimit,
		TradeInterval:  r.TradeInterval,
	}
}

// TradeOutput represents an opened trade together with the account after it
type TradeOutput struct {
	Trade   domain.Trade        `json:"trade"`
	Account domain.AccountState `json:"account"`
}
