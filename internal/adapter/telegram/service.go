package telegram

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"pocketdesk/internal/domain"
	"pocketdesk/internal/utils"
)

// DefaultAPIURL is the Telegram Bot API endpoint
const DefaultAPIURL = "https://api.telegram.org"

// NotificationService implements domain.Notifier over the Telegram Bot API
type NotificationService struct {
	botToken string
	chatID   string
	enabled  bool
	client   *resty.Client
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// NewNotificationService creates the notifier. It stays silent when token or
// chat id is empty.
func NewNotificationService(botToken, chatID string) *NotificationService {
	return NewNotificationServiceWithURL(DefaultAPIURL, botToken, chatID)
}

// NewNotificationServiceWithURL targets a custom Bot API host
func NewNotificationServiceWithURL(apiURL, botToken, chatID string) *NotificationService {
	return &NotificationService{
		botToken: botToken,
		chatID:   chatID,
		enabled:  botToken != "" && chatID != "",
		client: resty.New().
			SetBaseURL(apiURL).
			SetTimeout(10 * time.Second),
	}
}

// Enabled reports whether messages are actually sent
func (s *NotificationService) Enabled() bool {
	return s.enabled
}

// NotifyTradeOpened sends a trade opened notification
func (s *NotificationService) NotifyTradeOpened(trade domain.Trade) error {
	sideEmoji := "🟢"
	if trade.Type == domain.SignalSell {
		sideEmoji = "🔴"
	}

	message := fmt.Sprintf(
		"🚀 *TRADE OPENED*\n\n"+
			"%s *%s %s*\n"+
			"━━━━━━━━━━━━━━━━━\n"+
			"📊 Open: `%.5f`\n"+
			"⏳ Expiration: `%s`\n"+
			"🕒 Time: `%s`",
		sideEmoji,
		trade.Type,
		trade.Pair,
		trade.OpenPrice,
		trade.Expiration,
		trade.Timestamp,
	)

	return s.sendMessage(message)
}

// NotifyBotStopped reports that the bot was disarmed automatically
func (s *NotificationService) NotifyBotStopped(reason string) error {
	message := fmt.Sprintf(
		"🛑 *BOT STOPPED*\n\n"+
			"%s\n"+
			"🕒 Time: `%s`",
		reason,
		utils.FormatClock(time.Now()),
	)

	return s.sendMessage(message)
}

// NotifySettingsFailed reports a settings bundle the provider did not store
func (s *NotificationService) NotifySettingsFailed(settings domain.Settings, err error) error {
	message := fmt.Sprintf(
		"⚠️ *SETTINGS NOT SAVED*\n\n"+
			"🆔 Account: `%s`\n"+
			"🤖 Bot: `%t` | 🔌 Connected: `%t`\n"+
			"🛑 Loss limit: `$%.2f` | ⏱ Interval: `%dm`\n"+
			"━━━━━━━━━━━━━━━━━\n"+
			"%v",
		settings.PocketOptionID,
		settings.BotActive,
		settings.IsConnected,
		settings.LossLimit,
		settings.TradeInterval,
		err,
	)

	return s.sendMessage(message)
}

// sendMessage sends a message to Telegram using the Bot API
func (s *NotificationService) sendMessage(text string) error {
	if !s.enabled {
		return nil // Silently skip if Telegram is not configured
	}

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(telegramMessage{
			ChatID:    s.chatID,
			Text:      text,
			ParseMode: "Markdown",
		}).
		Post(fmt.Sprintf("/bot%s/sendMessage", s.botToken))
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode(), resp.String())
	}

	return nil
}
