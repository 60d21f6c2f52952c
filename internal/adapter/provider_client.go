package adapter

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"pocketdesk/internal/domain"
)

var log = logrus.WithField("module", "provider")

// ProviderConfig configures the provider client
type ProviderConfig struct {
	BaseURL string
	UserID  int64
	Stake   float64 // used to derive profit of closed trades reported without one
	Timeout time.Duration
}

// ProviderClient talks to the signal provider over HTTP
type ProviderClient struct {
	client *resty.Client
	userID int64
	stake  float64
}

// NewProviderClient creates a new provider client
func NewProviderClient(config ProviderConfig) *ProviderClient {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(config.BaseURL, "/")).
		SetTimeout(config.Timeout).
		SetHeader("Accept", "application/json")

	return &ProviderClient{
		client: client,
		userID: config.UserID,
		stake:  config.Stake,
	}
}

func (c *ProviderClient) newRequest(ctx context.Context) *resty.Request {
	return c.client.R().SetContext(ctx)
}

func (c *ProviderClient) userParam() string {
	return strconv.FormatInt(c.userID, 10)
}

// FetchSignals reads the current signals. Undecodable records are dropped.
func (c *ProviderClient) FetchSignals(ctx context.Context) ([]domain.Observation, error) {
	resp, err := c.newRequest(ctx).Get("/signals")
	if err := checkResponse(resp, err, "fetch signals"); err != nil {
		return nil, err
	}

	var envelope struct {
		Signals []json.RawMessage `json:"signals"`
	}
	if err := unmarshalEnvelope(resp.Body(), &envelope); err != nil {
		return nil, errors.Wrap(err, "failed to decode signals")
	}
	if envelope.Signals == nil {
		return nil, errors.New("failed to decode signals: envelope has no signals")
	}

	obs, failed := DecodeSignals(envelope.Signals)
	logDropped(failed)
	return obs, nil
}

// FetchTrades reads the trades of the configured user
func (c *ProviderClient) FetchTrades(ctx context.Context) ([]domain.Trade, error) {
	resp, err := c.newRequest(ctx).
		SetQueryParam("user_id", c.userParam()).
		Get("/trades")
	if err := checkResponse(resp, err, "fetch trades"); err != nil {
		return nil, err
	}

	var envelope struct {
		Trades []json.RawMessage `json:"trades"`
	}
	if err := unmarshalEnvelope(resp.Body(), &envelope); err != nil {
		return nil, errors.Wrap(err, "failed to decode trades")
	}
	if envelope.Trades == nil {
		return nil, errors.New("failed to decode trades: envelope has no trades")
	}

	trades, failed := DecodeTrades(envelope.Trades, c.stake)
	logDropped(failed)
	return trades, nil
}

// FetchBalance reads the account balance of the configured user
func (c *ProviderClient) FetchBalance(ctx context.Context) (domain.Balance, error) {
	resp, err := c.newRequest(ctx).
		SetQueryParam("user_id", c.userParam()).
		Get("/balance")
	if err := checkResponse(resp, err, "fetch balance"); err != nil {
		return domain.Balance{}, err
	}
	return decodeBalance(resp.Body())
}

type settingsRequest struct {
	PocketOptionID string  `json:"pocket_option_id"`
	IsConnected    bool    `json:"is_connected"`
	BotActive      bool    `json:"bot_active"`
	LossLimit      float64 `json:"loss_limit"`
	TradeInterval  int     `json:"trade_interval"`
}

type successResponse struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Trade   json.RawMessage `json:"trade"`
}

// SaveSettings implements domain.SettingsStore
func (c *ProviderClient) SaveSettings(ctx context.Context, settings domain.Settings) error {
	resp, err := c.newRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(settingsRequest{
			PocketOptionID: settings.PocketOptionID,
			IsConnected:    settings.IsConnected,
			BotActive:      settings.BotActive,
			LossLimit:      settings.LossLimit,
			TradeInterval:  settings.TradeInterval,
		}).
		Post("/settings")
	if err := checkResponse(resp, err, "save settings"); err != nil {
		return err
	}

	var out successResponse
	if err := unmarshalEnvelope(resp.Body(), &out); err != nil {
		return errors.Wrap(err, "failed to decode settings response")
	}
	if !out.Success {
		return errors.Errorf("provider rejected settings: %s", out.Error)
	}
	return nil
}

type tradeRequest struct {
	UserID     int64   `json:"user_id"`
	Pair       string  `json:"pair"`
	Type       string  `json:"type"`
	OpenPrice  float64 `json:"open_price"`
	Expiration string  `json:"expiration"`
}

// SubmitTrade implements domain.TradeSubmitter. The returned trade carries
// the provider id.
func (c *ProviderClient) SubmitTrade(ctx context.Context, trade domain.Trade) (domain.Trade, error) {
	resp, err := c.newRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(tradeRequest{
			UserID:     c.userID,
			Pair:       trade.Pair,
			Type:       string(trade.Type),
			OpenPrice:  trade.OpenPrice,
			Expiration: trade.Expiration,
		}).
		Post("/trade")
	if err := checkResponse(resp, err, "submit trade"); err != nil {
		return domain.Trade{}, err
	}

	var out successResponse
	if err := unmarshalEnvelope(resp.Body(), &out); err != nil {
		return domain.Trade{}, errors.Wrap(err, "failed to decode trade response")
	}
	if !out.Success {
		return domain.Trade{}, errors.Errorf("provider rejected trade: %s", out.Error)
	}

	recorded, derr := decodeTrade(0, out.Trade, c.stake)
	if derr != nil {
		return domain.Trade{}, errors.Wrap(derr, "failed to decode submitted trade")
	}
	recorded.OpenedAt = trade.OpenedAt
	if recorded.Timestamp == "" {
		recorded.Timestamp = trade.Timestamp
	}
	return recorded, nil
}

// HealthCheck checks if the provider is reachable
func (c *ProviderClient) HealthCheck(ctx context.Context) error {
	resp, err := c.newRequest(ctx).Get("/health")
	return checkResponse(resp, err, "check provider health")
}

func checkResponse(resp *resty.Response, err error, action string) error {
	if err != nil {
		return errors.Wrapf(err, "failed to %s", action)
	}
	if !resp.IsSuccess() {
		return errors.Errorf("failed to %s: status=%d, body=%s", action, resp.StatusCode(), truncate(resp.String(), 200))
	}
	return nil
}

func unmarshalEnvelope(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "malformed envelope")
	}
	return nil
}

func logDropped(failed []*DecodeError) {
	for _, err := range failed {
		log.WithField("kind", err.Kind).Warnf("[WARN] dropped record: %v", err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
