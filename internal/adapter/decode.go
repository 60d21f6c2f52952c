package adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pocketdesk/internal/domain"
	"pocketdesk/internal/utils"
)

// DecodeError reports one provider record that was dropped
type DecodeError struct {
	Kind  string // signal, trade
	Index int    // position in the payload
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("failed to decode %s record %d: %v", e.Kind, e.Index, e.Err)
	}
	return fmt.Sprintf("failed to decode %s record %d: field %s: %v", e.Kind, e.Index, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

var (
	errMissing  = errors.New("missing")
	errNotValid = errors.New("invalid value")
)

// FlexibleTime handles the timestamp formats the provider emits
type FlexibleTime struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999-07:00", // Python str(datetime) with offset
	"2006-01-02T15:04:05.999999",       // Python datetime format without timezone
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	time.DateTime,
}

// UnmarshalJSON implements custom JSON unmarshalling for flexible timestamp parsing
func (ft *FlexibleTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	if s == "" || s == "null" {
		ft.Time = time.Time{}
		return nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ft.Time = t
			return nil
		}
	}

	return fmt.Errorf("unable to parse timestamp: %s", s)
}

// numeric fields accept JSON numbers and numeric strings; SQL decimals
// arrive quoted
type signalWire struct {
	ID            json.RawMessage     `json:"id"`
	PairName      string              `json:"pair_name"`
	Price         decimal.NullDecimal `json:"price"`
	ChangePercent decimal.NullDecimal `json:"change_percent"`
	Volatility    decimal.NullDecimal `json:"volatility"`
	SignalType    string              `json:"signal_type"`
	Probability   decimal.NullDecimal `json:"probability"`
	Expiration    string              `json:"expiration"`
}

type tradeWire struct {
	ID         json.RawMessage     `json:"id"`
	Pair       string              `json:"pair"`
	TradeType  string              `json:"trade_type"`
	OpenPrice  decimal.NullDecimal `json:"open_price"`
	ClosePrice decimal.NullDecimal `json:"close_price"`
	Profit     decimal.NullDecimal `json:"profit"`
	OpenedAt   json.RawMessage     `json:"opened_at"`
	Expiration string              `json:"expiration"`
}

type balanceWire struct {
	Balance     decimal.NullDecimal `json:"balance"`
	TotalProfit decimal.NullDecimal `json:"total_profit"`
	BotActive   bool                `json:"bot_active"`
	IsConnected bool                `json:"is_connected"`
}

// DecodeSignals decodes each record on its own. Records without an id get
// their 1-based payload position.
func DecodeSignals(records []json.RawMessage) ([]domain.Observation, []*DecodeError) {
	out := make([]domain.Observation, 0, len(records))
	var failed []*DecodeError
	for i, raw := range records {
		obs, err := decodeSignal(i, raw)
		if err != nil {
			failed = append(failed, err)
			continue
		}
		out = append(out, obs)
	}
	return out, failed
}

func decodeSignal(i int, raw json.RawMessage) (domain.Observation, *DecodeError) {
	fail := func(field string, err error) *DecodeError {
		return &DecodeError{Kind: "signal", Index: i, Field: field, Err: err}
	}

	var w signalWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.Observation{}, fail("", err)
	}
	if w.PairName == "" {
		return domain.Observation{}, fail("pair_name", errMissing)
	}
	signal := domain.SignalType(strings.ToUpper(w.SignalType))
	if !signal.Valid() {
		return domain.Observation{}, fail("signal_type", fmt.Errorf("%w: %q", errNotValid, w.SignalType))
	}

	price, err := requiredNumber(w.Price)
	if err != nil {
		return domain.Observation{}, fail("price", err)
	}
	if price <= 0 {
		return domain.Observation{}, fail("price", errNotValid)
	}
	change, err := requiredNumber(w.ChangePercent)
	if err != nil {
		return domain.Observation{}, fail("change_percent", err)
	}
	volatility, err := requiredNumber(w.Volatility)
	if err != nil {
		return domain.Observation{}, fail("volatility", err)
	}
	probability, err := requiredNumber(w.Probability)
	if err != nil {
		return domain.Observation{}, fail("probability", err)
	}

	id, ok := rawID(w.ID)
	if !ok {
		id = strconv.Itoa(i + 1)
	}

	obs := domain.Observation{
		ID:          id,
		Name:        w.PairName,
		Price:       price,
		Change:      change,
		Volatility:  volatility,
		Signal:      signal,
		Probability: probability,
		Expiration:  w.Expiration,
	}
	obs.Clamp()
	return obs, nil
}

// DecodeTrades decodes each record on its own. A closed trade without a
// profit gets one derived from stake.
func DecodeTrades(records []json.RawMessage, stake float64) ([]domain.Trade, []*DecodeError) {
	out := make([]domain.Trade, 0, len(records))
	var failed []*DecodeError
	for i, raw := range records {
		t, err := decodeTrade(i, raw, stake)
		if err != nil {
			failed = append(failed, err)
			continue
		}
		out = append(out, t)
	}
	return out, failed
}

func decodeTrade(i int, raw json.RawMessage, stake float64) (domain.Trade, *DecodeError) {
	fail := func(field string, err error) *DecodeError {
		return &DecodeError{Kind: "trade", Index: i, Field: field, Err: err}
	}

	var w tradeWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.Trade{}, fail("", err)
	}
	id, ok := rawID(w.ID)
	if !ok {
		return domain.Trade{}, fail("id", errMissing)
	}
	if w.Pair == "" {
		return domain.Trade{}, fail("pair", errMissing)
	}
	side := domain.SignalType(strings.ToUpper(w.TradeType))
	if !side.Actionable() {
		return domain.Trade{}, fail("trade_type", fmt.Errorf("%w: %q", errNotValid, w.TradeType))
	}
	openPrice, err := requiredNumber(w.OpenPrice)
	if err != nil {
		return domain.Trade{}, fail("open_price", err)
	}

	var openedAt FlexibleTime
	if len(w.OpenedAt) > 0 {
		if err := openedAt.UnmarshalJSON(w.OpenedAt); err != nil {
			return domain.Trade{}, fail("opened_at", err)
		}
	}

	t := domain.Trade{
		ID:         id,
		Pair:       w.Pair,
		Type:       side,
		OpenPrice:  openPrice,
		Expiration: w.Expiration,
	}
	if !openedAt.IsZero() {
		t.Timestamp = utils.FormatClock(openedAt.Time)
	}
	if w.ClosePrice.Valid {
		t.ClosePrice = w.ClosePrice.Decimal.InexactFloat64()
	}

	switch {
	case w.Profit.Valid:
		t.Profit = w.Profit.Decimal.InexactFloat64()
		if t.IsClosed() && !domain.ProfitAgreesWithDirection(side, t.OpenPrice, t.ClosePrice, t.Profit) {
			log.Warnf("[WARN] trade %s: provider profit %.2f contradicts %s %.5f -> %.5f", id, t.Profit, side, t.OpenPrice, t.ClosePrice)
		}
	case t.IsClosed():
		t.Profit = domain.DeriveProfit(side, t.OpenPrice, t.ClosePrice, stake)
	}
	return t, nil
}

func decodeBalance(raw []byte) (domain.Balance, error) {
	var w balanceWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.Balance{}, fmt.Errorf("failed to decode balance: %w", err)
	}
	balance, err := requiredNumber(w.Balance)
	if err != nil {
		return domain.Balance{}, fmt.Errorf("failed to decode balance: field balance: %w", err)
	}
	b := domain.Balance{
		Balance:     balance,
		BotActive:   w.BotActive,
		IsConnected: w.IsConnected,
	}
	if w.TotalProfit.Valid {
		b.TotalProfit = w.TotalProfit.Decimal.InexactFloat64()
	}
	return b, nil
}

func requiredNumber(n decimal.NullDecimal) (float64, error) {
	if !n.Valid {
		return 0, errMissing
	}
	return n.Decimal.InexactFloat64(), nil
}

// rawID normalizes a numeric or string id
func rawID(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return "", false
		}
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", false
	}
	return n.String(), true
}
