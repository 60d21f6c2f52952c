package adapter

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketdesk/internal/domain"
	"pocketdesk/internal/utils"
)

func rawRecords(t *testing.T, payload string) []json.RawMessage {
	t.Helper()
	var records []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(payload), &records))
	return records
}

func TestDecodeSignals_DropsOnlyMalformedRecords(t *testing.T) {
	records := rawRecords(t, `[
		{"pair_name":"EUR/USD","price":1.0875,"change_percent":0.34,"volatility":72,"signal_type":"BUY","probability":87,"expiration":"2m"},
		{"pair_name":"GBP/USD","price":"abc","change_percent":-0.21,"volatility":65,"signal_type":"SELL","probability":82,"expiration":"1m"},
		{"pair_name":"USD/JPY","price":"149.32","change_percent":"0.18","volatility":"58.00","signal_type":"buy","probability":"76.0","expiration":"2m"}
	]`)

	obs, failed := DecodeSignals(records)
	require.Len(t, obs, 2)
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].Index)
	assert.Equal(t, "signal", failed[0].Kind)

	assert.Equal(t, "1", obs[0].ID)
	assert.Equal(t, "EUR/USD", obs[0].Name)
	assert.Equal(t, "3", obs[1].ID, "synthesized id is the payload position")
	assert.Equal(t, 149.32, obs[1].Price)
	assert.Equal(t, domain.SignalBuy, obs[1].Signal)
	assert.Equal(t, 76.0, obs[1].Probability)
}

func TestDecodeSignals_MissingNumericField(t *testing.T) {
	records := rawRecords(t, `[
		{"pair_name":"EUR/USD","price":1.1,"volatility":72,"signal_type":"BUY","probability":87},
		{"id":9,"pair_name":"AUD/USD","price":0.65,"change_percent":0.4,"volatility":150,"signal_type":"HOLD","probability":-3}
	]`)

	obs, failed := DecodeSignals(records)
	require.Len(t, failed, 1)
	assert.Equal(t, "change_percent", failed[0].Field)
	assert.True(t, errors.Is(failed[0], errMissing))

	require.Len(t, obs, 1)
	assert.Equal(t, "9", obs[0].ID)
	assert.Equal(t, 100.0, obs[0].Volatility)
	assert.Equal(t, 0.0, obs[0].Probability)
}

func TestDecodeSignals_RejectsUnknownSignalAndBadPrice(t *testing.T) {
	records := rawRecords(t, `[
		{"pair_name":"EUR/USD","price":1.1,"change_percent":0,"volatility":50,"signal_type":"MAYBE","probability":50},
		{"pair_name":"EUR/USD","price":0,"change_percent":0,"volatility":50,"signal_type":"BUY","probability":50},
		{"price":1.1,"change_percent":0,"volatility":50,"signal_type":"BUY","probability":50}
	]`)

	obs, failed := DecodeSignals(records)
	assert.Empty(t, obs)
	require.Len(t, failed, 3)
	assert.Equal(t, "signal_type", failed[0].Field)
	assert.Equal(t, "price", failed[1].Field)
	assert.Equal(t, "pair_name", failed[2].Field)
}

func TestDecodeTrades(t *testing.T) {
	utils.SetDisplayLocation("UTC")

	records := rawRecords(t, `[
		{"id":7,"pair":"EUR/USD","trade_type":"BUY","open_price":"1.0850","close_price":"1.0875","profit":"25.00","opened_at":"2024-03-01 14:32:15.123456+00:00","expiration":"2m"},
		{"id":8,"pair":"GBP/USD","trade_type":"SELL","open_price":1.2650,"close_price":null,"profit":null,"opened_at":"2024-03-01T14:30:42Z","expiration":"1m"},
		{"pair":"USD/JPY","trade_type":"BUY","open_price":149.40,"close_price":149.32,"profit":-8},
		{"id":10,"pair":"USD/CHF","trade_type":"HOLD","open_price":0.88},
		{"id":11,"pair":"AUD/USD","trade_type":"BUY","open_price":0.6500,"close_price":0.6521,"opened_at":"2024-03-01 14:28:10"}
	]`)

	trades, failed := DecodeTrades(records, 10)
	require.Len(t, failed, 2)
	assert.Equal(t, "id", failed[0].Field)
	assert.Equal(t, "trade_type", failed[1].Field)

	require.Len(t, trades, 3)

	closed := trades[0]
	assert.Equal(t, "7", closed.ID)
	assert.Equal(t, 1.0875, closed.ClosePrice)
	assert.Equal(t, 25.0, closed.Profit)
	assert.Equal(t, "14:32:15", closed.Timestamp)
	assert.True(t, closed.OpenedAt.IsZero(), "the instant is not kept")

	open := trades[1]
	assert.False(t, open.IsClosed())
	assert.Equal(t, 0.0, open.Profit)
	assert.Equal(t, "14:30:42", open.Timestamp)

	derived := trades[2]
	assert.Equal(t, domain.DeriveProfit(domain.SignalBuy, 0.65, 0.6521, 10), derived.Profit)
	assert.Greater(t, derived.Profit, 0.0)
	assert.Equal(t, "14:28:10", derived.Timestamp)
}

func TestDecodeTrades_BadTimestamp(t *testing.T) {
	records := rawRecords(t, `[{"id":1,"pair":"EUR/USD","trade_type":"BUY","open_price":1.1,"opened_at":"yesterday"}]`)

	trades, failed := DecodeTrades(records, 10)
	assert.Empty(t, trades)
	require.Len(t, failed, 1)
	assert.Equal(t, "opened_at", failed[0].Field)
}

func TestDecodeBalance(t *testing.T) {
	b, err := decodeBalance([]byte(`{"balance":"1012.50","total_profit":12.5,"bot_active":true,"is_connected":false}`))
	require.NoError(t, err)
	assert.Equal(t, domain.Balance{Balance: 1012.5, TotalProfit: 12.5, BotActive: true}, b)

	_, err = decodeBalance([]byte(`{"total_profit":1}`))
	assert.Error(t, err)
}

func TestRawID(t *testing.T) {
	for raw, want := range map[string]string{`12`: "12", `"abc"`: "abc", `3.0`: "3.0"} {
		got, ok := rawID(json.RawMessage(raw))
		assert.True(t, ok, raw)
		assert.Equal(t, want, got)
	}
	for _, raw := range []string{``, `null`, `""`, `{}`} {
		_, ok := rawID(json.RawMessage(raw))
		assert.False(t, ok, raw)
	}
}
