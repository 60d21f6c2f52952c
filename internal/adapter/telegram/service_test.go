package telegram

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketdesk/internal/domain"
)

func TestNotificationService_Disabled(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	svc := NewNotificationServiceWithURL(srv.URL, "", "")
	assert.False(t, svc.Enabled())
	assert.NoError(t, svc.NotifyBotStopped("loss limit"))
	assert.Equal(t, int32(0), calls.Load())
}

func TestNotificationService_SendsMarkdown(t *testing.T) {
	var got telegramMessage
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	svc := NewNotificationServiceWithURL(srv.URL, "TOKEN", "chat-1")
	trade := domain.Trade{Pair: "AUD/USD", Type: domain.SignalBuy, OpenPrice: 0.6521, Expiration: "1m", Timestamp: "14:00:00"}
	require.NoError(t, svc.NotifyTradeOpened(trade))

	assert.Equal(t, "/botTOKEN/sendMessage", path)
	assert.Equal(t, "chat-1", got.ChatID)
	assert.Equal(t, "Markdown", got.ParseMode)
	assert.Contains(t, got.Text, "BUY AUD/USD")
}

func TestNotificationService_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false}`))
	}))
	defer srv.Close()

	svc := NewNotificationServiceWithURL(srv.URL, "TOKEN", "chat-1")
	err := svc.NotifySettingsFailed(domain.Settings{PocketOptionID: "po"}, errors.New("boom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}
