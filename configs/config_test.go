package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "PROVIDER_URL", "REFRESH_MODE", "POLL_INTERVAL", "SIM_INTERVAL", "BEST_SIGNALS", "TRADE_STAKE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, ModeLocal, cfg.RefreshMode())
	assert.Equal(t, 2*time.Second, cfg.RefreshPeriod())
	assert.Equal(t, 4, cfg.Session.BestSignals)
	assert.Equal(t, int64(1), cfg.Provider.UserID)
	require.NoError(t, cfg.Validate())
}

func TestLoad_RemoteWhenProviderSet(t *testing.T) {
	t.Setenv("REFRESH_MODE", "")
	t.Setenv("PROVIDER_URL", "http://provider:8000")
	t.Setenv("POLL_INTERVAL", "3s")

	cfg := Load()
	assert.Equal(t, ModeRemote, cfg.RefreshMode())
	assert.Equal(t, 3*time.Second, cfg.RefreshPeriod())
	require.NoError(t, cfg.Validate())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("BEST_SIGNALS", "many")
	t.Setenv("SIM_INTERVAL", "soon")
	t.Setenv("TRADE_STAKE", "ten")

	cfg := Load()
	assert.Equal(t, 4, cfg.Session.BestSignals)
	assert.Equal(t, 2*time.Second, cfg.Refresh.SimInterval)
	assert.Equal(t, 10.0, cfg.Session.TradeStake)
}

func TestValidate(t *testing.T) {
	t.Setenv("PROVIDER_URL", "")

	cfg := Load()
	cfg.Refresh.Mode = "sometimes"
	assert.Error(t, cfg.Validate())

	cfg.Refresh.Mode = ModeRemote
	assert.Error(t, cfg.Validate(), "remote mode needs a provider")

	cfg.Refresh.Mode = ModeLocal
	cfg.Refresh.SimInterval = 0
	assert.Error(t, cfg.Validate())
}
