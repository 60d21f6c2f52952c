package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"pocketdesk/internal/domain"
	"pocketdesk/internal/repository"
)

var log = logrus.WithField("module", "provider-api")

const (
	defaultUserID = int64(1)
	signalWindow  = time.Hour
	signalLimit   = 20
	tradeLimit    = 50
)

// Pinger reports database reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the provider actions over the signal, trade and settings tables
type Handler struct {
	signals  domain.SignalRepository
	trades   domain.TradeRepository
	settings domain.UserSettingsRepository
	db       Pinger
	validate *validator.Validate
}

// NewHandler creates a provider handler. db may be nil.
func NewHandler(
	signals domain.SignalRepository,
	trades domain.TradeRepository,
	settings domain.UserSettingsRepository,
	db Pinger,
) *Handler {
	return &Handler{
		signals:  signals,
		trades:   trades,
		settings: settings,
		db:       db,
		validate: validator.New(),
	}
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbStatus := "unknown"
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		dbStatus = "healthy"
		if err := h.db.Ping(ctx); err != nil {
			dbStatus = "unhealthy"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"service":   "pocketdesk-provider",
		"database":  dbStatus,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// GetSignals handles GET /signals
func (h *Handler) GetSignals(w http.ResponseWriter, r *http.Request) {
	signals, err := h.signals.GetRecent(r.Context(), signalWindow, signalLimit)
	if err != nil {
		h.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"signals": signals})
}

// GetTrades handles GET /trades?user_id=
func (h *Handler) GetTrades(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	trades, err := h.trades.GetByUserID(r.Context(), userID, tradeLimit)
	if err != nil {
		h.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trades": trades})
}

// GetBalance handles GET /balance?user_id=
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out := domain.Balance{Balance: domain.DefaultProviderBalance}
	rec, err := h.settings.GetByID(r.Context(), userID)
	switch {
	case err == nil:
		out.Balance = rec.Balance
		out.BotActive = rec.BotActive
		out.IsConnected = rec.IsConnected
	case errors.Is(err, repository.ErrSettingsNotFound):
	default:
		h.internalError(w, err)
		return
	}

	out.TotalProfit, err = h.trades.GetClosedProfit(r.Context(), userID)
	if err != nil {
		h.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type saveSettingsRequest struct {
	PocketOptionID string   `json:"pocket_option_id"`
	IsConnected    bool     `json:"is_connected"`
	BotActive      bool     `json:"bot_active"`
	LossLimit      *float64 `json:"loss_limit"`
	TradeInterval  *int     `json:"trade_interval"`
}

// SaveSettings handles POST /settings
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var req saveSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	settings := domain.DefaultSettings()
	settings.PocketOptionID = req.PocketOptionID
	settings.IsConnected = req.IsConnected
	settings.BotActive = req.BotActive
	if req.LossLimit != nil {
		settings.LossLimit = *req.LossLimit
	}
	if req.TradeInterval != nil {
		settings.TradeInterval = *req.TradeInterval
	}
	if err := h.validate.Struct(settings); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("settings invalid: %v", err))
		return
	}

	rec, err := h.settings.Upsert(r.Context(), settings)
	if err != nil {
		h.internalError(w, err)
		return
	}

	log.WithField("pocket_option_id", rec.PocketOptionID).Info("[OK] settings saved")
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "settings": rec})
}

type openTradeRequest struct {
	UserID     *int64  `json:"user_id"`
	Pair       string  `json:"pair" validate:"required"`
	Type       string  `json:"type" validate:"required,oneof=BUY SELL"`
	OpenPrice  float64 `json:"open_price" validate:"gt=0"`
	Expiration string  `json:"expiration"`
}

// OpenTrade handles POST /trade
func (h *Handler) OpenTrade(w http.ResponseWriter, r *http.Request) {
	var req openTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("trade invalid: %v", err))
		return
	}

	trade := &domain.TradeRecord{
		UserID:     defaultUserID,
		Pair:       req.Pair,
		TradeType:  req.Type,
		OpenPrice:  req.OpenPrice,
		Expiration: req.Expiration,
	}
	if req.UserID != nil {
		trade.UserID = *req.UserID
	}

	if err := h.trades.Open(r.Context(), trade); err != nil {
		h.internalError(w, err)
		return
	}

	log.WithFields(logrus.Fields{
		"trade_id": trade.ID,
		"pair":     trade.Pair,
		"type":     trade.TradeType,
	}).Info("[OK] trade opened")
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "trade": trade})
}

func (h *Handler) internalError(w http.ResponseWriter, err error) {
	log.Errorf("[ERROR] %v", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func userIDParam(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		return defaultUserID, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user_id %q", raw)
	}
	return id, nil
}
