package http

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"pocketdesk/internal/delivery/http/dto"
	"pocketdesk/internal/domain"
	"pocketdesk/internal/usecase"
)

// OperatorHandler handles operator actions on the session
type OperatorHandler struct {
	session *usecase.Session
}

// NewOperatorHandler creates a new OperatorHandler
func NewOperatorHandler(session *usecase.Session) *OperatorHandler {
	return &OperatorHandler{session: session}
}

// ToggleBot arms or disarms the bot
// POST /api/operator/bot/toggle
func (h *OperatorHandler) ToggleBot(c echo.Context) error {
	settings := h.session.ToggleBot()
	msg := "Bot stopped"
	if settings.BotActive {
		msg = "Bot started"
	}
	return SuccessMessageResponse(c, msg, settings)
}

// ToggleConnection flips the connection flag
// POST /api/operator/connection/toggle
func (h *OperatorHandler) ToggleConnection(c echo.Context) error {
	settings := h.session.ToggleConnection()
	msg := "Disconnected"
	if settings.IsConnected {
		msg = "Connected"
	}
	return SuccessMessageResponse(c, msg, settings)
}

// OpenTrade opens a trade from the signal of a pair
// POST /api/operator/trades
func (h *OperatorHandler) OpenTrade(c echo.Context) error {
	var req dto.OpenTradeRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return BadRequestResponse(c, "pair_id is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	trade, err := h.session.OpenTrade(ctx, req.PairID)
	switch {
	case errors.Is(err, domain.ErrObservationNotFound):
		return NotFoundResponse(c, err.Error())
	case errors.Is(err, domain.ErrHoldSignal):
		return BadRequestResponse(c, err.Error())
	case errors.Is(err, domain.ErrBotInactive), errors.Is(err, domain.ErrTradeIntervalNotElapsed):
		return ConflictResponse(c, err.Error())
	case err != nil:
		return BadGatewayResponse(c, "Failed to open trade", err)
	}

	return CreatedResponse(c, dto.TradeOutput{
		Trade:   trade,
		Account: h.session.Account(),
	})
}

// ClearPosition drops the active position
// DELETE /api/operator/position
func (h *OperatorHandler) ClearPosition(c echo.Context) error {
	h.session.ClearPosition()
	return SuccessMessageResponse(c, "Position cleared", h.session.Account())
}

// ApplySettings validates and persists the settings bundle
// PUT /api/operator/settings
func (h *OperatorHandler) ApplySettings(c echo.Context) error {
	var req dto.SettingsRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	settings, err := h.session.ApplySettings(ctx, req.ToDomain())
	var perr *domain.PersistenceError
	switch {
	case errors.Is(err, domain.ErrInvalidSettings):
		return BadRequestResponse(c, err.Error())
	case errors.As(err, &perr):
		return BadGatewayResponse(c, "Settings were not saved", perr)
	case err != nil:
		return InternalServerErrorResponse(c, "Failed to apply settings", err)
	}

	return SuccessMessageResponse(c, "Settings saved", settings)
}
