package http

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"pocketdesk/internal/metrics"
	"pocketdesk/internal/ranking"
	"pocketdesk/internal/usecase"
)

// DashboardHandler serves the read side of the session
type DashboardHandler struct {
	session     *usecase.Session
	bestSignals int
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(session *usecase.Session, bestSignals int) *DashboardHandler {
	if bestSignals <= 0 {
		bestSignals = ranking.DefaultBestSignals
	}
	return &DashboardHandler{session: session, bestSignals: bestSignals}
}

// GetDashboard returns the complete operator view
// GET /api/dashboard
func (h *DashboardHandler) GetDashboard(c echo.Context) error {
	return SuccessResponse(c, h.session.Dashboard(h.bestSignals))
}

// GetTopSignals returns the best signals, highest probability first
// GET /api/signals/top?limit=k
func (h *DashboardHandler) GetTopSignals(c echo.Context) error {
	limit := h.bestSignals
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return BadRequestResponse(c, "limit must be a non-negative integer")
		}
		limit = n
	}

	snap := h.session.Snapshot()
	return SuccessResponse(c, map[string]interface{}{
		"cycle":   snap.Cycle,
		"signals": ranking.TopN(snap.Observations, limit),
	})
}

// GetTrades returns the trade history with its aggregates
// GET /api/trades
func (h *DashboardHandler) GetTrades(c echo.Context) error {
	snap := h.session.Snapshot()
	return SuccessResponse(c, map[string]interface{}{
		"cycle":   snap.Cycle,
		"trades":  snap.Trades,
		"metrics": metrics.Compute(snap),
	})
}
