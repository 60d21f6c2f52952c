package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	custommiddleware "pocketdesk/internal/middleware"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	AuthHandler      *AuthHandler
	DashboardHandler *DashboardHandler
	OperatorHandler  *OperatorHandler
	Auth             *custommiddleware.JWTAuth
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	e.Validator = NewRequestValidator()

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging for high-frequency polling endpoints to reduce noise
			path := c.Request().URL.Path
			return path == "/health" || path == "/api/dashboard"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())

	e.GET("/health", func(c echo.Context) error {
		return SuccessResponse(c, map[string]interface{}{
			"status":    "healthy",
			"service":   "pocketdesk-api",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := e.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	{
		auth.POST("/login", config.AuthHandler.Login)
		auth.POST("/logout", config.AuthHandler.Logout)
	}

	// Read routes (public)
	api.GET("/dashboard", config.DashboardHandler.GetDashboard)
	api.GET("/signals/top", config.DashboardHandler.GetTopSignals)
	api.GET("/trades", config.DashboardHandler.GetTrades)

	// Operator routes, protected once a password is configured
	var guards []echo.MiddlewareFunc
	if config.AuthHandler.Enabled() {
		guards = append(guards, config.Auth.AuthMiddleware)
	}
	operator := api.Group("/operator", guards...)
	{
		operator.POST("/bot/toggle", config.OperatorHandler.ToggleBot)
		operator.POST("/connection/toggle", config.OperatorHandler.ToggleConnection)
		operator.POST("/trades", config.OperatorHandler.OpenTrade)
		operator.DELETE("/position", config.OperatorHandler.ClearPosition)
		operator.PUT("/settings", config.OperatorHandler.ApplySettings)
	}
}
