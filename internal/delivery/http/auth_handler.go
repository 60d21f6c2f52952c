package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"pocketdesk/internal/delivery/http/dto"
	"pocketdesk/internal/middleware"
)

// AuthHandler handles operator login
type AuthHandler struct {
	auth         *middleware.JWTAuth
	username     string
	passwordHash string
}

// NewAuthHandler creates a new AuthHandler. passwordHash is a bcrypt hash;
// when empty, login is disabled and operator routes are open.
func NewAuthHandler(auth *middleware.JWTAuth, username, passwordHash string) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		username:     username,
		passwordHash: passwordHash,
	}
}

// Enabled reports whether operator routes require a token
func (h *AuthHandler) Enabled() bool {
	return h.passwordHash != ""
}

// Login handles operator login
// POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	if !h.Enabled() {
		return NotFoundResponse(c, "Operator login is not configured")
	}

	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return BadRequestResponse(c, "Username and password are required")
	}

	err := bcrypt.CompareHashAndPassword([]byte(h.passwordHash), []byte(req.Password))
	if err != nil || req.Username != h.username {
		return UnauthorizedResponse(c, "Invalid credentials")
	}

	token, err := h.auth.GenerateJWT(h.username, middleware.RoleOperator)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to generate token", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(middleware.TokenTTL.Seconds()),
	})

	return SuccessResponse(c, dto.LoginResponse{
		Token: token,
		Operator: &dto.OperatorOutput{
			Username:  h.username,
			Role:      middleware.RoleOperator,
			ExpiresIn: int(middleware.TokenTTL.Seconds()),
		},
	})
}

// Logout clears the token cookie
// POST /api/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1, // Delete cookie
	})
	return SuccessMessageResponse(c, "Logged out", nil)
}
