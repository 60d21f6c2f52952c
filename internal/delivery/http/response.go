package http

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Response is the envelope of every dashboard API reply
type Response struct {
	Status  string      `json:"status"` // success or error
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

func respond(c echo.Context, code int, message string, data, err interface{}) error {
	status := "success"
	if code >= http.StatusBadRequest {
		status = "error"
	}
	return c.JSON(code, Response{Status: status, Message: message, Data: data, Error: err})
}

// SuccessResponse sends data with 200
func SuccessResponse(c echo.Context, data interface{}) error {
	return respond(c, http.StatusOK, "", data, nil)
}

// SuccessMessageResponse sends data and a human readable message with 200
func SuccessMessageResponse(c echo.Context, message string, data interface{}) error {
	return respond(c, http.StatusOK, message, data, nil)
}

// CreatedResponse sends data with 201
func CreatedResponse(c echo.Context, data interface{}) error {
	return respond(c, http.StatusCreated, "", data, nil)
}

// ErrorResponse sends an error envelope
func ErrorResponse(c echo.Context, statusCode int, message string, err interface{}) error {
	return respond(c, statusCode, message, nil, err)
}

// BadRequestResponse sends a 400 Bad Request response
func BadRequestResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusBadRequest, message, nil)
}

// UnauthorizedResponse sends a 401 Unauthorized response
func UnauthorizedResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusUnauthorized, message, nil)
}

// NotFoundResponse sends a 404 Not Found response
func NotFoundResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusNotFound, message, nil)
}

// ConflictResponse sends a 409 Conflict response
func ConflictResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusConflict, message, nil)
}

// BadGatewayResponse sends a 502 response for failures of the provider
func BadGatewayResponse(c echo.Context, message string, err error) error {
	return ErrorResponse(c, http.StatusBadGateway, message, errorText(err))
}

// InternalServerErrorResponse sends a 500 Internal Server Error response
func InternalServerErrorResponse(c echo.Context, message string, err error) error {
	return ErrorResponse(c, http.StatusInternalServerError, message, errorText(err))
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// RequestValidator plugs go-playground/validator into echo's c.Validate
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a RequestValidator
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// Validate implements echo.Validator
func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
