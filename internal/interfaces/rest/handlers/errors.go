package handlers

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/metropass/settlement-engine/internal/application"
)

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError maps application errors to HTTP responses
func WriteError(c echo.Context, err error, logger *slog.Logger) error {
	statusCode := application.ToHTTPStatus(err)
	errorCode := application.ToErrorCode(err)

	if statusCode >= 500 {
		logger.Error("request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"code", errorCode,
			"error", err)
	}

	return c.JSON(statusCode, ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Code:    errorCode,
			Message: err.Error(),
		},
	})
}
