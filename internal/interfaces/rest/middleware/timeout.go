package middleware

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
)

// Timeout bounds every request's context. Handlers observe the deadline
// through ctx; the error mapper turns the resulting error into a 408.
func Timeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
