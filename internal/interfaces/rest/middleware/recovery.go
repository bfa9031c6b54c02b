package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/labstack/echo/v4"

	"github.com/metropass/settlement-engine/internal/application"
)

// Recovery recovers from handler panics and returns a 500.
func Recovery(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error(
						"panic recovered",
						"panic", rec,
						"method", c.Request().Method,
						"path", c.Request().URL.Path,
						"stack", string(debug.Stack()),
					)
					err = application.NewInternalError(fmt.Errorf("panic: %v", rec))
				}
			}()

			return next(c)
		}
	}
}
