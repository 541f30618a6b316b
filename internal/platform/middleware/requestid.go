package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const ridKey = "request_id"

// RequestID tags every request with an id, honoring one supplied by the
// caller in X-Request-ID.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get("X-Request-ID")
			if rid == "" {
				rid = uuid.New().String()
			}
			c.Set(ridKey, rid)
			c.Response().Header().Set("X-Request-ID", rid)
			return next(c)
		}
	}
}

// RequestIDFrom returns the id assigned to the request, or "" before the
// RequestID middleware has run.
func RequestIDFrom(c echo.Context) string {
	rid, _ := c.Get(ridKey).(string)
	return rid
}
