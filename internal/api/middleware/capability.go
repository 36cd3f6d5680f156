package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/aitrader/strategy-studio/internal/core/domain"
)

// RequireCapability rejects the request unless the session's tier grants every
// listed capability. The *domain.DeniedError is handed to the HTTP error
// handler, which renders 403 with the missing capability.
func RequireCapability(caps ...domain.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tier := SessionFrom(c).Tier
			for _, capability := range caps {
				if err := domain.Authorize(tier, capability); err != nil {
					return err
				}
			}
			return next(c)
		}
	}
}
