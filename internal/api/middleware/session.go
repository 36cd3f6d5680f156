package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aitrader/strategy-studio/internal/core/domain"
)

// SessionKey is the echo context key the Session middleware stores the
// resolved *domain.Session under.
const SessionKey = "session"

// SessionResolver turns a bearer token into the session it names.
type SessionResolver interface {
	ParseToken(token string) (string, error)
	Current(ctx context.Context, sessionID string) *domain.Session
}

// Session resolves the optional bearer token into the caller's session and
// injects it into the context. Requests without a token run as anonymous;
// a malformed or invalid token is rejected.
func Session(resolver SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				c.Set(SessionKey, domain.AnonymousSession(""))
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			sid, err := resolver.ParseToken(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(SessionKey, resolver.Current(c.Request().Context(), sid))
			return next(c)
		}
	}
}

// SessionFrom returns the session injected by Session, or an anonymous one
// when the middleware did not run.
func SessionFrom(c echo.Context) *domain.Session {
	if sess, ok := c.Get(SessionKey).(*domain.Session); ok && sess != nil {
		return sess
	}
	return domain.AnonymousSession("")
}
