package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aitrader/strategy-studio/internal/api/middleware"
	"github.com/aitrader/strategy-studio/internal/core/domain"
)

// ctxSession returns the session resolved by the Session middleware.
func ctxSession(c echo.Context) *domain.Session {
	return middleware.SessionFrom(c)
}

// bindValid binds the request body into req and runs the registered validator.
// Bind failures are 400, validation failures 422.
func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
