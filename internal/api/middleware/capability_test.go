package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/aitrader/strategy-studio/internal/core/domain"
)

func TestRequireCapability_Allows(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(SessionKey, &domain.Session{ID: "s1", Tier: domain.TierPro})

	called := false
	handler := RequireCapability(domain.CapSaveDefinition, domain.CapExportCode)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireCapability_Denies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(SessionKey, &domain.Session{ID: "s1", Tier: domain.TierGuest})

	handler := RequireCapability(domain.CapViewSample, domain.CapRunBacktest)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	err := handler(c)
	var denied *domain.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected *domain.DeniedError, got %v", err)
	}
	if denied.Capability != domain.CapRunBacktest || denied.Tier != domain.TierGuest {
		t.Fatalf("unexpected denial: %+v", denied)
	}
}
