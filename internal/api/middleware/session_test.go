package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/aitrader/strategy-studio/internal/core/domain"
)

type stubResolver struct {
	sessions map[string]*domain.Session
}

func (r *stubResolver) ParseToken(token string) (string, error) {
	if token == "good" {
		return "s1", nil
	}
	return "", domain.ErrInvalidCredentials
}

func (r *stubResolver) Current(_ context.Context, sessionID string) *domain.Session {
	if sess, ok := r.sessions[sessionID]; ok {
		return sess
	}
	return domain.AnonymousSession(sessionID)
}

func newResolver() *stubResolver {
	return &stubResolver{sessions: map[string]*domain.Session{
		"s1": {ID: "s1", Tier: domain.TierMember},
	}}
}

func TestSessionMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Session(newResolver())(func(c echo.Context) error {
		called = true
		sess := SessionFrom(c)
		if sess.ID != "s1" || sess.Tier != domain.TierMember {
			t.Fatalf("unexpected session: %+v", sess)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestSessionMiddleware_MissingHeaderIsAnonymous(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Session(newResolver())(func(c echo.Context) error {
		if sess := SessionFrom(c); sess.Tier != domain.TierAnonymous || sess.ID != "" {
			t.Fatalf("expected anonymous session, got %+v", sess)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestSessionMiddleware_Rejects(t *testing.T) {
	cases := []string{"Bearer bad", "Basic abc", "garbage"}
	for _, header := range cases {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := Session(newResolver())(func(c echo.Context) error {
			t.Fatalf("should not reach next handler for %q", header)
			return nil
		})

		err := handler(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401, got %v", header, err)
		}
	}
}

func TestSessionFrom_WithoutMiddleware(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if sess := SessionFrom(c); sess.Tier != domain.TierAnonymous {
		t.Fatalf("expected anonymous fallback, got %s", sess.Tier)
	}
}
