package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/aitrader/strategy-studio/internal/api/middleware"
	"github.com/aitrader/strategy-studio/internal/core/domain"
)

type stubSessionService struct {
	signInFn   func(ctx context.Context, sessionID, email, password string) (*domain.Session, error)
	registerFn func(ctx context.Context, sessionID, name, email, password string) (*domain.Session, error)
	upgradeFn  func(ctx context.Context, sessionID string) (*domain.Session, error)
	guestIDs   []string
	signOutIDs []string
}

func (s *stubSessionService) SignIn(ctx context.Context, sessionID, email, password string) (*domain.Session, error) {
	return s.signInFn(ctx, sessionID, email, password)
}

func (s *stubSessionService) Register(ctx context.Context, sessionID, name, email, password string) (*domain.Session, error) {
	return s.registerFn(ctx, sessionID, name, email, password)
}

func (s *stubSessionService) ContinueAsGuest(_ context.Context, sessionID string) *domain.Session {
	s.guestIDs = append(s.guestIDs, sessionID)
	guest := domain.GuestAccount()
	return &domain.Session{ID: "g1", Tier: domain.TierGuest, Account: &guest}
}

func (s *stubSessionService) SignOut(_ context.Context, sessionID string) *domain.Session {
	s.signOutIDs = append(s.signOutIDs, sessionID)
	return domain.AnonymousSession(sessionID)
}

func (s *stubSessionService) Upgrade(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.upgradeFn(ctx, sessionID)
}

func (s *stubSessionService) Current(_ context.Context, sessionID string) *domain.Session {
	return domain.AnonymousSession(sessionID)
}

func (s *stubSessionService) IssueToken(sess *domain.Session) (string, error) {
	return "token-" + sess.ID, nil
}

func (s *stubSessionService) ParseToken(token string) (string, error) {
	return strings.TrimPrefix(token, "token-"), nil
}

func newJSONContext(method, target, body string, sess *domain.Session) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sess != nil {
		c.Set(middleware.SessionKey, sess)
	}
	return c, rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestSessionHandler_SignIn_Success(t *testing.T) {
	stub := &stubSessionService{
		signInFn: func(_ context.Context, sessionID, email, password string) (*domain.Session, error) {
			if sessionID != "s1" || email != "alice@example.com" || password != "123456" {
				t.Fatalf("unexpected args: %s %s %s", sessionID, email, password)
			}
			return &domain.Session{ID: "s1", Tier: domain.TierMember, Account: &domain.Account{Name: "alice"}}, nil
		},
	}
	h := NewSessionHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/v1/session/sign-in",
		`{"email":"alice@example.com","password":"123456"}`, domain.AnonymousSession("s1"))
	if err := h.SignIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeSession(t, rec)
	if resp["token"] != "token-s1" {
		t.Fatalf("unexpected token: %v", resp["token"])
	}
	caps, _ := resp["capabilities"].([]any)
	if len(caps) != len(domain.CapabilitiesOf(domain.TierMember)) {
		t.Fatalf("expected member capabilities, got %v", caps)
	}
}

func TestSessionHandler_SignIn_InvalidCredentials(t *testing.T) {
	stub := &stubSessionService{
		signInFn: func(context.Context, string, string, string) (*domain.Session, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewSessionHandler(stub)

	c, _ := newJSONContext(http.MethodPost, "/v1/session/sign-in", `{"email":"nope","password":"x"}`, nil)
	if err := h.SignIn(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSessionHandler_SignIn_MissingFields(t *testing.T) {
	h := NewSessionHandler(&stubSessionService{})

	c, _ := newJSONContext(http.MethodPost, "/v1/session/sign-in", `{"email":""}`, nil)
	err := h.SignIn(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestSessionHandler_Register_Created(t *testing.T) {
	stub := &stubSessionService{
		registerFn: func(_ context.Context, _, name, email, _ string) (*domain.Session, error) {
			return &domain.Session{ID: "r1", Tier: domain.TierMember, Account: &domain.Account{Name: name, Email: email}}, nil
		},
	}
	h := NewSessionHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/v1/session/register",
		`{"name":"Carol","email":"carol@example.com","password":"longpass1"}`, nil)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestSessionHandler_Register_ShortPassword(t *testing.T) {
	h := NewSessionHandler(&stubSessionService{})

	c, _ := newJSONContext(http.MethodPost, "/v1/session/register",
		`{"name":"Carol","email":"carol@example.com","password":"short"}`, nil)
	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
	if !strings.Contains(he.Message.(string), "password must be at least 8") {
		t.Fatalf("unexpected message: %v", he.Message)
	}
}

func TestSessionHandler_Guest(t *testing.T) {
	stub := &stubSessionService{}
	h := NewSessionHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/v1/session/guest", "", domain.AnonymousSession(""))
	if err := h.Guest(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeSession(t, rec)
	sess, _ := resp["session"].(map[string]any)
	if sess["tier"] != string(domain.TierGuest) || resp["token"] != "token-g1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSessionHandler_SignOut_NoToken(t *testing.T) {
	stub := &stubSessionService{}
	h := NewSessionHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/v1/session/sign-out", "", &domain.Session{ID: "s1", Tier: domain.TierMember})
	if err := h.SignOut(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(stub.signOutIDs) != 1 || stub.signOutIDs[0] != "s1" {
		t.Fatalf("sign-out not forwarded: %v", stub.signOutIDs)
	}
	resp := decodeSession(t, rec)
	if _, ok := resp["token"]; ok {
		t.Fatalf("sign-out must not issue a token")
	}
}

func TestSessionHandler_Upgrade(t *testing.T) {
	stub := &stubSessionService{
		upgradeFn: func(_ context.Context, sessionID string) (*domain.Session, error) {
			return &domain.Session{ID: sessionID, Tier: domain.TierPro}, nil
		},
	}
	h := NewSessionHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/v1/session/upgrade", "", &domain.Session{ID: "s1", Tier: domain.TierMember})
	if err := h.Upgrade(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeSession(t, rec)
	sess, _ := resp["session"].(map[string]any)
	if sess["tier"] != string(domain.TierPro) {
		t.Fatalf("expected pro, got %v", sess["tier"])
	}
}
