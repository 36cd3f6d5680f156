package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aitrader/strategy-studio/internal/core/domain"
	"github.com/aitrader/strategy-studio/internal/core/ports"
)

// SessionHandler exposes the tier events. Each event continues the caller's
// session id when a token was presented and returns a fresh token.
type SessionHandler struct {
	sessions ports.SessionService
}

func NewSessionHandler(sessions ports.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// SignIn moves the session to member (or pro for a pro account).
//
// @Summary      Sign in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/session/sign-in [post]
func (h *SessionHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	sess, err := h.sessions.SignIn(c.Request().Context(), ctxSession(c).ID, req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, sess)
}

// Register creates an account and signs it in.
//
// @Summary      Register a new account
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/session/register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	sess, err := h.sessions.Register(c.Request().Context(), ctxSession(c).ID, req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusCreated, sess)
}

// Guest starts an unpersisted guest session.
//
// @Summary      Continue as guest
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /v1/session/guest [post]
func (h *SessionHandler) Guest(c echo.Context) error {
	sess := h.sessions.ContinueAsGuest(c.Request().Context(), ctxSession(c).ID)
	return h.respond(c, http.StatusOK, sess)
}

// SignOut drops the identity. The response carries no token.
//
// @Summary      Sign out
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Router       /v1/session/sign-out [post]
func (h *SessionHandler) SignOut(c echo.Context) error {
	sess := h.sessions.SignOut(c.Request().Context(), ctxSession(c).ID)
	return c.JSON(http.StatusOK, newSessionResponse("", sess))
}

// Upgrade flags a member as pro. Other tiers are left unchanged.
//
// @Summary      Upgrade to pro
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/session/upgrade [post]
func (h *SessionHandler) Upgrade(c echo.Context) error {
	sess, err := h.sessions.Upgrade(c.Request().Context(), ctxSession(c).ID)
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, sess)
}

// Current reports the caller's tier and capabilities.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Router       /v1/session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	return c.JSON(http.StatusOK, newSessionResponse("", ctxSession(c)))
}

func (h *SessionHandler) respond(c echo.Context, status int, sess *domain.Session) error {
	token, err := h.sessions.IssueToken(sess)
	if err != nil {
		return err
	}
	return c.JSON(status, newSessionResponse(token, sess))
}
