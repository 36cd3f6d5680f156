package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aitrader/strategy-studio/internal/core/domain"
	"github.com/aitrader/strategy-studio/internal/core/service"
	"github.com/aitrader/strategy-studio/internal/synth"
)

// WorkspaceProvider hands out the workspace bound to a session id.
type WorkspaceProvider interface {
	For(ctx context.Context, sessionID string) *service.Workspace
}

// ArtifactReader returns the most recent background rendering of a target.
type ArtifactReader interface {
	Get(sessionID string, target synth.Target) (synth.Artifact, bool)
}

// ClipboardReader returns what the last export placed on the clipboard.
type ClipboardReader interface {
	Paste(ctx context.Context, sessionID string) (string, bool, error)
}

type WorkspaceHandler struct {
	workspaces WorkspaceProvider
	latest     ArtifactReader
	clipboard  ClipboardReader
}

func NewWorkspaceHandler(workspaces WorkspaceProvider, latest ArtifactReader, clipboard ClipboardReader) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaces: workspaces,
		latest:     latest,
		clipboard:  clipboard,
	}
}

func (h *WorkspaceHandler) workspace(c echo.Context) *service.Workspace {
	return h.workspaces.For(c.Request().Context(), ctxSession(c).ID)
}

// GetStrategy returns the active definition.
//
// @Summary      Active strategy definition
// @Tags         workspace
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  strategyResponse
// @Router       /v1/workspace/strategy [get]
func (h *WorkspaceHandler) GetStrategy(c echo.Context) error {
	w := h.workspace(c)
	return c.JSON(http.StatusOK, strategyResponse{Definition: w.Definition(), Seq: w.Seq()})
}

// PatchStrategy edits the fields present in the body. A rejected value leaves
// the definition untouched.
//
// @Summary      Edit strategy fields
// @Tags         workspace
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      strategyRequest  true  "Fields to change"
// @Success      200   {object}  strategyResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/workspace/strategy [patch]
func (h *WorkspaceHandler) PatchStrategy(c echo.Context) error {
	w := h.workspace(c)
	if err := w.Authorize(c.Request().Context(), domain.CapEditDefinition); err != nil {
		return err
	}

	var req strategyRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	def, err := w.Update(c.Request().Context(), req.patch().Apply)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, strategyResponse{Definition: def, Seq: w.Seq()})
}

// ReplaceStrategy applies a whole proposed definition, as produced by the
// assistant. Missing fields take their defaults. Without edit rights the
// proposal is discarded unread.
//
// @Summary      Apply a proposed strategy
// @Tags         workspace
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      strategyRequest  true  "Proposed definition"
// @Success      200   {object}  strategyResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/workspace/strategy [put]
func (h *WorkspaceHandler) ReplaceStrategy(c echo.Context) error {
	w := h.workspace(c)
	if err := w.Authorize(c.Request().Context(), domain.CapEditDefinition); err != nil {
		return err
	}

	var req strategyRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	proposal := domain.DefaultStrategy()
	if err := req.patch().Apply(&proposal); err != nil {
		return err
	}

	def, err := w.ReplaceWith(c.Request().Context(), proposal)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, strategyResponse{Definition: def, Seq: w.Seq()})
}

// ResetStrategy restores the default definition.
//
// @Summary      Reset strategy
// @Tags         workspace
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  strategyResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/workspace/strategy/reset [post]
func (h *WorkspaceHandler) ResetStrategy(c echo.Context) error {
	w := h.workspace(c)
	def, err := w.Reset(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, strategyResponse{Definition: def, Seq: w.Seq()})
}

// Save persists a snapshot of the active definition.
//
// @Summary      Save strategy
// @Tags         workspace
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  domain.SavedStrategy
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/workspace/strategies [post]
func (h *WorkspaceHandler) Save(c echo.Context) error {
	saved, err := h.workspace(c).Save(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, saved)
}

// ListSaved returns the caller's saved definitions, newest first.
//
// @Summary      List saved strategies
// @Tags         workspace
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum items (default 50)"
// @Success      200    {object}  savedListResponse
// @Failure      400    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /v1/workspace/strategies [get]
func (h *WorkspaceHandler) ListSaved(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = n
	}

	items, err := h.workspace(c).SavedStrategies(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*domain.SavedStrategy{}
	}
	return c.JSON(http.StatusOK, savedListResponse{Items: items, Count: len(items)})
}

// Backtest runs a simulated backtest of the active definition.
//
// @Summary      Run backtest
// @Tags         workspace
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.BacktestResult
// @Failure      403  {object}  errorResponse
// @Router       /v1/workspace/backtest [post]
func (h *WorkspaceHandler) Backtest(c echo.Context) error {
	res, err := h.workspace(c).RunBacktest(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Render synthesizes one target from the active definition. Tiers without
// export rights receive the sample.
//
// @Summary      Render a target
// @Tags         output
// @Produce      json,plain
// @Security     BearerAuth
// @Param        target  path      string  true   "structured|script|compiled (or json|python|java)"
// @Param        format  query     string  false  "text for the bare rendering"
// @Success      200     {object}  synth.Artifact
// @Failure      404     {object}  errorResponse
// @Router       /v1/workspace/output/{target} [get]
func (h *WorkspaceHandler) Render(c echo.Context) error {
	target, err := synth.ParseTarget(c.Param("target"))
	if err != nil {
		return err
	}

	a, err := h.workspace(c).Render(c.Request().Context(), target)
	if err != nil {
		return err
	}
	return writeArtifact(c, a)
}

// Latest returns the most recent background rendering of a target.
//
// @Summary      Latest background rendering
// @Tags         output
// @Produce      json,plain
// @Security     BearerAuth
// @Param        target  path      string  true   "structured|script|compiled (or json|python|java)"
// @Param        format  query     string  false  "text for the bare rendering"
// @Success      200     {object}  synth.Artifact
// @Failure      404     {object}  errorResponse
// @Router       /v1/workspace/output/{target}/latest [get]
func (h *WorkspaceHandler) Latest(c echo.Context) error {
	target, err := synth.ParseTarget(c.Param("target"))
	if err != nil {
		return err
	}

	a, ok := h.latest.Get(ctxSession(c).ID, target)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no rendering yet")
	}
	return writeArtifact(c, a)
}

// Export copies a rendering to the clipboard.
//
// @Summary      Export code
// @Tags         output
// @Produce      json
// @Security     BearerAuth
// @Param        target  path      string  true  "structured|script|compiled (or json|python|java)"
// @Success      200     {object}  synth.Artifact
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /v1/workspace/export/{target} [post]
func (h *WorkspaceHandler) Export(c echo.Context) error {
	target, err := synth.ParseTarget(c.Param("target"))
	if err != nil {
		return err
	}

	a, err := h.workspace(c).Export(c.Request().Context(), target)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// Clipboard returns the text of the last export.
//
// @Summary      Read the clipboard
// @Tags         output
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  clipboardResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/workspace/clipboard [get]
func (h *WorkspaceHandler) Clipboard(c echo.Context) error {
	sid := ctxSession(c).ID
	if sid == "" {
		return echo.NewHTTPError(http.StatusNotFound, "clipboard is empty")
	}

	text, ok, err := h.clipboard.Paste(c.Request().Context(), sid)
	if err != nil {
		return err
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "clipboard is empty")
	}
	return c.JSON(http.StatusOK, clipboardResponse{Text: text})
}

// Messages lists the workspace's status messages, oldest first.
//
// @Summary      Status messages
// @Tags         workspace
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messagesResponse
// @Router       /v1/workspace/messages [get]
func (h *WorkspaceHandler) Messages(c echo.Context) error {
	msgs := h.workspace(c).Messages()
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return c.JSON(http.StatusOK, messagesResponse{Messages: msgs})
}

// ClearMessages empties the status log.
//
// @Summary      Clear status messages
// @Tags         workspace
// @Security     BearerAuth
// @Success      204
// @Failure      403  {object}  errorResponse
// @Router       /v1/workspace/messages [delete]
func (h *WorkspaceHandler) ClearMessages(c echo.Context) error {
	if err := h.workspace(c).ClearMessages(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func writeArtifact(c echo.Context, a synth.Artifact) error {
	if c.QueryParam("format") == "text" {
		return c.String(http.StatusOK, a.Text)
	}
	return c.JSON(http.StatusOK, a)
}
