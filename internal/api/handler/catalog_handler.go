package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aitrader/strategy-studio/internal/core/domain"
	"github.com/aitrader/strategy-studio/internal/synth"
)

// CatalogHandler serves the static tables a client needs to build its forms
// and to grey out gated controls.
type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// Capabilities returns the caller's capabilities and the full tier matrix.
//
// @Summary      Capability matrix
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  capabilitiesResponse
// @Router       /v1/capabilities [get]
func (h *CatalogHandler) Capabilities(c echo.Context) error {
	tier := ctxSession(c).Tier
	matrix := make(map[domain.AccessTier][]domain.Capability, len(domain.Tiers))
	for _, t := range domain.Tiers {
		matrix[t] = domain.CapabilitiesOf(t)
	}
	return c.JSON(http.StatusOK, capabilitiesResponse{
		Tier:         tier,
		Capabilities: domain.CapabilitiesOf(tier),
		Matrix:       matrix,
	})
}

// Options returns the accepted values of every enumerated field.
//
// @Summary      Form options
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  optionsResponse
// @Router       /v1/options [get]
func (h *CatalogHandler) Options(c echo.Context) error {
	return c.JSON(http.StatusOK, optionsResponse{
		StrategyTypes: domain.StrategyTypes,
		AssetClasses:  domain.AssetClasses,
		Timeframes:    domain.Timeframes,
		Indicators:    domain.Indicators,
		Targets:       synth.Targets,
	})
}
