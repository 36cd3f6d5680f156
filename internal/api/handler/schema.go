package handler

import (
	"github.com/aitrader/strategy-studio/internal/core/domain"
	"github.com/aitrader/strategy-studio/internal/synth"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error      string `json:"error"`
	Capability string `json:"capability,omitempty"`
}

// --- Session ---

type signInRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=80"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type sessionResponse struct {
	Token        string              `json:"token,omitempty"`
	Session      *domain.Session     `json:"session"`
	Capabilities []domain.Capability `json:"capabilities"`
}

func newSessionResponse(token string, sess *domain.Session) sessionResponse {
	return sessionResponse{
		Token:        token,
		Session:      sess,
		Capabilities: domain.CapabilitiesOf(sess.Tier),
	}
}

// --- Strategy ---

// strategyRequest carries a partial (PATCH) or whole (PUT) definition. Absent
// fields are left alone on PATCH and take their defaults on PUT. Enumerated
// values accept the canonical label or a form alias.
type strategyRequest struct {
	Name            *string   `json:"name,omitempty"            validate:"omitempty,max=120"`
	Type            *string   `json:"type,omitempty"`
	AssetClass      *string   `json:"assetClass,omitempty"`
	Timeframe       *string   `json:"timeframe,omitempty"`
	Indicators      *[]string `json:"indicators,omitempty"      validate:"omitempty,max=6"`
	EntryConditions *[]string `json:"entryConditions,omitempty" validate:"omitempty,max=20"`
	ProfitTargetPct *float64  `json:"profitTargetPct,omitempty"`
	StopLossPct     *float64  `json:"stopLossPct,omitempty"`
	UseTrailingStop *bool     `json:"useTrailingStop,omitempty"`
	MaxRiskPct      *float64  `json:"maxRiskPct,omitempty"`
	MaxPositions    *int      `json:"maxPositions,omitempty"`
}

// patch converts the request into a domain edit.
func (r strategyRequest) patch() domain.StrategyPatch {
	p := domain.StrategyPatch{
		Name:            r.Name,
		Type:            (*domain.StrategyType)(r.Type),
		AssetClass:      (*domain.AssetClass)(r.AssetClass),
		Timeframe:       (*domain.Timeframe)(r.Timeframe),
		ProfitTargetPct: r.ProfitTargetPct,
		StopLossPct:     r.StopLossPct,
		UseTrailingStop: r.UseTrailingStop,
		MaxRiskPct:      r.MaxRiskPct,
		MaxPositions:    r.MaxPositions,
	}
	if r.Indicators != nil {
		p.Indicators = domain.IndicatorList(*r.Indicators)
		if p.Indicators == nil {
			p.Indicators = []domain.Indicator{}
		}
	}
	if r.EntryConditions != nil {
		p.EntryConditions = *r.EntryConditions
		if p.EntryConditions == nil {
			p.EntryConditions = []string{}
		}
	}
	return p
}

type strategyResponse struct {
	Definition domain.StrategyDefinition `json:"definition"`
	Seq        uint64                    `json:"seq"`
}

type savedListResponse struct {
	Items []*domain.SavedStrategy `json:"items"`
	Count int                     `json:"count"`
}

// --- Output ---

type clipboardResponse struct {
	Text string `json:"text"`
}

type messagesResponse struct {
	Messages []domain.Message `json:"messages"`
}

// --- Catalog ---

type capabilitiesResponse struct {
	Tier         domain.AccessTier                         `json:"tier"`
	Capabilities []domain.Capability                       `json:"capabilities"`
	Matrix       map[domain.AccessTier][]domain.Capability `json:"matrix"`
}

type optionsResponse struct {
	StrategyTypes []domain.StrategyType `json:"strategyTypes"`
	AssetClasses  []domain.AssetClass   `json:"assetClasses"`
	Timeframes    []domain.Timeframe    `json:"timeframes"`
	Indicators    []domain.Indicator    `json:"indicators"`
	Targets       []synth.Target        `json:"targets"`
}
