package synth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/aitrader/strategy-studio/internal/core/domain"
)

// Field order of these structs is the emitted key order.
type structuredDocument struct {
	Strategy structuredStrategy `json:"strategy"`
}

type structuredStrategy struct {
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	AssetClass     string         `json:"assetClass"`
	Timeframe      string         `json:"timeframe"`
	EntryRules     entryRules     `json:"entryRules"`
	ExitRules      exitRules      `json:"exitRules"`
	RiskManagement riskManagement `json:"riskManagement"`
}

type entryRules struct {
	Conditions []string `json:"conditions"`
	Indicators []string `json:"indicators"`
}

type exitRules struct {
	ProfitTarget    percent `json:"profitTarget"`
	StopLoss        percent `json:"stopLoss"`
	UseTrailingStop bool    `json:"useTrailingStop"`
}

type riskManagement struct {
	MaxRiskPerTrade percent `json:"maxRiskPerTrade"`
	MaxPositions    int     `json:"maxPositions"`
}

// percent marshals through FormatPercent so the document agrees with the stubs.
type percent float64

func (p percent) MarshalJSON() ([]byte, error) {
	lit := FormatPercent(float64(p))
	if f := float64(p) * 100; math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("percent %s is not a finite number", lit)
	}
	return []byte(lit), nil
}

func renderStructured(def domain.StrategyDefinition) (string, error) {
	indicators := make([]string, 0, len(def.Indicators))
	for _, ind := range def.Indicators {
		indicators = append(indicators, string(ind))
	}
	conditions := append([]string{}, def.EntryConditions...)

	doc := structuredDocument{Strategy: structuredStrategy{
		Name:       def.Name,
		Type:       enumLiteral(def.Type),
		AssetClass: enumLiteral(def.AssetClass),
		Timeframe:  string(def.Timeframe),
		EntryRules: entryRules{
			Conditions: conditions,
			Indicators: indicators,
		},
		ExitRules: exitRules{
			ProfitTarget:    percent(def.ProfitTargetPct),
			StopLoss:        percent(def.StopLossPct),
			UseTrailingStop: def.UseTrailingStop,
		},
		RiskManagement: riskManagement{
			MaxRiskPerTrade: percent(def.MaxRiskPct),
			MaxPositions:    def.MaxPositions,
		},
	}}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("structured: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
