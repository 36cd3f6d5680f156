// Package strategyfile reads a strategy definition from a YAML (or JSON)
// document. Every field goes through the definition's setters, so a file
// is accepted only if the same edits would be accepted interactively.
package strategyfile

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aitrader/strategy-studio/internal/core/domain"
)

// document mirrors the form. Absent fields keep their defaults.
type document struct {
	Name            *string  `yaml:"name"`
	Type            *string  `yaml:"type"`
	AssetClass      *string  `yaml:"asset_class"`
	Timeframe       *string  `yaml:"timeframe"`
	Indicators      []string `yaml:"indicators"`
	EntryConditions []string `yaml:"entry_conditions"`
	Exit            struct {
		ProfitTargetPct *float64 `yaml:"profit_target_pct"`
		StopLossPct     *float64 `yaml:"stop_loss_pct"`
		TrailingStop    *bool    `yaml:"trailing_stop"`
	} `yaml:"exit"`
	Risk struct {
		MaxRiskPct   *float64 `yaml:"max_risk_pct"`
		MaxPositions *int     `yaml:"max_positions"`
	} `yaml:"risk"`
}

// Load opens path and decodes it.
func Load(path string) (domain.StrategyDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.StrategyDefinition{}, fmt.Errorf("strategyfile: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads one document from r and applies it on top of the default definition.
func Decode(r io.Reader) (domain.StrategyDefinition, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return domain.StrategyDefinition{}, fmt.Errorf("strategyfile: decode: %w", err)
	}

	def := domain.DefaultStrategy()
	if err := doc.patch().Apply(&def); err != nil {
		return domain.StrategyDefinition{}, fmt.Errorf("strategyfile: %w", err)
	}
	return def, nil
}

func (doc document) patch() domain.StrategyPatch {
	return domain.StrategyPatch{
		Name:            doc.Name,
		Type:            (*domain.StrategyType)(doc.Type),
		AssetClass:      (*domain.AssetClass)(doc.AssetClass),
		Timeframe:       (*domain.Timeframe)(doc.Timeframe),
		Indicators:      domain.IndicatorList(doc.Indicators),
		EntryConditions: doc.EntryConditions,
		ProfitTargetPct: doc.Exit.ProfitTargetPct,
		StopLossPct:     doc.Exit.StopLossPct,
		UseTrailingStop: doc.Exit.TrailingStop,
		MaxRiskPct:      doc.Risk.MaxRiskPct,
		MaxPositions:    doc.Risk.MaxPositions,
	}
}
