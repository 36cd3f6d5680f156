package domain

// StrategyPatch names the fields an edit changes. Nil fields are left alone;
// a non-nil empty slice clears the list.
type StrategyPatch struct {
	Name            *string
	Type            *StrategyType
	AssetClass      *AssetClass
	Timeframe       *Timeframe
	Indicators      []Indicator
	EntryConditions []string
	ProfitTargetPct *float64
	StopLossPct     *float64
	UseTrailingStop *bool
	MaxRiskPct      *float64
	MaxPositions    *int
}

// Apply runs the present fields through the setters in form order and stops
// at the first rejected value. d may be partially edited on error, so callers
// apply patches to a copy.
func (p StrategyPatch) Apply(d *StrategyDefinition) error {
	if p.Name != nil {
		if err := d.SetName(*p.Name); err != nil {
			return err
		}
	}
	if p.Type != nil {
		if err := d.SetType(*p.Type); err != nil {
			return err
		}
	}
	if p.AssetClass != nil {
		if err := d.SetAssetClass(*p.AssetClass); err != nil {
			return err
		}
	}
	if p.Timeframe != nil {
		if err := d.SetTimeframe(*p.Timeframe); err != nil {
			return err
		}
	}
	if p.Indicators != nil {
		if err := d.SetIndicators(p.Indicators); err != nil {
			return err
		}
	}
	if p.EntryConditions != nil {
		if err := d.SetEntryConditions(p.EntryConditions); err != nil {
			return err
		}
	}
	if p.ProfitTargetPct != nil {
		if err := d.SetProfitTarget(*p.ProfitTargetPct); err != nil {
			return err
		}
	}
	if p.StopLossPct != nil {
		if err := d.SetStopLoss(*p.StopLossPct); err != nil {
			return err
		}
	}
	if p.UseTrailingStop != nil {
		if err := d.SetTrailingStop(*p.UseTrailingStop); err != nil {
			return err
		}
	}
	if p.MaxRiskPct != nil {
		if err := d.SetMaxRisk(*p.MaxRiskPct); err != nil {
			return err
		}
	}
	if p.MaxPositions != nil {
		if err := d.SetMaxPositions(*p.MaxPositions); err != nil {
			return err
		}
	}
	return nil
}

// IndicatorList converts raw labels for a patch. A nil input stays nil so the
// field counts as absent.
func IndicatorList(labels []string) []Indicator {
	if labels == nil {
		return nil
	}
	out := make([]Indicator, len(labels))
	for i, s := range labels {
		out[i] = Indicator(s)
	}
	return out
}
