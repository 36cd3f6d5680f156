package domain

import (
	"math"
	"strings"
)

// StrategyType is the trading style of a strategy.
type StrategyType string

const (
	TypeMomentum       StrategyType = "Momentum"
	TypeMeanReversion  StrategyType = "Mean Reversion"
	TypeTrendFollowing StrategyType = "Trend Following"
	TypeBreakout       StrategyType = "Breakout"
)

// StrategyTypes lists the accepted strategy types.
var StrategyTypes = []StrategyType{TypeMomentum, TypeMeanReversion, TypeTrendFollowing, TypeBreakout}

// AssetClass is the market a strategy trades.
type AssetClass string

const (
	AssetStocks      AssetClass = "Stocks"
	AssetCrypto      AssetClass = "Crypto"
	AssetForex       AssetClass = "Forex"
	AssetCommodities AssetClass = "Commodities"
)

// AssetClasses lists the accepted asset classes.
var AssetClasses = []AssetClass{AssetStocks, AssetCrypto, AssetForex, AssetCommodities}

// Timeframe is the bar interval a strategy evaluates on.
type Timeframe string

const (
	Timeframe1Minute   Timeframe = "1 Minute"
	Timeframe5Minutes  Timeframe = "5 Minutes"
	Timeframe15Minutes Timeframe = "15 Minutes"
	Timeframe1Hour     Timeframe = "1 Hour"
	Timeframe4Hours    Timeframe = "4 Hours"
	Timeframe1Day      Timeframe = "1 Day"
)

// Timeframes lists the accepted timeframes.
var Timeframes = []Timeframe{
	Timeframe1Minute,
	Timeframe5Minutes,
	Timeframe15Minutes,
	Timeframe1Hour,
	Timeframe4Hours,
	Timeframe1Day,
}

// Indicator is a technical indicator a strategy may reference.
type Indicator string

const (
	IndicatorRSI            Indicator = "RSI"
	IndicatorMACD           Indicator = "MACD"
	IndicatorSMA            Indicator = "SMA"
	IndicatorEMA            Indicator = "EMA"
	IndicatorBollingerBands Indicator = "BollingerBands"
	IndicatorADX            Indicator = "ADX"
)

// Indicators lists the accepted indicators in canonical order.
var Indicators = []Indicator{
	IndicatorRSI,
	IndicatorMACD,
	IndicatorSMA,
	IndicatorEMA,
	IndicatorBollingerBands,
	IndicatorADX,
}

// Form labels accepted as aliases when parsing.
var indicatorAliases = map[string]Indicator{
	"simple ma":       IndicatorSMA,
	"exponential ma":  IndicatorEMA,
	"bollinger bands": IndicatorBollingerBands,
	"bollinger":       IndicatorBollingerBands,
	"bb":              IndicatorBollingerBands,
}

var assetAliases = map[string]AssetClass{
	"cryptocurrency": AssetCrypto,
}

// Numeric bounds enforced by the setters.
const (
	MinPercent         = 0.0
	MaxProfitTargetPct = 100.0
	MaxStopLossPct     = 50.0
	MaxRiskPct         = 10.0
	MinMaxPositions    = 1
	MaxMaxPositions    = 20
)

const (
	FieldName            = "name"
	FieldType            = "type"
	FieldAssetClass      = "assetClass"
	FieldTimeframe       = "timeframe"
	FieldIndicators      = "indicators"
	FieldEntryConditions = "entryConditions"
	FieldProfitTarget    = "profitTargetPct"
	FieldStopLoss        = "stopLossPct"
	FieldMaxRisk         = "maxRiskPct"
	FieldMaxPositions    = "maxPositions"
)

// StrategyDefinition is the canonical description of one trading strategy.
// Mutate it through the setters so every value is validated at the boundary.
type StrategyDefinition struct {
	Name            string       `json:"name" bson:"name"`
	Type            StrategyType `json:"type" bson:"type"`
	AssetClass      AssetClass   `json:"assetClass" bson:"asset_class"`
	Timeframe       Timeframe    `json:"timeframe" bson:"timeframe"`
	Indicators      []Indicator  `json:"indicators" bson:"indicators"`
	EntryConditions []string     `json:"entryConditions" bson:"entry_conditions"`
	ProfitTargetPct float64      `json:"profitTargetPct" bson:"profit_target_pct"`
	StopLossPct     float64      `json:"stopLossPct" bson:"stop_loss_pct"`
	UseTrailingStop bool         `json:"useTrailingStop" bson:"use_trailing_stop"`
	MaxRiskPct      float64      `json:"maxRiskPct" bson:"max_risk_pct"`
	MaxPositions    int          `json:"maxPositions" bson:"max_positions"`
}

// DefaultStrategy returns the definition a fresh editable workspace starts with.
func DefaultStrategy() StrategyDefinition {
	return StrategyDefinition{
		Name:            "",
		Type:            TypeMomentum,
		AssetClass:      AssetStocks,
		Timeframe:       Timeframe1Day,
		Indicators:      []Indicator{},
		EntryConditions: []string{},
		ProfitTargetPct: 5.0,
		StopLossPct:     2.0,
		UseTrailingStop: false,
		MaxRiskPct:      2.0,
		MaxPositions:    5,
	}
}

// ExemplarStrategy returns the fixed, non-editable sample shown to tiers that
// cannot edit or export.
func ExemplarStrategy() StrategyDefinition {
	return StrategyDefinition{
		Name:            "Sample Momentum Strategy",
		Type:            TypeMomentum,
		AssetClass:      AssetStocks,
		Timeframe:       Timeframe1Day,
		Indicators:      []Indicator{IndicatorRSI, IndicatorSMA, IndicatorBollingerBands},
		EntryConditions: []string{"RSI > 70", "Price > SMA20", "Volume > 1.5x average"},
		ProfitTargetPct: 5.0,
		StopLossPct:     2.0,
		UseTrailingStop: false,
		MaxRiskPct:      2.0,
		MaxPositions:    5,
	}
}

// Clone returns a deep copy.
func (d StrategyDefinition) Clone() StrategyDefinition {
	out := d
	out.Indicators = append([]Indicator{}, d.Indicators...)
	out.EntryConditions = append([]string{}, d.EntryConditions...)
	return out
}

// Validate checks every field and returns the first violation.
func (d StrategyDefinition) Validate() error {
	if _, err := ParseStrategyType(string(d.Type)); err != nil {
		return err
	}
	if _, err := ParseAssetClass(string(d.AssetClass)); err != nil {
		return err
	}
	if _, err := ParseTimeframe(string(d.Timeframe)); err != nil {
		return err
	}
	for _, ind := range d.Indicators {
		if _, err := ParseIndicator(string(ind)); err != nil {
			return err
		}
	}
	if err := checkPercent(FieldProfitTarget, d.ProfitTargetPct, MaxProfitTargetPct); err != nil {
		return err
	}
	if err := checkPercent(FieldStopLoss, d.StopLossPct, MaxStopLossPct); err != nil {
		return err
	}
	if err := checkPercent(FieldMaxRisk, d.MaxRiskPct, MaxRiskPct); err != nil {
		return err
	}
	return checkPositions(d.MaxPositions)
}

func (d *StrategyDefinition) SetName(name string) error {
	d.Name = name
	return nil
}

func (d *StrategyDefinition) SetType(t StrategyType) error {
	parsed, err := ParseStrategyType(string(t))
	if err != nil {
		return err
	}
	d.Type = parsed
	return nil
}

func (d *StrategyDefinition) SetAssetClass(a AssetClass) error {
	parsed, err := ParseAssetClass(string(a))
	if err != nil {
		return err
	}
	d.AssetClass = parsed
	return nil
}

func (d *StrategyDefinition) SetTimeframe(tf Timeframe) error {
	parsed, err := ParseTimeframe(string(tf))
	if err != nil {
		return err
	}
	d.Timeframe = parsed
	return nil
}

// SetIndicators replaces the indicator set. Duplicates collapse and the
// result is kept in canonical order.
func (d *StrategyDefinition) SetIndicators(inds []Indicator) error {
	seen := make(map[Indicator]struct{}, len(inds))
	for _, ind := range inds {
		parsed, err := ParseIndicator(string(ind))
		if err != nil {
			return err
		}
		seen[parsed] = struct{}{}
	}
	out := make([]Indicator, 0, len(seen))
	for _, ind := range Indicators {
		if _, ok := seen[ind]; ok {
			out = append(out, ind)
		}
	}
	d.Indicators = out
	return nil
}

// SetEntryConditions replaces the ordered free-text clauses. Blank lines are dropped.
func (d *StrategyDefinition) SetEntryConditions(clauses []string) error {
	out := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	d.EntryConditions = out
	return nil
}

func (d *StrategyDefinition) SetProfitTarget(pct float64) error {
	if err := checkPercent(FieldProfitTarget, pct, MaxProfitTargetPct); err != nil {
		return err
	}
	d.ProfitTargetPct = pct
	return nil
}

func (d *StrategyDefinition) SetStopLoss(pct float64) error {
	if err := checkPercent(FieldStopLoss, pct, MaxStopLossPct); err != nil {
		return err
	}
	d.StopLossPct = pct
	return nil
}

func (d *StrategyDefinition) SetTrailingStop(on bool) error {
	d.UseTrailingStop = on
	return nil
}

func (d *StrategyDefinition) SetMaxRisk(pct float64) error {
	if err := checkPercent(FieldMaxRisk, pct, MaxRiskPct); err != nil {
		return err
	}
	d.MaxRiskPct = pct
	return nil
}

func (d *StrategyDefinition) SetMaxPositions(n int) error {
	if err := checkPositions(n); err != nil {
		return err
	}
	d.MaxPositions = n
	return nil
}

func checkPercent(field string, v, upper float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < MinPercent || v > upper {
		return &OutOfRangeError{Field: field, Value: v}
	}
	return nil
}

func checkPositions(n int) error {
	if n < MinMaxPositions || n > MaxMaxPositions {
		return &OutOfRangeError{Field: FieldMaxPositions, Value: float64(n)}
	}
	return nil
}

// normalizeKey folds case, underscores and hyphens so "mean_reversion",
// "Mean Reversion" and "MEAN-REVERSION" compare equal.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func ParseStrategyType(s string) (StrategyType, error) {
	key := normalizeKey(s)
	for _, t := range StrategyTypes {
		if normalizeKey(string(t)) == key {
			return t, nil
		}
	}
	return "", &InvalidValueError{Field: FieldType, Value: s}
}

func ParseAssetClass(s string) (AssetClass, error) {
	key := normalizeKey(s)
	if a, ok := assetAliases[key]; ok {
		return a, nil
	}
	for _, a := range AssetClasses {
		if normalizeKey(string(a)) == key {
			return a, nil
		}
	}
	return "", &InvalidValueError{Field: FieldAssetClass, Value: s}
}

func ParseTimeframe(s string) (Timeframe, error) {
	key := normalizeKey(s)
	for _, tf := range Timeframes {
		if normalizeKey(string(tf)) == key {
			return tf, nil
		}
	}
	return "", &InvalidValueError{Field: FieldTimeframe, Value: s}
}

func ParseIndicator(s string) (Indicator, error) {
	key := normalizeKey(s)
	if ind, ok := indicatorAliases[key]; ok {
		return ind, nil
	}
	for _, ind := range Indicators {
		if normalizeKey(string(ind)) == key {
			return ind, nil
		}
	}
	return "", &InvalidValueError{Field: FieldIndicators, Value: s}
}
