package domain

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestDefaultStrategy(t *testing.T) {
	d := DefaultStrategy()
	if d.Type != TypeMomentum || d.AssetClass != AssetStocks || d.Timeframe != Timeframe1Day {
		t.Fatalf("unexpected enum defaults: %+v", d)
	}
	if d.ProfitTargetPct != 5.0 || d.StopLossPct != 2.0 || d.MaxRiskPct != 2.0 || d.MaxPositions != 5 {
		t.Fatalf("unexpected numeric defaults: %+v", d)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if err := ExemplarStrategy().Validate(); err != nil {
		t.Fatalf("exemplar must validate: %v", err)
	}
}

func TestSetMaxPositions_Bounds(t *testing.T) {
	d := DefaultStrategy()
	for _, n := range []int{0, 21, -3} {
		err := d.SetMaxPositions(n)
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("SetMaxPositions(%d): expected ErrOutOfRange, got %v", n, err)
		}
		var oor *OutOfRangeError
		if errors.As(err, &oor) && oor.Field != FieldMaxPositions {
			t.Errorf("unexpected field %q", oor.Field)
		}
	}
	if d.MaxPositions != 5 {
		t.Fatalf("rejected value must not be applied, got %d", d.MaxPositions)
	}
	for _, n := range []int{1, 20} {
		if err := d.SetMaxPositions(n); err != nil {
			t.Errorf("SetMaxPositions(%d): %v", n, err)
		}
		if d.MaxPositions != n {
			t.Errorf("expected %d, got %d", n, d.MaxPositions)
		}
	}
}

func TestSetMaxRisk_Bounds(t *testing.T) {
	d := DefaultStrategy()
	for _, v := range []float64{-0.1, 10.01, math.NaN(), math.Inf(1)} {
		if err := d.SetMaxRisk(v); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("SetMaxRisk(%v): expected ErrOutOfRange, got %v", v, err)
		}
	}
	for _, v := range []float64{0, 10} {
		if err := d.SetMaxRisk(v); err != nil {
			t.Errorf("SetMaxRisk(%v): %v", v, err)
		}
	}
}

func TestSetProfitTargetAndStopLoss_RejectNegative(t *testing.T) {
	d := DefaultStrategy()
	if err := d.SetProfitTarget(-1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if err := d.SetStopLoss(-0.5); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if err := d.SetProfitTarget(7.5); err != nil || d.ProfitTargetPct != 7.5 {
		t.Fatalf("SetProfitTarget(7.5) = %v, value %v", err, d.ProfitTargetPct)
	}
}

func TestSetProfitTargetAndStopLoss_UpperBounds(t *testing.T) {
	d := DefaultStrategy()
	for _, v := range []float64{100.01, 1e307, math.Inf(1), math.NaN()} {
		if err := d.SetProfitTarget(v); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("SetProfitTarget(%v): expected ErrOutOfRange, got %v", v, err)
		}
	}
	for _, v := range []float64{50.01, 1e307} {
		if err := d.SetStopLoss(v); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("SetStopLoss(%v): expected ErrOutOfRange, got %v", v, err)
		}
	}
	if d.ProfitTargetPct != 5.0 || d.StopLossPct != 2.0 {
		t.Fatalf("rejected values must leave the record unchanged: %+v", d)
	}
	if err := d.SetProfitTarget(MaxProfitTargetPct); err != nil {
		t.Fatalf("SetProfitTarget(%v): %v", MaxProfitTargetPct, err)
	}
	if err := d.SetStopLoss(MaxStopLossPct); err != nil {
		t.Fatalf("SetStopLoss(%v): %v", MaxStopLossPct, err)
	}

	bad := DefaultStrategy()
	bad.StopLossPct = 1e307
	if err := bad.Validate(); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Validate: expected ErrOutOfRange, got %v", err)
	}
}

func TestSetIndicators_CanonicalOrderAndDedup(t *testing.T) {
	d := DefaultStrategy()
	err := d.SetIndicators([]Indicator{"ADX", "Simple MA", "RSI", "rsi", "Bollinger Bands"})
	if err != nil {
		t.Fatalf("SetIndicators: %v", err)
	}
	want := []Indicator{IndicatorRSI, IndicatorSMA, IndicatorBollingerBands, IndicatorADX}
	if !reflect.DeepEqual(d.Indicators, want) {
		t.Fatalf("got %v, want %v", d.Indicators, want)
	}
	if err := d.SetIndicators([]Indicator{"Volume"}); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func TestSetEnums(t *testing.T) {
	d := DefaultStrategy()
	if err := d.SetType("mean_reversion"); err != nil || d.Type != TypeMeanReversion {
		t.Fatalf("SetType: %v %q", err, d.Type)
	}
	if err := d.SetAssetClass("Cryptocurrency"); err != nil || d.AssetClass != AssetCrypto {
		t.Fatalf("SetAssetClass: %v %q", err, d.AssetClass)
	}
	if err := d.SetTimeframe("4 hours"); err != nil || d.Timeframe != Timeframe4Hours {
		t.Fatalf("SetTimeframe: %v %q", err, d.Timeframe)
	}
	if err := d.SetTimeframe("2 Days"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if d.Timeframe != Timeframe4Hours {
		t.Fatalf("rejected timeframe must not be applied")
	}
}

func TestSetEntryConditions_DropsBlankLines(t *testing.T) {
	d := DefaultStrategy()
	_ = d.SetEntryConditions([]string{"RSI > 70", "  ", "Price > SMA20 "})
	want := []string{"RSI > 70", "Price > SMA20"}
	if !reflect.DeepEqual(d.EntryConditions, want) {
		t.Fatalf("got %q, want %q", d.EntryConditions, want)
	}
}

func TestClone_IsDeep(t *testing.T) {
	orig := ExemplarStrategy()
	c := orig.Clone()
	c.EntryConditions[0] = "changed"
	c.Indicators[0] = IndicatorADX
	if orig.EntryConditions[0] != "RSI > 70" || orig.Indicators[0] != IndicatorRSI {
		t.Fatalf("clone shares backing arrays with original")
	}
}

func TestValidate_RejectsBadRecord(t *testing.T) {
	d := DefaultStrategy()
	d.MaxPositions = 0
	if err := d.Validate(); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	d = DefaultStrategy()
	d.Type = "Scalping"
	if err := d.Validate(); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}
