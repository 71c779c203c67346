package metrics

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFoodCostPercentage(t *testing.T) {
	price := dec("18")
	pct, ok := FoodCostPercentage(dec("3"), &price)
	if !ok {
		t.Fatalf("expected a percentage")
	}
	if got := pct.Round(2); !got.Equal(dec("16.67")) {
		t.Fatalf("food cost = %s, want 16.67", got)
	}

	if _, ok := FoodCostPercentage(dec("3"), nil); ok {
		t.Fatalf("expected no percentage without a menu price")
	}
	zero := decimal.Zero
	if _, ok := FoodCostPercentage(dec("3"), &zero); ok {
		t.Fatalf("expected no percentage for a zero menu price")
	}
}

func TestCostPerServing(t *testing.T) {
	got, ok := CostPerServing(dec("12"), dec("4"))
	if !ok || !got.Equal(dec("3")) {
		t.Fatalf("cost per serving = %s (%v), want 3", got, ok)
	}
	if _, ok := CostPerServing(dec("12"), decimal.Zero); ok {
		t.Fatalf("expected undefined cost per serving for zero yield")
	}
	if _, ok := CostPerServing(dec("12"), dec("-1")); ok {
		t.Fatalf("expected undefined cost per serving for negative yield")
	}
}

func TestGrossProfitAndMargin(t *testing.T) {
	gp := GrossProfit(dec("18"), dec("3"))
	if !gp.Equal(dec("15")) {
		t.Fatalf("gross profit = %s, want 15", gp)
	}
	margin, ok := ProfitMarginPercentage(gp, dec("18"))
	if !ok || !margin.Round(2).Equal(dec("83.33")) {
		t.Fatalf("margin = %s (%v), want 83.33", margin, ok)
	}
	if _, ok := ProfitMarginPercentage(gp, decimal.Zero); ok {
		t.Fatalf("expected undefined margin for zero price")
	}
}

func TestClassify(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		pct  string
		want Band
	}{
		{"16.67", BandExcellent},
		{"29.99", BandExcellent},
		{"30", BandAcceptable},
		{"40", BandAcceptable},
		{"40.01", BandNeedsAttention},
	}
	for _, tt := range tests {
		if got := Classify(dec(tt.pct), th); got != tt.want {
			t.Fatalf("classify %s = %s, want %s", tt.pct, got, tt.want)
		}
	}

	custom := Thresholds{ExcellentBelow: dec("25"), AcceptableUpTo: dec("32")}
	if got := Classify(dec("28"), custom); got != BandAcceptable {
		t.Fatalf("custom classify = %s, want acceptable", got)
	}
	if got := Classify(dec("33"), custom); got != BandNeedsAttention {
		t.Fatalf("custom classify = %s, want needs_attention", got)
	}
}

func TestThresholdsValidate(t *testing.T) {
	if err := DefaultThresholds().Validate(); err != nil {
		t.Fatalf("default thresholds: %v", err)
	}
	bad := []Thresholds{
		{ExcellentBelow: dec("40"), AcceptableUpTo: dec("30")},
		{ExcellentBelow: decimal.Zero, AcceptableUpTo: dec("30")},
		{ExcellentBelow: dec("30"), AcceptableUpTo: dec("130")},
	}
	for _, th := range bad {
		if err := th.Validate(); !errors.Is(err, ErrInvalidThresholds) {
			t.Fatalf("expected invalid thresholds for %+v, got %v", th, err)
		}
	}
}

func TestSuggestedPrice(t *testing.T) {
	got, ok := SuggestedPrice(dec("3"), dec("25"))
	if !ok || !got.Equal(dec("12")) {
		t.Fatalf("suggested price = %s (%v), want 12", got, ok)
	}
	if _, ok := SuggestedPrice(dec("3"), decimal.Zero); ok {
		t.Fatalf("expected no suggestion for zero target")
	}
}

func TestAnalyze(t *testing.T) {
	price := dec("18")
	a, err := Analyze(dec("6"), dec("2"), &price, DefaultThresholds())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !a.CostPerServing.Equal(dec("3")) {
		t.Fatalf("cost per serving = %s", a.CostPerServing)
	}
	if a.FoodCostPercent == nil || !a.FoodCostPercent.Round(2).Equal(dec("16.67")) {
		t.Fatalf("food cost = %v", a.FoodCostPercent)
	}
	if a.Band != BandExcellent {
		t.Fatalf("band = %s", a.Band)
	}

	a, err = Analyze(dec("6"), dec("2"), nil, DefaultThresholds())
	if !errors.Is(err, ErrNoMenuPrice) || !IsKind(err, KindNoMenuPrice) {
		t.Fatalf("expected no menu price, got %v", err)
	}
	if !a.CostPerServing.Equal(dec("3")) || a.FoodCostPercent != nil {
		t.Fatalf("expected partial analysis, got %+v", a)
	}

	_, err = Analyze(dec("6"), decimal.Zero, &price, DefaultThresholds())
	if !errors.Is(err, ErrUndefinedCostPerServing) || !IsKind(err, KindUndefinedCostPerServing) {
		t.Fatalf("expected undefined cost per serving, got %v", err)
	}
	var me *MetricError
	if !errors.As(err, &me) || me.Kind != "undefined_cost_per_serving" {
		t.Fatalf("unexpected metric error %+v", me)
	}
}
