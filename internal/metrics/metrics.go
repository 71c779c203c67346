// Package metrics derives per-serving cost, food-cost percentage and
// profitability figures from an aggregated cost.
package metrics

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Sentinel errors for undefined metrics.
var (
	ErrUndefinedCostPerServing = errors.New("cost per serving is undefined")
	ErrNoMenuPrice             = errors.New("no menu price")
	ErrInvalidThresholds       = errors.New("invalid food cost thresholds")
)

// Kind names why a metric is undefined.
type Kind string

const (
	KindUndefinedCostPerServing Kind = "undefined_cost_per_serving"
	KindNoMenuPrice             Kind = "no_menu_price"
)

// MetricError reports a metric that cannot be computed from its inputs.
type MetricError struct {
	Kind Kind
	Err  error
}

func (e *MetricError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

// IsKind reports whether err carries a MetricError of the given kind.
func IsKind(err error, kind Kind) bool {
	var me *MetricError
	if errors.As(err, &me) {
		return me.Kind == kind
	}
	return false
}

func (e *MetricError) Unwrap() error { return e.Err }

// Band is the informational classification of a food-cost percentage.
type Band string

const (
	BandExcellent      Band = "excellent"
	BandAcceptable     Band = "acceptable"
	BandNeedsAttention Band = "needs_attention"
)

// Thresholds separates the bands: below ExcellentBelow is excellent, up to
// and including AcceptableUpTo is acceptable, anything above needs attention.
type Thresholds struct {
	ExcellentBelow decimal.Decimal `json:"excellent_below"`
	AcceptableUpTo decimal.Decimal `json:"acceptable_up_to"`
}

// DefaultThresholds returns the 30/40 split.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ExcellentBelow: decimal.NewFromInt(30),
		AcceptableUpTo: decimal.NewFromInt(40),
	}
}

// Validate checks that both bounds are percentages and ordered.
func (t Thresholds) Validate() error {
	if !t.ExcellentBelow.IsPositive() || t.AcceptableUpTo.GreaterThan(hundred) {
		return fmt.Errorf("%w: bounds must be within (0, 100]", ErrInvalidThresholds)
	}
	if !t.ExcellentBelow.LessThan(t.AcceptableUpTo) {
		return fmt.Errorf("%w: excellent_below (%s) must be below acceptable_up_to (%s)",
			ErrInvalidThresholds, t.ExcellentBelow, t.AcceptableUpTo)
	}
	return nil
}

// Classify places pct in a band.
func Classify(pct decimal.Decimal, t Thresholds) Band {
	switch {
	case pct.LessThan(t.ExcellentBelow):
		return BandExcellent
	case pct.LessThanOrEqual(t.AcceptableUpTo):
		return BandAcceptable
	default:
		return BandNeedsAttention
	}
}

// CostPerServing divides total by yield. ok is false for a non-positive yield.
func CostPerServing(total, yield decimal.Decimal) (decimal.Decimal, bool) {
	if !yield.IsPositive() {
		return decimal.Zero, false
	}
	return total.Div(yield), true
}

// FoodCostPercentage is cost per serving as a percentage of the menu price.
// ok is false when the price is absent or zero.
func FoodCostPercentage(costPerServing decimal.Decimal, menuPrice *decimal.Decimal) (decimal.Decimal, bool) {
	if menuPrice == nil || menuPrice.IsZero() {
		return decimal.Zero, false
	}
	return costPerServing.Mul(hundred).Div(*menuPrice), true
}

// GrossProfit is what remains of the menu price after food cost.
func GrossProfit(menuPrice, costPerServing decimal.Decimal) decimal.Decimal {
	return menuPrice.Sub(costPerServing)
}

// ProfitMarginPercentage is gross profit as a percentage of the menu price.
func ProfitMarginPercentage(grossProfit, menuPrice decimal.Decimal) (decimal.Decimal, bool) {
	if menuPrice.IsZero() {
		return decimal.Zero, false
	}
	return grossProfit.Mul(hundred).Div(menuPrice), true
}

// SuggestedPrice is the menu price at which costPerServing hits targetPct.
func SuggestedPrice(costPerServing, targetPct decimal.Decimal) (decimal.Decimal, bool) {
	if !targetPct.IsPositive() {
		return decimal.Zero, false
	}
	return costPerServing.Mul(hundred).Div(targetPct), true
}

// Analysis bundles the derived figures for one menu item.
type Analysis struct {
	TotalCost       decimal.Decimal
	CostPerServing  decimal.Decimal
	MenuPrice       *decimal.Decimal
	FoodCostPercent *decimal.Decimal
	GrossProfit     *decimal.Decimal
	MarginPercent   *decimal.Decimal
	Band            Band
}

// Analyze derives every metric it can. A missing price still yields cost per
// serving; the returned error then wraps ErrNoMenuPrice.
func Analyze(total, servings decimal.Decimal, menuPrice *decimal.Decimal, t Thresholds) (Analysis, error) {
	a := Analysis{TotalCost: total, MenuPrice: menuPrice}

	cps, ok := CostPerServing(total, servings)
	if !ok {
		return a, &MetricError{Kind: KindUndefinedCostPerServing, Err: ErrUndefinedCostPerServing}
	}
	a.CostPerServing = cps

	pct, ok := FoodCostPercentage(cps, menuPrice)
	if !ok {
		return a, &MetricError{Kind: KindNoMenuPrice, Err: ErrNoMenuPrice}
	}
	gp := GrossProfit(*menuPrice, cps)
	margin, _ := ProfitMarginPercentage(gp, *menuPrice)

	a.FoodCostPercent = &pct
	a.GrossProfit = &gp
	a.MarginPercent = &margin
	a.Band = Classify(pct, t)
	return a, nil
}
