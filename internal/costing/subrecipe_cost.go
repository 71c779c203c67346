package costing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/menucost/internal/units"
)

// CostOfSubRecipe returns the cost of using q unit of sub, pro-rated against
// sub's cached TotalCost and yield.
func CostOfSubRecipe(sub *Recipe, q decimal.Decimal, unit units.Unit) (decimal.Decimal, error) {
	if sub == nil {
		return decimal.Zero, &CostError{Kind: KindInvalidComponent, Index: -1, Err: errors.New("missing sub-recipe")}
	}
	return subRecipeCost(sub, sub.TotalCost, q, unit)
}

func subRecipeCost(sub *Recipe, total, q decimal.Decimal, unit units.Unit) (decimal.Decimal, error) {
	if !sub.YieldAmount.IsPositive() {
		return decimal.Zero, &CostError{
			Kind:  KindUndefinedYield,
			Index: -1,
			Ref:   sub.ID,
			Err:   fmt.Errorf("recipe %q yields %s %s", sub.Name, sub.YieldAmount, sub.Yield),
		}
	}

	normalized, err := ToYield(sub, q, unit)
	if err != nil {
		return decimal.Zero, &CostError{Kind: KindUnitMismatch, Index: -1, Ref: sub.ID, Err: err}
	}

	return normalized.Mul(total).Div(sub.YieldAmount), nil
}

// ToYield expresses q unit in sub's yield unit. Freeform yields never
// convert: only each matches them, one each standing for one yield unit.
func ToYield(sub *Recipe, q decimal.Decimal, unit units.Unit) (decimal.Decimal, error) {
	if sub.Yield.IsFreeform() {
		if unit == units.Each {
			return q, nil
		}
		return decimal.Zero, &ConversionError{From: unit, Yield: sub.Yield.Label}
	}

	var conv *Ingredient
	if crossesMassVolume(unit, sub.Yield.Unit) {
		conv = &Ingredient{ID: sub.ID, Name: sub.Name, DensityFactor: RecipeDensity(sub)}
	}
	return Resolve(conv, q, unit, sub.Yield.Unit)
}

// RecipeDensity returns r's density in g/ml: the explicit override, or the
// ingredient-weighted density of every ingredient line expressible both as
// mass and volume. Nil when neither is available.
func RecipeDensity(r *Recipe) *decimal.Decimal {
	if r.DensityFactor != nil {
		return r.DensityFactor
	}

	grams, ml := decimal.Zero, decimal.Zero
	for _, c := range r.Components {
		use, ok := c.(IngredientUse)
		if !ok || use.Ingredient == nil {
			continue
		}
		g, gErr := Resolve(use.Ingredient, use.Quantity, use.Unit, units.Gram)
		v, vErr := Resolve(use.Ingredient, use.Quantity, use.Unit, units.Milliliter)
		if gErr != nil || vErr != nil {
			continue
		}
		grams = grams.Add(g)
		ml = ml.Add(v)
	}
	if !ml.IsPositive() {
		return nil
	}
	d := grams.Div(ml)
	return &d
}

func crossesMassVolume(a, b units.Unit) bool {
	da, db := units.DimensionOf(a), units.DimensionOf(b)
	return (da == units.Mass && db == units.Volume) || (da == units.Volume && db == units.Mass)
}
