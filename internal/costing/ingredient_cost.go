package costing

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/menucost/internal/units"
)

var errNoPricedQuantity = errors.New("ingredient priced quantity must be positive")

// CostOfIngredient returns the cost of q unit of ing, pro-rated from its
// purchase price after converting q into the priced unit.
func CostOfIngredient(ing *Ingredient, q decimal.Decimal, unit units.Unit) (decimal.Decimal, error) {
	if ing == nil {
		return decimal.Zero, &CostError{Kind: KindInvalidComponent, Index: -1, Err: errors.New("missing ingredient")}
	}
	if !ing.PricedQuantity.IsPositive() {
		return decimal.Zero, &CostError{Kind: KindInvalidComponent, Index: -1, Ref: ing.ID, Err: errNoPricedQuantity}
	}

	normalized, err := Resolve(ing, q, unit, ing.PricedUnit)
	if err != nil {
		return decimal.Zero, &CostError{Kind: KindUnitMismatch, Index: -1, Ref: ing.ID, Err: err}
	}

	return normalized.Mul(ing.UnitPrice).Div(ing.PricedQuantity), nil
}
