package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/menucost/internal/store"
)

// ErrInvalid matches every ValidationError.
var ErrInvalid = errors.New("invalid input")

// ValidationError names the offending field of a rejected mutation.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Err: fmt.Errorf(format, args...)}
}

func validateIngredient(rec store.IngredientRecord) error {
	if strings.TrimSpace(rec.Name) == "" {
		return invalid("name", "is required")
	}
	if rec.UnitPrice.IsNegative() {
		return invalid("unit_price", "must not be negative")
	}
	if !rec.PricedQuantity.IsPositive() {
		return invalid("priced_quantity", "must be positive")
	}
	if !rec.PricedUnit.Valid() {
		return invalid("priced_unit", "is not a known unit")
	}
	if err := positiveOptional("density_factor", rec.DensityFactor); err != nil {
		return err
	}
	for field, convs := range map[string][]store.Conversion{
		"custom_conversions":  rec.Custom,
		"derived_conversions": rec.Derived,
	} {
		seen := map[[2]string]bool{}
		for i, c := range convs {
			switch {
			case !c.From.Valid() || !c.To.Valid():
				return invalid(field, "entry %d: unknown unit", i)
			case c.From == c.To:
				return invalid(field, "entry %d: %s to itself", i, c.From)
			case !c.Factor.IsPositive():
				return invalid(field, "entry %d: factor must be positive", i)
			}
			key := [2]string{c.From.String(), c.To.String()}
			if seen[key] {
				return invalid(field, "entry %d: duplicate %s to %s", i, c.From, c.To)
			}
			seen[key] = true
		}
	}
	return nil
}

func validateRecipe(rec store.RecipeRecord) error {
	if strings.TrimSpace(rec.Name) == "" {
		return invalid("name", "is required")
	}
	if !rec.YieldAmount.IsPositive() {
		return invalid("yield_amount", "must be positive")
	}
	if strings.TrimSpace(rec.YieldUnit) == "" {
		return invalid("yield_unit", "is required")
	}
	return positiveOptional("density_factor", rec.DensityFactor)
}

func validateEntree(rec store.EntreeRecord) error {
	if strings.TrimSpace(rec.Name) == "" {
		return invalid("name", "is required")
	}
	if !rec.Servings.IsPositive() {
		return invalid("servings", "must be positive")
	}
	if rec.MenuPrice != nil && rec.MenuPrice.IsNegative() {
		return invalid("menu_price", "must not be negative")
	}
	return nil
}

func positiveOptional(field string, d *decimal.Decimal) error {
	if d != nil && !d.IsPositive() {
		return invalid(field, "must be positive")
	}
	return nil
}
