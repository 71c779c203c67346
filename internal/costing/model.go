// Package costing turns priced ingredients and nested recipe components into
// monetary costs. Every function is pure: it reads fully-resolved snapshots
// and never mutates them, so callers may invoke it from any goroutine.
package costing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/menucost/internal/units"
)

// Pair is an ordered unit pair. A factor stored under Pair{From, To} means
// one From equals factor To.
type Pair struct {
	From units.Unit
	To   units.Unit
}

// Ingredient is a priced purchasable item.
type Ingredient struct {
	ID   string
	Name string

	// UnitPrice buys PricedQuantity of PricedUnit.
	UnitPrice      decimal.Decimal
	PricedQuantity decimal.Decimal
	PricedUnit     units.Unit

	// DensityFactor is grams per milliliter.
	DensityFactor *decimal.Decimal

	Custom  map[Pair]decimal.Decimal
	Derived map[Pair]decimal.Decimal
}

// Component is one line of a recipe or entree. The set of implementations is
// closed: IngredientUse and SubRecipeUse.
type Component interface {
	component()
	Amount() (decimal.Decimal, units.Unit)
	RefID() string
}

// IngredientUse is a quantity of a priced ingredient.
type IngredientUse struct {
	Ingredient *Ingredient
	Quantity   decimal.Decimal
	Unit       units.Unit
}

// SubRecipeUse is a quantity of another recipe's yield.
type SubRecipeUse struct {
	Recipe   *Recipe
	Quantity decimal.Decimal
	Unit     units.Unit
}

func (IngredientUse) component() {}
func (SubRecipeUse) component()  {}

func (c IngredientUse) Amount() (decimal.Decimal, units.Unit) { return c.Quantity, c.Unit }
func (c SubRecipeUse) Amount() (decimal.Decimal, units.Unit)  { return c.Quantity, c.Unit }

func (c IngredientUse) RefID() string {
	if c.Ingredient == nil {
		return ""
	}
	return c.Ingredient.ID
}

func (c SubRecipeUse) RefID() string {
	if c.Recipe == nil {
		return ""
	}
	return c.Recipe.ID
}

// YieldUnit is either a catalog unit or a freeform label such as "pan".
// Freeform yields never take part in conversion.
type YieldUnit struct {
	Unit  units.Unit
	Label string
}

// CatalogYield wraps a catalog unit.
func CatalogYield(u units.Unit) YieldUnit { return YieldUnit{Unit: u} }

// FreeformYield wraps a label outside the unit catalog.
func FreeformYield(label string) YieldUnit { return YieldUnit{Label: label} }

// IsFreeform reports whether the yield is a label rather than a catalog unit.
func (y YieldUnit) IsFreeform() bool { return !y.Unit.Valid() }

func (y YieldUnit) String() string {
	if y.IsFreeform() {
		return y.Label
	}
	return y.Unit.String()
}

// Recipe produces YieldAmount of Yield from its components.
type Recipe struct {
	ID          string
	Name        string
	YieldAmount decimal.Decimal
	Yield       YieldUnit
	Components  []Component

	// TotalCost is the cached aggregate, refreshed by the owner after every
	// mutation. The aggregator never reads it for the recipe it is costing.
	TotalCost decimal.Decimal

	// DensityFactor overrides the ingredient-weighted density (g/ml).
	DensityFactor *decimal.Decimal
}

// Entree is a menu item.
type Entree struct {
	ID         string
	Name       string
	MenuPrice  *decimal.Decimal
	Servings   decimal.Decimal
	Components []Component
	TotalCost  decimal.Decimal
}

// Composite is anything with an ordered component list.
type Composite interface {
	Identity() string
	Parts() []Component
}

func (r *Recipe) Identity() string   { return r.ID }
func (r *Recipe) Parts() []Component { return r.Components }
func (e *Entree) Identity() string   { return e.ID }
func (e *Entree) Parts() []Component { return e.Components }

// Catalog is a resolved snapshot of everything an owner has loaded.
type Catalog struct {
	Ingredients map[string]*Ingredient
	Recipes     map[string]*Recipe
	Entrees     map[string]*Entree
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		Ingredients: make(map[string]*Ingredient),
		Recipes:     make(map[string]*Recipe),
		Entrees:     make(map[string]*Entree),
	}
}
