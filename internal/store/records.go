package store

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/menucost/internal/units"
)

// Conversion source tags stored alongside each factor.
const (
	SourceCustom  = "custom"
	SourceDerived = "derived"
)

// Owner kinds for component rows.
const (
	OwnerRecipe = "recipe"
	OwnerEntree = "entree"
)

// Conversion states that one From equals Factor To.
type Conversion struct {
	From   units.Unit      `json:"from"`
	To     units.Unit      `json:"to"`
	Factor decimal.Decimal `json:"factor"`
}

// IngredientRecord is an ingredient as persisted.
type IngredientRecord struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	PricedQuantity decimal.Decimal  `json:"priced_quantity"`
	PricedUnit     units.Unit       `json:"priced_unit"`
	DensityFactor  *decimal.Decimal `json:"density_factor,omitempty"`
	Custom         []Conversion     `json:"custom_conversions,omitempty"`
	Derived        []Conversion     `json:"derived_conversions,omitempty"`
}

// ComponentRecord references exactly one of an ingredient or a recipe.
type ComponentRecord struct {
	IngredientID string          `json:"ingredient_id,omitempty"`
	RecipeID     string          `json:"recipe_id,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         units.Unit      `json:"unit"`
}

// RecipeRecord is a recipe as persisted. YieldUnit holds a catalog unit
// symbol or a freeform label.
type RecipeRecord struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	YieldAmount   decimal.Decimal   `json:"yield_amount"`
	YieldUnit     string            `json:"yield_unit"`
	DensityFactor *decimal.Decimal  `json:"density_factor,omitempty"`
	Components    []ComponentRecord `json:"components"`
	TotalCost     decimal.Decimal   `json:"total_cost"`
	CostError     string            `json:"cost_error,omitempty"`
}

// EntreeRecord is an entree as persisted.
type EntreeRecord struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	MenuPrice  *decimal.Decimal  `json:"menu_price,omitempty"`
	Servings   decimal.Decimal   `json:"servings"`
	Components []ComponentRecord `json:"components"`
	TotalCost  decimal.Decimal   `json:"total_cost"`
	CostError  string            `json:"cost_error,omitempty"`
}
