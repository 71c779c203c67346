package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/menucost/internal/costing"
	"github.com/Simplici0/menucost/internal/units"
)

// ErrUnknownReference is returned when a component names an ingredient or
// recipe that does not exist.
var ErrUnknownReference = errors.New("unknown reference")

// Snapshot is everything persisted, in record form.
type Snapshot struct {
	Ingredients []IngredientRecord
	Recipes     []RecipeRecord
	Entrees     []EntreeRecord
}

// Snapshot reads every table.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	ings, err := s.ListIngredients(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	recipes, err := s.ListRecipes(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	entrees, err := s.ListEntrees(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Ingredients: ings, Recipes: recipes, Entrees: entrees}, nil
}

// LoadCatalog reads every table and resolves references into a costing
// snapshot.
func (s *Store) LoadCatalog(ctx context.Context) (*costing.Catalog, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCatalog(snap)
}

// BuildCatalog resolves record references. All recipes are allocated before
// any lines are linked, so recipes may reference each other in any order.
func BuildCatalog(snap Snapshot) (*costing.Catalog, error) {
	cat := costing.NewCatalog()

	for _, rec := range snap.Ingredients {
		ing := &costing.Ingredient{
			ID:             rec.ID,
			Name:           rec.Name,
			UnitPrice:      rec.UnitPrice,
			PricedQuantity: rec.PricedQuantity,
			PricedUnit:     rec.PricedUnit,
			DensityFactor:  rec.DensityFactor,
		}
		if len(rec.Custom) > 0 {
			ing.Custom = pairTable(rec.Custom)
		}
		if len(rec.Derived) > 0 {
			ing.Derived = pairTable(rec.Derived)
		}
		cat.Ingredients[rec.ID] = ing
	}

	for _, rec := range snap.Recipes {
		cat.Recipes[rec.ID] = &costing.Recipe{
			ID:            rec.ID,
			Name:          rec.Name,
			YieldAmount:   rec.YieldAmount,
			Yield:         ParseYield(rec.YieldUnit),
			TotalCost:     rec.TotalCost,
			DensityFactor: rec.DensityFactor,
		}
	}
	for _, rec := range snap.Recipes {
		comps, err := link(cat, rec.Components)
		if err != nil {
			return nil, fmt.Errorf("recipe %s: %w", rec.Name, err)
		}
		cat.Recipes[rec.ID].Components = comps
	}

	for _, rec := range snap.Entrees {
		comps, err := link(cat, rec.Components)
		if err != nil {
			return nil, fmt.Errorf("entree %s: %w", rec.Name, err)
		}
		cat.Entrees[rec.ID] = &costing.Entree{
			ID:         rec.ID,
			Name:       rec.Name,
			MenuPrice:  rec.MenuPrice,
			Servings:   rec.Servings,
			Components: comps,
			TotalCost:  rec.TotalCost,
		}
	}

	return cat, nil
}

// ParseYield maps a stored yield label to a catalog unit when it names one.
func ParseYield(raw string) costing.YieldUnit {
	if u, err := units.Parse(raw); err == nil {
		return costing.CatalogYield(u)
	}
	return costing.FreeformYield(raw)
}

func link(cat *costing.Catalog, lines []ComponentRecord) ([]costing.Component, error) {
	comps := make([]costing.Component, 0, len(lines))
	for i, line := range lines {
		switch {
		case line.IngredientID != "" && line.RecipeID != "":
			return nil, fmt.Errorf("line %d names both an ingredient and a recipe", i)
		case line.IngredientID != "":
			ing, ok := cat.Ingredients[line.IngredientID]
			if !ok {
				return nil, fmt.Errorf("line %d: ingredient %s: %w", i, line.IngredientID, ErrUnknownReference)
			}
			comps = append(comps, costing.IngredientUse{Ingredient: ing, Quantity: line.Quantity, Unit: line.Unit})
		case line.RecipeID != "":
			r, ok := cat.Recipes[line.RecipeID]
			if !ok {
				return nil, fmt.Errorf("line %d: recipe %s: %w", i, line.RecipeID, ErrUnknownReference)
			}
			comps = append(comps, costing.SubRecipeUse{Recipe: r, Quantity: line.Quantity, Unit: line.Unit})
		default:
			return nil, fmt.Errorf("line %d names neither an ingredient nor a recipe", i)
		}
	}
	return comps, nil
}

func pairTable(convs []Conversion) map[costing.Pair]decimal.Decimal {
	out := make(map[costing.Pair]decimal.Decimal, len(convs))
	for _, c := range convs {
		out[costing.Pair{From: c.From, To: c.To}] = c.Factor
	}
	return out
}
