package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ListIngredients returns every ingredient ordered by name, conversions
// included.
func (s *Store) ListIngredients(ctx context.Context) ([]IngredientRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, unit_price, priced_quantity, priced_unit, density_factor
		FROM ingredients
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query ingredients: %w", err)
	}
	defer rows.Close()

	var out []IngredientRecord
	index := map[string]int{}
	for rows.Next() {
		var rec IngredientRecord
		var density decimal.NullDecimal
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.UnitPrice, &rec.PricedQuantity, &rec.PricedUnit, &density); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		rec.DensityFactor = decimalPtr(density)
		index[rec.ID] = len(out)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingredients: %w", err)
	}
	rows.Close()

	convRows, err := s.db.QueryContext(ctx, `
		SELECT ingredient_id, source, from_unit, to_unit, factor
		FROM ingredient_conversions
		ORDER BY ingredient_id, source, from_unit, to_unit
	`)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer convRows.Close()

	for convRows.Next() {
		var ingredientID, source string
		var c Conversion
		if err := convRows.Scan(&ingredientID, &source, &c.From, &c.To, &c.Factor); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		i, ok := index[ingredientID]
		if !ok {
			continue
		}
		if source == SourceDerived {
			out[i].Derived = append(out[i].Derived, c)
		} else {
			out[i].Custom = append(out[i].Custom, c)
		}
	}
	if err := convRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversions: %w", err)
	}

	return out, nil
}

// ListRecipes returns every recipe ordered by name, component lines included.
func (s *Store) ListRecipes(ctx context.Context) ([]RecipeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, yield_amount, yield_unit, density_factor, total_cost, COALESCE(cost_error, '')
		FROM recipes
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	var out []RecipeRecord
	for rows.Next() {
		var rec RecipeRecord
		var density decimal.NullDecimal
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.YieldAmount, &rec.YieldUnit, &density, &rec.TotalCost, &rec.CostError); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		rec.DensityFactor = decimalPtr(density)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}
	rows.Close()

	lines, err := s.components(ctx, OwnerRecipe)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Components = lines[out[i].ID]
	}
	return out, nil
}

// ListEntrees returns every entree ordered by name, component lines included.
func (s *Store) ListEntrees(ctx context.Context) ([]EntreeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, menu_price, servings, total_cost, COALESCE(cost_error, '')
		FROM entrees
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query entrees: %w", err)
	}
	defer rows.Close()

	var out []EntreeRecord
	for rows.Next() {
		var rec EntreeRecord
		var price decimal.NullDecimal
		if err := rows.Scan(&rec.ID, &rec.Name, &price, &rec.Servings, &rec.TotalCost, &rec.CostError); err != nil {
			return nil, fmt.Errorf("scan entree: %w", err)
		}
		rec.MenuPrice = decimalPtr(price)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entrees: %w", err)
	}
	rows.Close()

	lines, err := s.components(ctx, OwnerEntree)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Components = lines[out[i].ID]
	}
	return out, nil
}

func (s *Store) components(ctx context.Context, kind string) (map[string][]ComponentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT owner_id, COALESCE(ingredient_id, ''), COALESCE(recipe_id, ''), quantity, unit
		FROM components
		WHERE owner_kind = ?
		ORDER BY owner_id, position
	`, kind)
	if err != nil {
		return nil, fmt.Errorf("query %s components: %w", kind, err)
	}
	defer rows.Close()

	out := map[string][]ComponentRecord{}
	for rows.Next() {
		var owner string
		var c ComponentRecord
		if err := rows.Scan(&owner, &c.IngredientID, &c.RecipeID, &c.Quantity, &c.Unit); err != nil {
			return nil, fmt.Errorf("scan %s component: %w", kind, err)
		}
		out[owner] = append(out[owner], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s components: %w", kind, err)
	}
	return out, nil
}

// GetIngredient returns one ingredient or ErrNotFound.
func (s *Store) GetIngredient(ctx context.Context, id string) (IngredientRecord, error) {
	all, err := s.ListIngredients(ctx)
	if err != nil {
		return IngredientRecord{}, err
	}
	for _, rec := range all {
		if rec.ID == id {
			return rec, nil
		}
	}
	return IngredientRecord{}, fmt.Errorf("ingredient %s: %w", id, ErrNotFound)
}

// GetRecipe returns one recipe or ErrNotFound.
func (s *Store) GetRecipe(ctx context.Context, id string) (RecipeRecord, error) {
	all, err := s.ListRecipes(ctx)
	if err != nil {
		return RecipeRecord{}, err
	}
	for _, rec := range all {
		if rec.ID == id {
			return rec, nil
		}
	}
	return RecipeRecord{}, fmt.Errorf("recipe %s: %w", id, ErrNotFound)
}

// GetEntree returns one entree or ErrNotFound.
func (s *Store) GetEntree(ctx context.Context, id string) (EntreeRecord, error) {
	all, err := s.ListEntrees(ctx)
	if err != nil {
		return EntreeRecord{}, err
	}
	for _, rec := range all {
		if rec.ID == id {
			return rec, nil
		}
	}
	return EntreeRecord{}, fmt.Errorf("entree %s: %w", id, ErrNotFound)
}

// IDByName looks up the id of a named ingredient, recipe or entree.
func (s *Store) IDByName(ctx context.Context, table, name string) (string, error) {
	switch table {
	case "ingredients", "recipes", "entrees":
	default:
		return "", fmt.Errorf("unknown table %q", table)
	}
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM `+table+` WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s %q: %w", table, name, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("query %s by name: %w", table, err)
	}
	return id, nil
}

func decimalPtr(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}
