package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const (
	flourName     = "Flour"
	tomatoesName  = "Tomatoes"
	oliveOilName  = "Olive Oil"
	marinaraName  = "Marinara"
	spaghettiName = "Spaghetti Marinara"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

type conversion struct {
	source, from, to, factor string
}

type ingredient struct {
	name, unitPrice, pricedQuantity, pricedUnit, density string
	conversions                                         []conversion
}

type line struct {
	ingredient, recipe string
	quantity, unit     string
}

var ingredients = []ingredient{
	{
		name: flourName, unitPrice: "50", pricedQuantity: "50", pricedUnit: "lb", density: "0.53",
		conversions: []conversion{{source: "custom", from: "cup", to: "g", factor: "125"}},
	},
	{
		name: tomatoesName, unitPrice: "20", pricedQuantity: "10", pricedUnit: "lb",
		conversions: []conversion{{source: "derived", from: "ea", to: "g", factor: "120"}},
	},
	{name: oliveOilName, unitPrice: "12", pricedQuantity: "1", pricedUnit: "l", density: "0.91"},
}

// Run inserts the demo catalog in an idempotent way. Rows are matched by
// name; existing rows are left untouched. Cached totals are not computed
// here, callers recost afterwards.
func Run(ctx context.Context, db *sql.DB) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	ids := map[string]string{}
	for _, ing := range ingredients {
		id, err := ensureIngredient(ctx, tx, ing, &stats)
		if err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
		ids[ing.name] = id
	}

	marinaraID, err := ensureComposite(ctx, tx, "recipes", marinaraName, `
		INSERT INTO recipes (id, name, yield_amount, yield_unit) VALUES (?, ?, '4', 'serving')
	`, []line{
		{ingredient: tomatoesName, quantity: "6", unit: "ea"},
		{ingredient: oliveOilName, quantity: "2", unit: "tbsp"},
	}, ids, &stats)
	if err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	ids[marinaraName] = marinaraID

	if _, err := ensureComposite(ctx, tx, "entrees", spaghettiName, `
		INSERT INTO entrees (id, name, menu_price, servings) VALUES (?, ?, '18', '1')
	`, []line{
		{recipe: marinaraName, quantity: "1", unit: "serving"},
		{ingredient: flourName, quantity: "4", unit: "oz"},
		{ingredient: oliveOilName, quantity: "1", unit: "tsp"},
	}, ids, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureIngredient(ctx context.Context, tx *sql.Tx, ing ingredient, stats *Stats) (string, error) {
	id, err := existingID(ctx, tx, "ingredients", ing.name)
	if err != nil || id != "" {
		return id, err
	}

	id = uuid.NewString()
	var density sql.NullString
	if ing.density != "" {
		density = sql.NullString{String: ing.density, Valid: true}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ingredients (id, name, unit_price, priced_quantity, priced_unit, density_factor)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, ing.name, ing.unitPrice, ing.pricedQuantity, ing.pricedUnit, density); err != nil {
		return "", fmt.Errorf("insert ingredient %s: %w", ing.name, err)
	}
	for _, c := range ing.conversions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ingredient_conversions (ingredient_id, source, from_unit, to_unit, factor)
			VALUES (?, ?, ?, ?, ?)
		`, id, c.source, c.from, c.to, c.factor); err != nil {
			return "", fmt.Errorf("insert %s conversion for %s: %w", c.source, ing.name, err)
		}
	}
	stats.Inserts++
	return id, nil
}

// ensureComposite inserts a recipe or entree with insertSQL and its lines
// unless a row with that name already exists.
func ensureComposite(ctx context.Context, tx *sql.Tx, table, name, insertSQL string, lines []line, ids map[string]string, stats *Stats) (string, error) {
	id, err := existingID(ctx, tx, table, name)
	if err != nil || id != "" {
		return id, err
	}

	id = uuid.NewString()
	if _, err := tx.ExecContext(ctx, insertSQL, id, name); err != nil {
		return "", fmt.Errorf("insert %s: %w", name, err)
	}

	kind := "recipe"
	if table == "entrees" {
		kind = "entree"
	}
	for i, l := range lines {
		var ingredientID, recipeID sql.NullString
		if l.ingredient != "" {
			ingredientID = sql.NullString{String: ids[l.ingredient], Valid: true}
		} else {
			recipeID = sql.NullString{String: ids[l.recipe], Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO components (owner_kind, owner_id, position, ingredient_id, recipe_id, quantity, unit)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, kind, id, i, ingredientID, recipeID, l.quantity, l.unit); err != nil {
			return "", fmt.Errorf("insert line %d of %s: %w", i, name, err)
		}
	}
	stats.Inserts++
	return id, nil
}

func existingID(ctx context.Context, tx *sql.Tx, table, name string) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM `+table+` WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("check %s %q existence: %w", table, name, err)
	}
	return id, nil
}
