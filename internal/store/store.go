// Package store persists ingredients, recipes and entrees in SQLite and
// loads them back as resolved costing snapshots.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no row carries the requested id or name.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a save would reuse another row's name.
var ErrDuplicate = errors.New("name already taken")

// Store reads and writes the catalog tables.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// New returns a Store over an opened and migrated database.
func New(db *sql.DB, log *slog.Logger) *Store {
	return &Store{db: db, log: log}
}

// NewID returns a fresh identifier for a catalog entity.
func NewID() string {
	return uuid.NewString()
}

// SaveIngredient inserts or replaces an ingredient and its conversions.
func (s *Store) SaveIngredient(ctx context.Context, rec IngredientRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := checkNameFree(ctx, tx, "ingredients", rec.ID, rec.Name); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ingredients (id, name, unit_price, priced_quantity, priced_unit, density_factor)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				unit_price = excluded.unit_price,
				priced_quantity = excluded.priced_quantity,
				priced_unit = excluded.priced_unit,
				density_factor = excluded.density_factor,
				updated_at = CURRENT_TIMESTAMP
		`, rec.ID, rec.Name, rec.UnitPrice, rec.PricedQuantity, rec.PricedUnit, nullDecimal(rec.DensityFactor))
		if err != nil {
			return fmt.Errorf("upsert ingredient %s: %w", rec.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM ingredient_conversions WHERE ingredient_id = ?`, rec.ID); err != nil {
			return fmt.Errorf("clear conversions of %s: %w", rec.ID, err)
		}
		for source, convs := range map[string][]Conversion{SourceCustom: rec.Custom, SourceDerived: rec.Derived} {
			for _, c := range convs {
				_, err := tx.ExecContext(ctx, `
					INSERT INTO ingredient_conversions (ingredient_id, source, from_unit, to_unit, factor)
					VALUES (?, ?, ?, ?, ?)
				`, rec.ID, source, c.From, c.To, c.Factor)
				if err != nil {
					return fmt.Errorf("insert %s conversion %s->%s: %w", source, c.From, c.To, err)
				}
			}
		}

		s.log.DebugContext(ctx, "store.ingredient_saved", "id", rec.ID, "name", rec.Name)
		return nil
	})
}

// SaveRecipe inserts or replaces a recipe and its component lines.
func (s *Store) SaveRecipe(ctx context.Context, rec RecipeRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := checkNameFree(ctx, tx, "recipes", rec.ID, rec.Name); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recipes (id, name, yield_amount, yield_unit, density_factor)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				yield_amount = excluded.yield_amount,
				yield_unit = excluded.yield_unit,
				density_factor = excluded.density_factor,
				updated_at = CURRENT_TIMESTAMP
		`, rec.ID, rec.Name, rec.YieldAmount, rec.YieldUnit, nullDecimal(rec.DensityFactor))
		if err != nil {
			return fmt.Errorf("upsert recipe %s: %w", rec.ID, err)
		}
		if err := replaceComponents(ctx, tx, OwnerRecipe, rec.ID, rec.Components); err != nil {
			return err
		}
		s.log.DebugContext(ctx, "store.recipe_saved", "id", rec.ID, "name", rec.Name, "lines", len(rec.Components))
		return nil
	})
}

// SaveEntree inserts or replaces an entree and its component lines.
func (s *Store) SaveEntree(ctx context.Context, rec EntreeRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := checkNameFree(ctx, tx, "entrees", rec.ID, rec.Name); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO entrees (id, name, menu_price, servings)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				menu_price = excluded.menu_price,
				servings = excluded.servings,
				updated_at = CURRENT_TIMESTAMP
		`, rec.ID, rec.Name, nullDecimal(rec.MenuPrice), rec.Servings)
		if err != nil {
			return fmt.Errorf("upsert entree %s: %w", rec.ID, err)
		}
		if err := replaceComponents(ctx, tx, OwnerEntree, rec.ID, rec.Components); err != nil {
			return err
		}
		s.log.DebugContext(ctx, "store.entree_saved", "id", rec.ID, "name", rec.Name, "lines", len(rec.Components))
		return nil
	})
}

func checkNameFree(ctx context.Context, tx *sql.Tx, table, id, name string) error {
	var taken bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM `+table+` WHERE name = ? AND id <> ?)`, name, id).Scan(&taken); err != nil {
		return fmt.Errorf("check %s name %q: %w", table, name, err)
	}
	if taken {
		return fmt.Errorf("%s %q: %w", table, name, ErrDuplicate)
	}
	return nil
}

func replaceComponents(ctx context.Context, tx *sql.Tx, kind, owner string, comps []ComponentRecord) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM components WHERE owner_kind = ? AND owner_id = ?`, kind, owner); err != nil {
		return fmt.Errorf("clear components of %s %s: %w", kind, owner, err)
	}
	for i, c := range comps {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO components (owner_kind, owner_id, position, ingredient_id, recipe_id, quantity, unit)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, kind, owner, i, nullString(c.IngredientID), nullString(c.RecipeID), c.Quantity, c.Unit)
		if err != nil {
			return fmt.Errorf("insert component %d of %s %s: %w", i, kind, owner, err)
		}
	}
	return nil
}

// UpdateCachedCost stores the recomputed total of a recipe or entree. A
// non-empty costErr records why the total could not be computed.
func (s *Store) UpdateCachedCost(ctx context.Context, kind, id string, total decimal.Decimal, costErr string) error {
	table, err := ownerTable(kind)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE `+table+` SET total_cost = ?, cost_error = ? WHERE id = ?`,
		total, nullString(costErr), id)
	if err != nil {
		return fmt.Errorf("update cached cost of %s %s: %w", kind, id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update cached cost of %s %s: %w", kind, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

// CachedCost is one recomputed total for UpdateCachedCosts.
type CachedCost struct {
	Kind  string
	ID    string
	Total decimal.Decimal
	Err   string
}

// UpdateCachedCosts stores a batch of recomputed totals in one transaction.
func (s *Store) UpdateCachedCosts(ctx context.Context, costs []CachedCost) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range costs {
			table, err := ownerTable(c.Kind)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE `+table+` SET total_cost = ?, cost_error = ? WHERE id = ?`,
				c.Total, nullString(c.Err), c.ID); err != nil {
				return fmt.Errorf("update cached cost of %s %s: %w", c.Kind, c.ID, err)
			}
		}
		s.log.DebugContext(ctx, "store.cached_costs_updated", "count", len(costs))
		return nil
	})
}

// DeleteIngredient removes an ingredient unless a component still uses it.
func (s *Store) DeleteIngredient(ctx context.Context, id string) error {
	return s.deleteUnreferenced(ctx, "ingredients", "ingredient_id", id)
}

// DeleteRecipe removes a recipe unless a component still uses it.
func (s *Store) DeleteRecipe(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := checkUnreferenced(ctx, tx, "recipe_id", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM components WHERE owner_kind = ? AND owner_id = ?`, OwnerRecipe, id); err != nil {
			return fmt.Errorf("delete components of recipe %s: %w", id, err)
		}
		return deleteRow(ctx, tx, "recipes", id)
	})
}

// DeleteEntree removes an entree and its lines.
func (s *Store) DeleteEntree(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM components WHERE owner_kind = ? AND owner_id = ?`, OwnerEntree, id); err != nil {
			return fmt.Errorf("delete components of entree %s: %w", id, err)
		}
		return deleteRow(ctx, tx, "entrees", id)
	})
}

// ErrInUse is returned when deleting something a component still references.
var ErrInUse = errors.New("still used by a recipe or entree")

func (s *Store) deleteUnreferenced(ctx context.Context, table, column, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := checkUnreferenced(ctx, tx, column, id); err != nil {
			return err
		}
		return deleteRow(ctx, tx, table, id)
	})
}

func checkUnreferenced(ctx context.Context, tx *sql.Tx, column, id string) error {
	var used bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM components WHERE `+column+` = ? LIMIT 1)`, id).Scan(&used); err != nil {
		return fmt.Errorf("check references to %s: %w", id, err)
	}
	if used {
		return fmt.Errorf("%s: %w", id, ErrInUse)
	}
	return nil
}

func deleteRow(ctx context.Context, tx *sql.Tx, table, id string) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s from %s: %w", id, table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s from %s: %w", id, table, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func ownerTable(kind string) (string, error) {
	switch kind {
	case OwnerRecipe:
		return "recipes", nil
	case OwnerEntree:
		return "entrees", nil
	default:
		return "", fmt.Errorf("unknown owner kind %q", kind)
	}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
