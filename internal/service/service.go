// Package service validates catalog mutations, keeps cached costs current and
// answers costing queries on top of the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/menucost/internal/config"
	"github.com/Simplici0/menucost/internal/costing"
	"github.com/Simplici0/menucost/internal/store"
)

// Service applies catalog changes and answers cost queries.
type Service struct {
	store    *store.Store
	settings config.Settings
	log      *slog.Logger

	// mu serializes mutations so validation, save and recost see one state.
	mu sync.Mutex
}

// New returns a Service over st. Fewer than one report worker means one.
func New(st *store.Store, settings config.Settings, log *slog.Logger) *Service {
	if settings.ReportWorkers < 1 {
		settings.ReportWorkers = 1
	}
	return &Service{store: st, settings: settings, log: log}
}

// Settings returns the costing preferences in effect.
func (s *Service) Settings() config.Settings { return s.settings }

// Ingredients lists every ingredient with its conversions.
func (s *Service) Ingredients(ctx context.Context) ([]store.IngredientRecord, error) {
	return s.store.ListIngredients(ctx)
}

// Recipes lists every recipe with its lines and cached total.
func (s *Service) Recipes(ctx context.Context) ([]store.RecipeRecord, error) {
	return s.store.ListRecipes(ctx)
}

// Entrees lists every entree with its lines and cached total.
func (s *Service) Entrees(ctx context.Context) ([]store.EntreeRecord, error) {
	return s.store.ListEntrees(ctx)
}

// CreateIngredient validates rec, assigns it an id and saves it.
func (s *Service) CreateIngredient(ctx context.Context, rec store.IngredientRecord) (store.IngredientRecord, error) {
	rec.ID = store.NewID()
	return s.saveIngredient(ctx, rec)
}

// UpdateIngredient replaces an existing ingredient and recosts everything
// that uses it.
func (s *Service) UpdateIngredient(ctx context.Context, id string, rec store.IngredientRecord) (store.IngredientRecord, error) {
	if _, err := s.store.GetIngredient(ctx, id); err != nil {
		return store.IngredientRecord{}, err
	}
	rec.ID = id
	return s.saveIngredient(ctx, rec)
}

func (s *Service) saveIngredient(ctx context.Context, rec store.IngredientRecord) (store.IngredientRecord, error) {
	rec.Name = strings.TrimSpace(rec.Name)
	if err := validateIngredient(rec); err != nil {
		return store.IngredientRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveIngredient(ctx, rec); err != nil {
		return store.IngredientRecord{}, err
	}
	s.log.InfoContext(ctx, "ingredient.saved", "id", rec.ID, "name", rec.Name)
	return rec, s.recost(ctx)
}

// CreateRecipe validates rec against the current catalog and saves it.
func (s *Service) CreateRecipe(ctx context.Context, rec store.RecipeRecord) (store.RecipeRecord, error) {
	rec.ID = store.NewID()
	return s.saveRecipe(ctx, rec)
}

// UpdateRecipe replaces an existing recipe. The update is rejected when it
// would make the recipe reach itself through its sub-recipes.
func (s *Service) UpdateRecipe(ctx context.Context, id string, rec store.RecipeRecord) (store.RecipeRecord, error) {
	if _, err := s.store.GetRecipe(ctx, id); err != nil {
		return store.RecipeRecord{}, err
	}
	rec.ID = id
	return s.saveRecipe(ctx, rec)
}

func (s *Service) saveRecipe(ctx context.Context, rec store.RecipeRecord) (store.RecipeRecord, error) {
	rec.Name = strings.TrimSpace(rec.Name)
	rec.YieldUnit = strings.TrimSpace(rec.YieldUnit)
	if err := validateRecipe(rec); err != nil {
		return store.RecipeRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return store.RecipeRecord{}, err
	}
	snap.Recipes = replaceRecipe(snap.Recipes, rec)
	cat, err := store.BuildCatalog(snap)
	if err != nil {
		return store.RecipeRecord{}, &ValidationError{Field: "components", Err: err}
	}
	r := cat.Recipes[rec.ID]
	if err := costing.ValidateComponents(r); err != nil {
		return store.RecipeRecord{}, err
	}
	if err := costing.ValidateAcyclic(r); err != nil {
		return store.RecipeRecord{}, err
	}

	if err := s.store.SaveRecipe(ctx, rec); err != nil {
		return store.RecipeRecord{}, err
	}
	s.log.InfoContext(ctx, "recipe.saved", "id", rec.ID, "name", rec.Name, "lines", len(rec.Components))
	if err := s.recost(ctx); err != nil {
		return store.RecipeRecord{}, err
	}
	return s.store.GetRecipe(ctx, rec.ID)
}

// CreateEntree validates rec against the current catalog and saves it.
func (s *Service) CreateEntree(ctx context.Context, rec store.EntreeRecord) (store.EntreeRecord, error) {
	rec.ID = store.NewID()
	return s.saveEntree(ctx, rec)
}

// UpdateEntree replaces an existing entree.
func (s *Service) UpdateEntree(ctx context.Context, id string, rec store.EntreeRecord) (store.EntreeRecord, error) {
	if _, err := s.store.GetEntree(ctx, id); err != nil {
		return store.EntreeRecord{}, err
	}
	rec.ID = id
	return s.saveEntree(ctx, rec)
}

func (s *Service) saveEntree(ctx context.Context, rec store.EntreeRecord) (store.EntreeRecord, error) {
	rec.Name = strings.TrimSpace(rec.Name)
	if err := validateEntree(rec); err != nil {
		return store.EntreeRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return store.EntreeRecord{}, err
	}
	snap.Entrees = replaceEntree(snap.Entrees, rec)
	cat, err := store.BuildCatalog(snap)
	if err != nil {
		return store.EntreeRecord{}, &ValidationError{Field: "components", Err: err}
	}
	if err := costing.ValidateComponents(cat.Entrees[rec.ID]); err != nil {
		return store.EntreeRecord{}, err
	}

	if err := s.store.SaveEntree(ctx, rec); err != nil {
		return store.EntreeRecord{}, err
	}
	s.log.InfoContext(ctx, "entree.saved", "id", rec.ID, "name", rec.Name, "lines", len(rec.Components))
	if err := s.recost(ctx); err != nil {
		return store.EntreeRecord{}, err
	}
	return s.store.GetEntree(ctx, rec.ID)
}

// DeleteIngredient removes an ingredient no component references.
func (s *Service) DeleteIngredient(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.DeleteIngredient(ctx, id)
}

// DeleteRecipe removes a recipe no component references.
func (s *Service) DeleteRecipe(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.DeleteRecipe(ctx, id)
}

// DeleteEntree removes an entree and its lines.
func (s *Service) DeleteEntree(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.DeleteEntree(ctx, id)
}

// Recost recomputes and persists the cached total of every recipe and entree.
func (s *Service) Recost(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recost(ctx)
}

// recost visits sub-recipes before the recipes that use them so each cached
// total is refreshed in dependency order. A total that cannot be computed is
// stored as zero with its error text.
func (s *Service) recost(ctx context.Context) error {
	cat, err := s.store.LoadCatalog(ctx)
	if err != nil {
		return err
	}

	var costs []store.CachedCost
	failed := 0
	record := func(kind string, c costing.Composite) {
		total, err := costing.TotalCost(c)
		entry := store.CachedCost{Kind: kind, ID: c.Identity(), Total: total}
		if err != nil {
			entry.Total = decimal.Zero
			entry.Err = err.Error()
			failed++
		}
		costs = append(costs, entry)
	}

	done := map[string]bool{}
	var visit func(r *costing.Recipe)
	visit = func(r *costing.Recipe) {
		if done[r.ID] {
			return
		}
		done[r.ID] = true
		for _, comp := range r.Components {
			if sub, ok := comp.(costing.SubRecipeUse); ok && sub.Recipe != nil {
				visit(sub.Recipe)
			}
		}
		record(store.OwnerRecipe, r)
		r.TotalCost = costs[len(costs)-1].Total
	}
	for _, id := range sortedKeys(cat.Recipes) {
		visit(cat.Recipes[id])
	}
	for _, id := range sortedKeys(cat.Entrees) {
		record(store.OwnerEntree, cat.Entrees[id])
	}

	if err := s.store.UpdateCachedCosts(ctx, costs); err != nil {
		return fmt.Errorf("persist recomputed costs: %w", err)
	}
	s.log.InfoContext(ctx, "catalog.recosted", "recipes", len(cat.Recipes), "entrees", len(cat.Entrees), "failed", failed)
	return nil
}

func (s *Service) catalog(ctx context.Context) (*costing.Catalog, error) {
	cat, err := s.store.LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

func replaceRecipe(all []store.RecipeRecord, rec store.RecipeRecord) []store.RecipeRecord {
	out := make([]store.RecipeRecord, 0, len(all)+1)
	for _, r := range all {
		if r.ID != rec.ID {
			out = append(out, r)
		}
	}
	return append(out, rec)
}

func replaceEntree(all []store.EntreeRecord, rec store.EntreeRecord) []store.EntreeRecord {
	out := make([]store.EntreeRecord, 0, len(all)+1)
	for _, e := range all {
		if e.ID != rec.ID {
			out = append(out, e)
		}
	}
	return append(out, rec)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// notFound wraps store.ErrNotFound for an id missing from a loaded catalog.
func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, store.ErrNotFound)
}

// IsNotFound reports whether err names a missing entity.
func IsNotFound(err error) bool { return errors.Is(err, store.ErrNotFound) }
