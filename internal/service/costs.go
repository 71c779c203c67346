package service

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/menucost/internal/costing"
	"github.com/Simplici0/menucost/internal/metrics"
	"github.com/Simplici0/menucost/internal/pricing"
	"github.com/Simplici0/menucost/internal/units"
)

// RecipeCost is a recipe's freshly computed cost with its line breakdown.
type RecipeCost struct {
	ID          string
	Name        string
	YieldAmount decimal.Decimal
	YieldUnit   string
	Lines       []costing.LineCost
	Total       decimal.Decimal
	// PerYieldUnit is Total divided by YieldAmount.
	PerYieldUnit decimal.Decimal
}

// EntreeCost is an entree's freshly computed cost and its menu metrics.
type EntreeCost struct {
	ID       string
	Name     string
	Servings decimal.Decimal
	Lines    []costing.LineCost
	Analysis metrics.Analysis
	// MetricErr explains metrics that could not be derived, such as a
	// missing menu price. The cost figures are still valid.
	MetricErr      error
	SuggestedPrice *decimal.Decimal
}

// RecipeCost recomputes one recipe.
func (s *Service) RecipeCost(ctx context.Context, id string) (RecipeCost, error) {
	cat, err := s.catalog(ctx)
	if err != nil {
		return RecipeCost{}, err
	}
	r, ok := cat.Recipes[id]
	if !ok {
		return RecipeCost{}, notFound("recipe", id)
	}

	lines, total, err := costing.Breakdown(r)
	if err != nil {
		return RecipeCost{}, err
	}
	out := RecipeCost{
		ID:          r.ID,
		Name:        r.Name,
		YieldAmount: r.YieldAmount,
		YieldUnit:   r.Yield.String(),
		Lines:       lines,
		Total:       total,
	}
	if per, ok := metrics.CostPerServing(total, r.YieldAmount); ok {
		out.PerYieldUnit = per
	}
	return out, nil
}

// EntreeCost recomputes one entree and derives its food-cost metrics.
func (s *Service) EntreeCost(ctx context.Context, id string) (EntreeCost, error) {
	cat, err := s.catalog(ctx)
	if err != nil {
		return EntreeCost{}, err
	}
	e, ok := cat.Entrees[id]
	if !ok {
		return EntreeCost{}, notFound("entree", id)
	}
	return s.entreeCost(e)
}

func (s *Service) entreeCost(e *costing.Entree) (EntreeCost, error) {
	lines, total, err := costing.Breakdown(e)
	if err != nil {
		return EntreeCost{}, err
	}

	analysis, metricErr := metrics.Analyze(total, e.Servings, e.MenuPrice, s.settings.Thresholds)
	out := EntreeCost{
		ID:        e.ID,
		Name:      e.Name,
		Servings:  e.Servings,
		Lines:     lines,
		Analysis:  analysis,
		MetricErr: metricErr,
	}
	if !errors.Is(metricErr, metrics.ErrUndefinedCostPerServing) {
		if price, ok := metrics.SuggestedPrice(analysis.CostPerServing, s.settings.TargetFoodCost); ok {
			out.SuggestedPrice = &price
		}
	}
	return out, nil
}

// ReportRow is one entree in the food-cost report. Err is set when the
// entree could not be costed; Cost is then empty.
type ReportRow struct {
	EntreeID string
	Name     string
	Cost     EntreeCost
	Err      error
}

// FoodCostReport costs every entree concurrently. A failing entree is
// reported in its row and does not fail the report.
func (s *Service) FoodCostReport(ctx context.Context) ([]ReportRow, error) {
	cat, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	ids := sortedKeys(cat.Entrees)
	rows := make([]ReportRow, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.settings.ReportWorkers)
	for i, id := range ids {
		e := cat.Entrees[id]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row := ReportRow{EntreeID: e.ID, Name: e.Name}
			row.Cost, row.Err = s.entreeCost(e)
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(rows, func(a, b int) bool { return rows[a].Name < rows[b].Name })

	failed := 0
	for _, row := range rows {
		if row.Err != nil {
			failed++
		}
	}
	s.log.InfoContext(ctx, "report.food_cost", "entrees", len(rows), "failed", failed)
	return rows, nil
}

// Convert expresses q from-units in to-units. With an ingredient id the
// ingredient's custom, derived and density factors take part; without one
// only catalog conversions apply.
func (s *Service) Convert(ctx context.Context, ingredientID string, q decimal.Decimal, from, to units.Unit) (decimal.Decimal, error) {
	var ing *costing.Ingredient
	if ingredientID != "" {
		cat, err := s.catalog(ctx)
		if err != nil {
			return decimal.Zero, err
		}
		found, ok := cat.Ingredients[ingredientID]
		if !ok {
			return decimal.Zero, notFound("ingredient", ingredientID)
		}
		ing = found
	}
	return costing.Resolve(ing, q, from, to)
}

// Quote prices plates of an entree for catering or takeaway on top of its
// current food cost per serving.
func (s *Service) Quote(ctx context.Context, entreeID string, plates, laborMinutes decimal.Decimal, rates pricing.Rates) (pricing.Result, error) {
	cost, err := s.EntreeCost(ctx, entreeID)
	if err != nil {
		return pricing.Result{}, err
	}
	if errors.Is(cost.MetricErr, metrics.ErrUndefinedCostPerServing) {
		return pricing.Result{}, cost.MetricErr
	}
	return pricing.Calculate(pricing.PlateInput{
		FoodCost:     cost.Analysis.CostPerServing,
		LaborMinutes: laborMinutes,
		Quantity:     plates,
	}, rates), nil
}
