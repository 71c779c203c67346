package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/menucost/internal/costing"
	"github.com/Simplici0/menucost/internal/pricing"
	"github.com/Simplici0/menucost/internal/service"
	"github.com/Simplici0/menucost/internal/units"
)

type lineJSON struct {
	Index    int             `json:"index"`
	Kind     string          `json:"kind"`
	Ref      string          `json:"ref"`
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     units.Unit      `json:"unit"`
	Cost     decimal.Decimal `json:"cost"`
}

type recipeCostJSON struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	YieldAmount  decimal.Decimal `json:"yield_amount"`
	YieldUnit    string          `json:"yield_unit"`
	Lines        []lineJSON      `json:"lines"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	PerYieldUnit decimal.Decimal `json:"cost_per_yield_unit"`
}

type entreeCostJSON struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Servings        decimal.Decimal  `json:"servings"`
	Lines           []lineJSON       `json:"lines"`
	TotalCost       decimal.Decimal  `json:"total_cost"`
	CostPerServing  decimal.Decimal  `json:"cost_per_serving"`
	MenuPrice       *decimal.Decimal `json:"menu_price,omitempty"`
	FoodCostPercent *decimal.Decimal `json:"food_cost_percent,omitempty"`
	GrossProfit     *decimal.Decimal `json:"gross_profit,omitempty"`
	MarginPercent   *decimal.Decimal `json:"margin_percent,omitempty"`
	Band            string           `json:"band,omitempty"`
	SuggestedPrice  *decimal.Decimal `json:"suggested_price,omitempty"`
	Warning         string           `json:"warning,omitempty"`
}

type reportRowJSON struct {
	EntreeID string          `json:"entree_id"`
	Name     string          `json:"name"`
	Cost     *entreeCostJSON `json:"cost,omitempty"`
	Error    *errorResponse  `json:"error,omitempty"`
}

type quoteRequest struct {
	Plates       decimal.Decimal `json:"plates"`
	LaborMinutes decimal.Decimal `json:"labor_minutes"`
	Rates        pricing.Rates   `json:"rates"`
}

func toLines(lines []costing.LineCost) []lineJSON {
	out := make([]lineJSON, 0, len(lines))
	for _, l := range lines {
		out = append(out, lineJSON{
			Index:    l.Index,
			Kind:     l.Kind,
			Ref:      l.Ref,
			Name:     l.Name,
			Quantity: l.Quantity,
			Unit:     l.Unit,
			Cost:     l.Cost,
		})
	}
	return out
}

func toEntreeCost(c service.EntreeCost) *entreeCostJSON {
	a := c.Analysis
	out := &entreeCostJSON{
		ID:              c.ID,
		Name:            c.Name,
		Servings:        c.Servings,
		Lines:           toLines(c.Lines),
		TotalCost:       a.TotalCost,
		CostPerServing:  a.CostPerServing,
		MenuPrice:       a.MenuPrice,
		FoodCostPercent: round(a.FoodCostPercent),
		GrossProfit:     a.GrossProfit,
		MarginPercent:   round(a.MarginPercent),
		Band:            string(a.Band),
		SuggestedPrice:  round(c.SuggestedPrice),
	}
	if c.MetricErr != nil {
		out.Warning = c.MetricErr.Error()
	}
	return out
}

// round presents percentages and prices to two places.
func round(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	r := d.Round(2)
	return &r
}

func (s *server) handleRecipeCost(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.RecipeCost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipeCostJSON{
		ID:           c.ID,
		Name:         c.Name,
		YieldAmount:  c.YieldAmount,
		YieldUnit:    c.YieldUnit,
		Lines:        toLines(c.Lines),
		TotalCost:    c.Total,
		PerYieldUnit: c.PerYieldUnit,
	})
}

func (s *server) handleEntreeCost(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.EntreeCost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntreeCost(c))
}

func (s *server) handleEntreeQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.Plates.IsNegative() || req.LaborMinutes.IsNegative() {
		badRequest(w, "plates and labor_minutes must not be negative")
		return
	}
	result, err := s.svc.Quote(r.Context(), chi.URLParam(r, "id"), req.Plates, req.LaborMinutes, req.Rates)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleFoodCostReport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.FoodCostReport(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]reportRowJSON, 0, len(rows))
	for _, row := range rows {
		item := reportRowJSON{EntreeID: row.EntreeID, Name: row.Name}
		if row.Err != nil {
			_, body := describeError(row.Err)
			item.Error = &body
		} else {
			item.Cost = toEntreeCost(row.Cost)
		}
		out = append(out, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"thresholds": s.svc.Settings().Thresholds,
		"entrees":    out,
	})
}

func (s *server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	qty, err := parsePositiveDecimal(q.Get("qty"), "qty")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	from, err := units.Parse(q.Get("from"))
	if err != nil {
		badRequest(w, "from: "+err.Error())
		return
	}
	to, err := units.Parse(q.Get("to"))
	if err != nil {
		badRequest(w, "to: "+err.Error())
		return
	}

	value, err := s.svc.Convert(r.Context(), q.Get("ingredient"), qty, from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"quantity": qty,
		"from":     from,
		"to":       to,
		"value":    value,
	})
}
