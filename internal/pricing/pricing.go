package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// PlateInput represents plate-level inputs for a takeaway or catering quote.
type PlateInput struct {
	// FoodCost is the ingredient cost of one serving.
	FoodCost     decimal.Decimal
	LaborMinutes decimal.Decimal
	Quantity     decimal.Decimal
}

// Rates represents kitchen-wide pricing parameters shared across quotes.
type Rates struct {
	LaborPerMinute  decimal.Decimal `json:"labor_per_minute"`
	OverheadFixed   decimal.Decimal `json:"overhead_fixed"`
	OverheadPercent decimal.Decimal `json:"overhead_percent"`
	WastePercent    decimal.Decimal `json:"waste_percent"`
	MarginPercent   decimal.Decimal `json:"margin_percent"`
	TaxEnabled      bool            `json:"tax_enabled"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	PackagingCost   decimal.Decimal `json:"packaging_cost"`
}

// Breakdown contains all intermediate and line-item values of a quote.
type Breakdown struct {
	FoodCost      decimal.Decimal `json:"food_cost"`
	LaborCost     decimal.Decimal `json:"labor_cost"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Overhead      decimal.Decimal `json:"overhead"`
	PackagingCost decimal.Decimal `json:"packaging_cost"`
	Margin        decimal.Decimal `json:"margin"`
	Tax           decimal.Decimal `json:"tax"`
}

// Totals contains roll-up values of a quote.
type Totals struct {
	Total    decimal.Decimal `json:"total"`
	PerPlate decimal.Decimal `json:"per_plate"`
}

// Result groups the full quote, breakdown and totals.
type Result struct {
	Breakdown Breakdown `json:"breakdown"`
	Totals    Totals    `json:"totals"`
}

func percent(p decimal.Decimal) decimal.Decimal { return p.Div(hundred) }

// Calculate prices Quantity plates. Waste inflates the food cost, margin
// applies to cost plus overhead, and tax applies after margin. Packaging is
// per quote and outside margin and tax. A non-positive quantity quotes one
// plate.
func Calculate(item PlateInput, rates Rates) Result {
	qty := item.Quantity
	if !qty.IsPositive() {
		qty = decimal.NewFromInt(1)
	}

	foodCost := item.FoodCost.Mul(decimal.NewFromInt(1).Add(percent(rates.WastePercent)))
	laborCost := item.LaborMinutes.Mul(rates.LaborPerMinute)

	subtotal := foodCost.Add(laborCost).Mul(qty)
	overhead := rates.OverheadFixed.Add(subtotal.Mul(percent(rates.OverheadPercent)))
	margin := percent(rates.MarginPercent).Mul(subtotal.Add(overhead))

	tax := decimal.Zero
	if rates.TaxEnabled {
		tax = percent(rates.TaxPercent).Mul(subtotal.Add(overhead).Add(margin))
	}

	total := subtotal.Add(overhead).Add(rates.PackagingCost).Add(margin).Add(tax)

	return Result{
		Breakdown: Breakdown{
			FoodCost:      foodCost,
			LaborCost:     laborCost,
			Subtotal:      subtotal,
			Overhead:      overhead,
			PackagingCost: rates.PackagingCost,
			Margin:        margin,
			Tax:           tax,
		},
		Totals: Totals{Total: total, PerPlate: total.Div(qty)},
	}
}
