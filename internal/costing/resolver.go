package costing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/menucost/internal/units"
)

// Resolve expresses q of unit from in unit to, using ing's conversion data
// where the catalog alone cannot. ing may be nil for catalog-only conversion.
//
// Precedence, first match wins: identity, ingredient custom pair, derived
// pair, same-dimension catalog factor, custom or derived factor bridged
// through the catalog, density. Anything else is a *ConversionError.
func Resolve(ing *Ingredient, q decimal.Decimal, from, to units.Unit) (decimal.Decimal, error) {
	if from == to && from.Valid() {
		return q, nil
	}
	if !from.Valid() || !to.Valid() {
		return decimal.Zero, &ConversionError{From: from, To: to}
	}

	var custom, derived map[Pair]decimal.Decimal
	if ing != nil {
		custom, derived = ing.Custom, ing.Derived
	}

	if v, ok := applyPair(custom, q, from, to); ok {
		return v, nil
	}
	if v, ok := applyPair(derived, q, from, to); ok {
		return v, nil
	}

	if units.DimensionOf(from) == units.DimensionOf(to) {
		return catalogConvert(q, from, to), nil
	}

	if v, ok := bridge(custom, q, from, to); ok {
		return v, nil
	}
	if v, ok := bridge(derived, q, from, to); ok {
		return v, nil
	}

	if ing != nil {
		if v, ok := throughDensity(ing.DensityFactor, q, from, to); ok {
			return v, nil
		}
	}

	return decimal.Zero, &ConversionError{From: from, To: to}
}

func catalogConvert(q decimal.Decimal, from, to units.Unit) decimal.Decimal {
	return q.Mul(units.BaseFactor(from)).Div(units.BaseFactor(to))
}

// applyPair uses a factor stored for (from,to) directly or (to,from) inverted.
func applyPair(table map[Pair]decimal.Decimal, q decimal.Decimal, from, to units.Unit) (decimal.Decimal, bool) {
	if f, ok := table[Pair{From: from, To: to}]; ok && f.IsPositive() {
		return q.Mul(f), true
	}
	if f, ok := table[Pair{From: to, To: from}]; ok && f.IsPositive() {
		return q.Div(f), true
	}
	return decimal.Zero, false
}

// bridge combines one stored factor with catalog factors on either side, so a
// "1 cup = 120 g" entry also answers tbsp to lb.
func bridge(table map[Pair]decimal.Decimal, q decimal.Decimal, from, to units.Unit) (decimal.Decimal, bool) {
	if len(table) == 0 {
		return decimal.Zero, false
	}
	fromDim, toDim := units.DimensionOf(from), units.DimensionOf(to)

	for _, p := range sortedPairs(table) {
		f := table[p]
		if !f.IsPositive() {
			continue
		}
		switch {
		case units.DimensionOf(p.From) == fromDim && units.DimensionOf(p.To) == toDim:
			mid := catalogConvert(q, from, p.From).Mul(f)
			return catalogConvert(mid, p.To, to), true
		case units.DimensionOf(p.To) == fromDim && units.DimensionOf(p.From) == toDim:
			mid := catalogConvert(q, from, p.To).Div(f)
			return catalogConvert(mid, p.From, to), true
		}
	}
	return decimal.Zero, false
}

// sortedPairs orders pairs so bridging never depends on map iteration order.
func sortedPairs(table map[Pair]decimal.Decimal) []Pair {
	pairs := make([]Pair, 0, len(table))
	for p := range table {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].From != pairs[j].From {
			return pairs[i].From < pairs[j].From
		}
		return pairs[i].To < pairs[j].To
	})
	return pairs
}

// throughDensity converts between mass and volume with a g/ml density.
func throughDensity(density *decimal.Decimal, q decimal.Decimal, from, to units.Unit) (decimal.Decimal, bool) {
	if density == nil || !density.IsPositive() {
		return decimal.Zero, false
	}
	fromDim, toDim := units.DimensionOf(from), units.DimensionOf(to)

	switch {
	case fromDim == units.Mass && toDim == units.Volume:
		grams := q.Mul(units.BaseFactor(from))
		ml := grams.Div(*density)
		return ml.Div(units.BaseFactor(to)), true
	case fromDim == units.Volume && toDim == units.Mass:
		ml := q.Mul(units.BaseFactor(from))
		grams := ml.Mul(*density)
		return grams.Div(units.BaseFactor(to)), true
	}
	return decimal.Zero, false
}
