// Package units is the read-only catalog of measurement units used for
// costing. Every unit belongs to one Dimension and carries a factor to that
// dimension's base unit (gram, milliliter, each).
package units

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Dimension is a class of physical quantity.
type Dimension int

const (
	DimensionUnknown Dimension = iota
	Mass
	Volume
	Count
)

func (d Dimension) String() string {
	switch d {
	case Mass:
		return "mass"
	case Volume:
		return "volume"
	case Count:
		return "count"
	default:
		return "unknown"
	}
}

// Unit is a catalog unit. The zero value is Unknown and never converts.
type Unit int

const (
	Unknown Unit = iota

	Milligram
	Gram
	Kilogram
	Ounce
	Pound

	Milliliter
	Liter
	Teaspoon
	Tablespoon
	FluidOunce
	Cup
	Pint
	Quart
	Gallon

	Each
	Dozen
	Serving
)

type unitDef struct {
	symbol    string
	dimension Dimension
	toBase    decimal.Decimal
}

// Factors follow the US customary definitions (1 lb = 453.59237 g,
// 1 US cup = 236.5882365 ml).
var table = map[Unit]unitDef{
	Milligram: {"mg", Mass, decimal.RequireFromString("0.001")},
	Gram:      {"g", Mass, decimal.NewFromInt(1)},
	Kilogram:  {"kg", Mass, decimal.NewFromInt(1000)},
	Ounce:     {"oz", Mass, decimal.RequireFromString("28.349523125")},
	Pound:     {"lb", Mass, decimal.RequireFromString("453.59237")},

	Milliliter: {"ml", Volume, decimal.NewFromInt(1)},
	Liter:      {"l", Volume, decimal.NewFromInt(1000)},
	Teaspoon:   {"tsp", Volume, decimal.RequireFromString("4.92892159375")},
	Tablespoon: {"tbsp", Volume, decimal.RequireFromString("14.78676478125")},
	FluidOunce: {"floz", Volume, decimal.RequireFromString("29.5735295625")},
	Cup:        {"cup", Volume, decimal.RequireFromString("236.5882365")},
	Pint:       {"pt", Volume, decimal.RequireFromString("473.176473")},
	Quart:      {"qt", Volume, decimal.RequireFromString("946.352946")},
	Gallon:     {"gal", Volume, decimal.RequireFromString("3785.411784")},

	Each:    {"ea", Count, decimal.NewFromInt(1)},
	Dozen:   {"dz", Count, decimal.NewFromInt(12)},
	Serving: {"serving", Count, decimal.NewFromInt(1)},
}

var aliases = map[string]Unit{
	"milligram": Milligram, "milligrams": Milligram,
	"gram": Gram, "grams": Gram, "gr": Gram,
	"kilogram": Kilogram, "kilograms": Kilogram, "kilo": Kilogram, "kgs": Kilogram,
	"ounce": Ounce, "ounces": Ounce,
	"pound": Pound, "pounds": Pound, "lbs": Pound,

	"milliliter": Milliliter, "milliliters": Milliliter, "millilitre": Milliliter, "mls": Milliliter,
	"liter": Liter, "liters": Liter, "litre": Liter, "litres": Liter,
	"teaspoon": Teaspoon, "teaspoons": Teaspoon, "t": Teaspoon,
	"tablespoon": Tablespoon, "tablespoons": Tablespoon, "tbs": Tablespoon, "tbl": Tablespoon,
	"fl oz": FluidOunce, "fl-oz": FluidOunce, "fluid ounce": FluidOunce, "fluid ounces": FluidOunce,
	"cups": Cup, "c": Cup,
	"pint": Pint, "pints": Pint,
	"quart": Quart, "quarts": Quart,
	"gallon": Gallon, "gallons": Gallon,

	"each": Each, "pc": Each, "pcs": Each, "piece": Each, "pieces": Each, "unit": Each, "units": Each,
	"dozen": Dozen, "doz": Dozen,
	"servings": Serving, "portion": Serving, "portions": Serving,
}

func init() {
	for u, def := range table {
		aliases[def.symbol] = u
	}
}

// All returns every catalog unit in declaration order.
func All() []Unit {
	out := make([]Unit, 0, len(table))
	for u := Milligram; u <= Serving; u++ {
		out = append(out, u)
	}
	return out
}

// InDimension returns the catalog units of d in declaration order.
func InDimension(d Dimension) []Unit {
	var out []Unit
	for _, u := range All() {
		if table[u].dimension == d {
			out = append(out, u)
		}
	}
	return out
}

// DimensionOf returns the dimension of u, DimensionUnknown for Unknown.
func DimensionOf(u Unit) Dimension {
	return table[u].dimension
}

// BaseFactor returns how many base units one u is worth.
// Unknown yields zero.
func BaseFactor(u Unit) decimal.Decimal {
	return table[u].toBase
}

// Valid reports whether u is a catalog unit.
func (u Unit) Valid() bool {
	_, ok := table[u]
	return ok
}

func (u Unit) Dimension() Dimension { return DimensionOf(u) }

func (u Unit) String() string {
	if def, ok := table[u]; ok {
		return def.symbol
	}
	return "unknown"
}

// Parse resolves a symbol or common spelling to a Unit.
func Parse(s string) (Unit, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimSuffix(key, ".")
	if u, ok := aliases[key]; ok {
		return u, nil
	}
	return Unknown, fmt.Errorf("unknown unit %q", s)
}

func (u Unit) MarshalText() ([]byte, error) {
	if !u.Valid() {
		return nil, fmt.Errorf("marshal unit: invalid unit %d", int(u))
	}
	return []byte(u.String()), nil
}

func (u *Unit) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

func (u Unit) MarshalJSON() ([]byte, error) {
	b, err := u.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(b))
}

func (u *Unit) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("unit must be a string: %w", err)
	}
	return u.UnmarshalText([]byte(s))
}

// Scan implements sql.Scanner over the unit symbol.
func (u *Unit) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return u.UnmarshalText([]byte(v))
	case []byte:
		return u.UnmarshalText(v)
	default:
		return fmt.Errorf("scan unit: unsupported source %T", src)
	}
}

// Value implements driver.Valuer.
func (u Unit) Value() (driver.Value, error) {
	if !u.Valid() {
		return nil, fmt.Errorf("store unit: invalid unit %d", int(u))
	}
	return u.String(), nil
}
