package costing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/menucost/internal/units"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func nearlyEqual(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if got.Sub(want).Abs().GreaterThan(dec("0.000000001")) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

func exactlyEqual(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

func TestResolve_IdentityForEveryUnit(t *testing.T) {
	q := dec("3.1415")
	ing := &Ingredient{ID: "x", Custom: map[Pair]decimal.Decimal{{From: units.Cup, To: units.Gram}: dec("120")}}
	for _, u := range units.All() {
		got, err := Resolve(ing, q, u, u)
		if err != nil {
			t.Fatalf("resolve %s->%s: %v", u, u, err)
		}
		exactlyEqual(t, u.String(), got, q)
	}
}

func TestResolve_RoundTripSameDimension(t *testing.T) {
	tests := []struct {
		a, b units.Unit
	}{
		{units.Pound, units.Ounce},
		{units.Cup, units.Teaspoon},
		{units.Liter, units.Gallon},
		{units.Kilogram, units.Milligram},
		{units.Dozen, units.Each},
	}
	for _, tt := range tests {
		t.Run(tt.a.String()+"-"+tt.b.String(), func(t *testing.T) {
			q := dec("1.75")
			mid, err := Resolve(nil, q, tt.a, tt.b)
			if err != nil {
				t.Fatalf("forward: %v", err)
			}
			back, err := Resolve(nil, mid, tt.b, tt.a)
			if err != nil {
				t.Fatalf("back: %v", err)
			}
			nearlyEqual(t, "round trip", back, q)
		})
	}
}

func TestResolve_PoundToOunce(t *testing.T) {
	got, err := Resolve(nil, dec("1"), units.Pound, units.Ounce)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	exactlyEqual(t, "1 lb in oz", got, dec("16"))
}

func TestResolve_CustomBeatsCatalogAndDensity(t *testing.T) {
	ing := &Ingredient{
		ID:            "flour",
		DensityFactor: decPtr("0.5"),
		Custom: map[Pair]decimal.Decimal{
			{From: units.Cup, To: units.Gram}:   dec("120"),
			{From: units.Ounce, To: units.Gram}: dec("30"),
		},
	}

	got, err := Resolve(ing, dec("1"), units.Cup, units.Gram)
	if err != nil {
		t.Fatalf("cup->g: %v", err)
	}
	exactlyEqual(t, "cup->g", got, dec("120"))

	got, err = Resolve(ing, dec("2"), units.Ounce, units.Gram)
	if err != nil {
		t.Fatalf("oz->g: %v", err)
	}
	exactlyEqual(t, "oz->g", got, dec("60"))
}

func TestResolve_CustomBeatsDerived(t *testing.T) {
	pair := Pair{From: units.Cup, To: units.Gram}
	ing := &Ingredient{
		Custom:  map[Pair]decimal.Decimal{pair: dec("120")},
		Derived: map[Pair]decimal.Decimal{pair: dec("125")},
	}
	got, err := Resolve(ing, dec("1"), units.Cup, units.Gram)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	exactlyEqual(t, "custom", got, dec("120"))

	ing.Custom = nil
	got, err = Resolve(ing, dec("1"), units.Cup, units.Gram)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	exactlyEqual(t, "derived", got, dec("125"))
}

func TestResolve_ReversePairDivides(t *testing.T) {
	ing := &Ingredient{Custom: map[Pair]decimal.Decimal{{From: units.Cup, To: units.Gram}: dec("120")}}
	got, err := Resolve(ing, dec("240"), units.Gram, units.Cup)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	exactlyEqual(t, "g->cup", got, dec("2"))
}

func TestResolve_BridgesStoredFactorThroughCatalog(t *testing.T) {
	ing := &Ingredient{Custom: map[Pair]decimal.Decimal{{From: units.Cup, To: units.Gram}: dec("120")}}
	got, err := Resolve(ing, dec("1"), units.Cup, units.Pound)
	if err != nil {
		t.Fatalf("cup->lb: %v", err)
	}
	nearlyEqual(t, "cup->lb", got, dec("120").Div(units.BaseFactor(units.Pound)))

	egg := &Ingredient{Custom: map[Pair]decimal.Decimal{{From: units.Each, To: units.Gram}: dec("50")}}
	got, err = Resolve(egg, dec("1"), units.Dozen, units.Gram)
	if err != nil {
		t.Fatalf("dz->g: %v", err)
	}
	exactlyEqual(t, "dz->g", got, dec("600"))

	got, err = Resolve(egg, dec("150"), units.Gram, units.Each)
	if err != nil {
		t.Fatalf("g->ea: %v", err)
	}
	exactlyEqual(t, "g->ea", got, dec("3"))
}

func TestResolve_DensityBridgesMassAndVolume(t *testing.T) {
	oil := &Ingredient{DensityFactor: decPtr("0.92")}

	got, err := Resolve(oil, dec("100"), units.Milliliter, units.Gram)
	if err != nil {
		t.Fatalf("ml->g: %v", err)
	}
	exactlyEqual(t, "ml->g", got, dec("92"))

	got, err = Resolve(oil, dec("92"), units.Gram, units.Milliliter)
	if err != nil {
		t.Fatalf("g->ml: %v", err)
	}
	exactlyEqual(t, "g->ml", got, dec("100"))
}

func TestResolve_IncompatibleIsExplicit(t *testing.T) {
	tests := []struct {
		name     string
		ing      *Ingredient
		from, to units.Unit
	}{
		{"mass to volume without density", &Ingredient{}, units.Gram, units.Milliliter},
		{"volume to mass without density", &Ingredient{}, units.Cup, units.Pound},
		{"count to mass", &Ingredient{DensityFactor: decPtr("1")}, units.Each, units.Gram},
		{"nil ingredient", nil, units.Cup, units.Gram},
		{"zero density", &Ingredient{DensityFactor: decPtr("0")}, units.Gram, units.Milliliter},
		{"unknown unit", &Ingredient{}, units.Unknown, units.Gram},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.ing, dec("1"), tt.from, tt.to)
			if err == nil {
				t.Fatalf("expected error, got %s", got)
			}
			if !errors.Is(err, ErrIncompatibleUnits) {
				t.Fatalf("expected ErrIncompatibleUnits, got %v", err)
			}
			var ce *ConversionError
			if !errors.As(err, &ce) || ce.From != tt.from || ce.To != tt.to {
				t.Fatalf("unexpected conversion error: %#v", err)
			}
		})
	}
}
