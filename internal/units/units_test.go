package units

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCatalogCoversEveryUnit(t *testing.T) {
	for _, u := range All() {
		if DimensionOf(u) == DimensionUnknown {
			t.Fatalf("%s has no dimension", u)
		}
		if !BaseFactor(u).IsPositive() {
			t.Fatalf("%s base factor = %s, want > 0", u, BaseFactor(u))
		}
	}
	if DimensionOf(Unknown) != DimensionUnknown {
		t.Fatalf("Unknown must not have a dimension")
	}
}

func TestBaseUnitsHaveFactorOne(t *testing.T) {
	one := decimal.NewFromInt(1)
	for _, u := range []Unit{Gram, Milliliter, Each} {
		if !BaseFactor(u).Equal(one) {
			t.Fatalf("%s base factor = %s, want 1", u, BaseFactor(u))
		}
	}
}

func TestPoundIsSixteenOunces(t *testing.T) {
	got := BaseFactor(Pound).Div(BaseFactor(Ounce))
	if !got.Equal(decimal.NewFromInt(16)) {
		t.Fatalf("lb/oz = %s, want 16", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Unit
	}{
		{"lb", Pound},
		{"Pounds", Pound},
		{" oz ", Ounce},
		{"cup", Cup},
		{"Tbsp.", Tablespoon},
		{"fl oz", FluidOunce},
		{"each", Each},
		{"servings", Serving},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("parse %q: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("parse %q = %s, want %s", tt.in, got, tt.want)
			}
		})
	}

	if _, err := Parse("pan"); err == nil {
		t.Fatalf("expected error for freeform unit")
	}
}

func TestUnitJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		U Unit `json:"u"`
	}{Tablespoon})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"u":"tbsp"}` {
		t.Fatalf("marshal = %s", b)
	}

	var got struct {
		U Unit `json:"u"`
	}
	if err := json.Unmarshal([]byte(`{"u":"kilograms"}`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.U != Kilogram {
		t.Fatalf("unmarshal = %s, want kg", got.U)
	}

	if _, err := json.Marshal(Unknown); err == nil {
		t.Fatalf("expected error marshaling Unknown")
	}
}

func TestInDimension(t *testing.T) {
	for _, u := range InDimension(Volume) {
		if u.Dimension() != Volume {
			t.Fatalf("%s listed as volume", u)
		}
	}
	if len(InDimension(Count)) != 3 {
		t.Fatalf("count units = %v", InDimension(Count))
	}
}
