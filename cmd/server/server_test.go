package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Simplici0/menucost/internal/config"
	"github.com/Simplici0/menucost/internal/db"
	"github.com/Simplici0/menucost/internal/logger"
	"github.com/Simplici0/menucost/internal/migrations"
	"github.com/Simplici0/menucost/internal/service"
	"github.com/Simplici0/menucost/internal/store"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	database, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "server-test.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	if err := migrations.Up(database); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	log := logger.Discard()
	svc := service.New(store.New(database, log), config.DefaultSettings(), log)
	return newServer(svc, log).routes()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, out
}

func mustCreate(t *testing.T, h http.Handler, path string, body any) string {
	t.Helper()
	code, out := doJSON(t, h, http.MethodPost, path, body)
	if code != http.StatusCreated {
		t.Fatalf("POST %s: expected 201, got %d: %v", path, code, out)
	}
	id, _ := out["id"].(string)
	if id == "" {
		t.Fatalf("POST %s: missing id in %v", path, out)
	}
	return id
}

// menu creates tomatoes at $2/lb, flour at $1/lb, a four-serving marinara
// and an $18 spaghetti.
func menu(t *testing.T, h http.Handler) (flour, marinara, spaghetti string) {
	t.Helper()

	flour = mustCreate(t, h, "/ingredients", map[string]any{
		"name": "Flour", "unit_price": "50", "priced_quantity": "50", "priced_unit": "lb",
	})
	tomatoes := mustCreate(t, h, "/ingredients", map[string]any{
		"name": "Tomatoes", "unit_price": "20", "priced_quantity": "10", "priced_unit": "lb",
	})
	marinara = mustCreate(t, h, "/recipes", map[string]any{
		"name": "Marinara", "yield_amount": "4", "yield_unit": "serving",
		"components": []map[string]any{{"ingredient_id": tomatoes, "quantity": "4", "unit": "lb"}},
	})
	spaghetti = mustCreate(t, h, "/entrees", map[string]any{
		"name": "Spaghetti Marinara", "menu_price": "18", "servings": "1",
		"components": []map[string]any{
			{"recipe_id": marinara, "quantity": "1", "unit": "serving"},
			{"ingredient_id": flour, "quantity": "4", "unit": "oz"},
		},
	})
	return flour, marinara, spaghetti
}

func TestEntreeCostEndpoint(t *testing.T) {
	h := newTestHandler(t)
	_, _, spaghetti := menu(t, h)

	code, out := doJSON(t, h, http.MethodGet, "/entrees/"+spaghetti+"/cost", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", code, out)
	}
	if out["total_cost"] != "2.25" || out["food_cost_percent"] != "12.5" || out["band"] != "excellent" {
		t.Fatalf("unexpected entree cost: %v", out)
	}
	if out["suggested_price"] != "7.5" {
		t.Fatalf("expected suggested price 7.5, got %v", out["suggested_price"])
	}
	lines, _ := out["lines"].([]any)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %v", out["lines"])
	}
}

func TestRecipeCostEndpoint(t *testing.T) {
	h := newTestHandler(t)
	_, marinara, _ := menu(t, h)

	code, out := doJSON(t, h, http.MethodGet, "/recipes/"+marinara+"/cost", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", code, out)
	}
	if out["total_cost"] != "8" || out["cost_per_yield_unit"] != "2" {
		t.Fatalf("unexpected recipe cost: %v", out)
	}

	code, _ = doJSON(t, h, http.MethodGet, "/recipes/missing/cost", nil)
	if code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown recipe, got %d", code)
	}
}

func TestCreateIngredientValidation(t *testing.T) {
	h := newTestHandler(t)

	code, out := doJSON(t, h, http.MethodPost, "/ingredients", map[string]any{
		"name": "Salt", "unit_price": "1", "priced_quantity": "0", "priced_unit": "g",
	})
	if code != http.StatusBadRequest || out["field"] != "priced_quantity" {
		t.Fatalf("expected 400 on priced_quantity, got %d: %v", code, out)
	}

	code, _ = doJSON(t, h, http.MethodPost, "/ingredients", map[string]any{
		"name": "Salt", "unit_price": "1", "priced_quantity": "1", "priced_unit": "smidgen",
	})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown unit, got %d", code)
	}
}

func TestUpdateRecipeCycleIsUnprocessable(t *testing.T) {
	h := newTestHandler(t)
	_, marinara, _ := menu(t, h)

	base := mustCreate(t, h, "/recipes", map[string]any{
		"name": "Sauce Base", "yield_amount": "1", "yield_unit": "serving",
		"components": []map[string]any{{"recipe_id": marinara, "quantity": "1", "unit": "serving"}},
	})

	code, out := doJSON(t, h, http.MethodPut, "/recipes/"+marinara, map[string]any{
		"name": "Marinara", "yield_amount": "4", "yield_unit": "serving",
		"components": []map[string]any{{"recipe_id": base, "quantity": "1", "unit": "serving"}},
	})
	if code != http.StatusUnprocessableEntity || out["kind"] != "cyclic_composition" {
		t.Fatalf("expected 422 cyclic_composition, got %d: %v", code, out)
	}
}

func TestConvertEndpoint(t *testing.T) {
	h := newTestHandler(t)

	code, out := doJSON(t, h, http.MethodGet, "/convert?qty=2&from=lb&to=oz", nil)
	if code != http.StatusOK || out["value"] != "32" {
		t.Fatalf("expected 32 oz, got %d: %v", code, out)
	}

	code, out = doJSON(t, h, http.MethodGet, "/convert?qty=1&from=cup&to=g", nil)
	if code != http.StatusUnprocessableEntity || out["kind"] != "incompatible_units" {
		t.Fatalf("expected 422 incompatible_units, got %d: %v", code, out)
	}
	pair, _ := out["conversion"].(map[string]any)
	if pair["from"] != "cup" || pair["to"] != "g" {
		t.Fatalf("expected cup->g pair, got %v", out["conversion"])
	}

	code, _ = doJSON(t, h, http.MethodGet, "/convert?qty=-1&from=lb&to=oz", nil)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative qty, got %d", code)
	}
}

func TestFoodCostReportIncludesFailures(t *testing.T) {
	h := newTestHandler(t)
	flour, _, _ := menu(t, h)

	mustCreate(t, h, "/entrees", map[string]any{
		"name": "Bread Basket", "menu_price": "6", "servings": "1",
		"components": []map[string]any{{"ingredient_id": flour, "quantity": "2", "unit": "ea"}},
	})

	code, out := doJSON(t, h, http.MethodGet, "/reports/food-cost", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", code, out)
	}
	rows, _ := out["entrees"].([]any)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %v", out["entrees"])
	}
	first, _ := rows[0].(map[string]any)
	errBody, _ := first["error"].(map[string]any)
	if first["name"] != "Bread Basket" || errBody["kind"] != "unit_mismatch" {
		t.Fatalf("expected bread basket unit mismatch, got %v", first)
	}
	second, _ := rows[1].(map[string]any)
	if second["cost"] == nil {
		t.Fatalf("expected spaghetti cost, got %v", second)
	}
}

func TestQuoteEndpoint(t *testing.T) {
	h := newTestHandler(t)
	_, _, spaghetti := menu(t, h)

	code, out := doJSON(t, h, http.MethodPost, "/entrees/"+spaghetti+"/quote", map[string]any{
		"plates": "4", "labor_minutes": "0", "rates": map[string]any{"margin_percent": "100"},
	})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", code, out)
	}
	totals, _ := out["totals"].(map[string]any)
	if totals["total"] != "18" {
		t.Fatalf("expected total 18, got %v", out)
	}
}

func TestDeleteIngredientInUseConflicts(t *testing.T) {
	h := newTestHandler(t)
	flour, _, _ := menu(t, h)

	code, _ := doJSON(t, h, http.MethodDelete, "/ingredients/"+flour, nil)
	if code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", code)
	}
}

func TestCreateDuplicateNameConflicts(t *testing.T) {
	h := newTestHandler(t)
	menu(t, h)

	code, out := doJSON(t, h, http.MethodPost, "/ingredients", map[string]any{
		"name": "Flour", "unit_price": "10", "priced_quantity": "5", "priced_unit": "lb",
	})
	if code != http.StatusConflict {
		t.Fatalf("expected 409 for a second Flour, got %d: %v", code, out)
	}

	code, out = doJSON(t, h, http.MethodPost, "/recipes", map[string]any{
		"name": "Marinara", "yield_amount": "1", "yield_unit": "serving",
	})
	if code != http.StatusConflict {
		t.Fatalf("expected 409 for a second Marinara, got %d: %v", code, out)
	}
}

func TestEntreeCostNestedFailureNamesOuterLine(t *testing.T) {
	h := newTestHandler(t)
	flour, _, _ := menu(t, h)

	roux := mustCreate(t, h, "/recipes", map[string]any{
		"name": "Roux", "yield_amount": "1", "yield_unit": "cup",
		"components": []map[string]any{{"ingredient_id": flour, "quantity": "1", "unit": "cup"}},
	})
	gumbo := mustCreate(t, h, "/entrees", map[string]any{
		"name": "Gumbo", "menu_price": "20", "servings": "1",
		"components": []map[string]any{
			{"ingredient_id": flour, "quantity": "1", "unit": "lb"},
			{"recipe_id": roux, "quantity": "1", "unit": "cup"},
		},
	})

	code, out := doJSON(t, h, http.MethodGet, "/entrees/"+gumbo+"/cost", nil)
	if code != http.StatusUnprocessableEntity || out["kind"] != "unit_mismatch" || out["owner"] != roux {
		t.Fatalf("expected 422 unit_mismatch owned by roux, got %d: %v", code, out)
	}
	via, _ := out["via"].([]any)
	if len(via) != 1 {
		t.Fatalf("expected one outer line, got %v", out["via"])
	}
	step, _ := via[0].(map[string]any)
	if step["owner"] != gumbo || step["index"] != float64(1) {
		t.Fatalf("expected gumbo line 1, got %v", step)
	}
}

func TestEntreeCostWithoutPriceWarns(t *testing.T) {
	h := newTestHandler(t)
	flour, _, _ := menu(t, h)

	special := mustCreate(t, h, "/entrees", map[string]any{
		"name": "Staff Meal", "servings": "2",
		"components": []map[string]any{{"ingredient_id": flour, "quantity": "2", "unit": "lb"}},
	})

	code, out := doJSON(t, h, http.MethodGet, "/entrees/"+special+"/cost", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", code, out)
	}
	if out["cost_per_serving"] != "1" || out["warning"] != "no menu price" || out["food_cost_percent"] != nil {
		t.Fatalf("expected partial analysis with warning, got %v", out)
	}
}
