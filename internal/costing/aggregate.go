package costing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/menucost/internal/units"
)

var errNonPositiveQuantity = errors.New("quantity must be positive")

// LineCost is the cost of one component line.
type LineCost struct {
	Index    int
	Ref      string
	Name     string
	Kind     string
	Quantity decimal.Decimal
	Unit     units.Unit
	Cost     decimal.Decimal
}

// TotalCost sums the cost of every component of c, recursing into
// sub-recipes. The first failing line aborts the fold and is reported with
// its owner and index; a recipe reached again on the current path is a
// cyclic composition.
func TotalCost(c Composite) (decimal.Decimal, error) {
	w := newWalker()
	return w.total(c)
}

// Breakdown is TotalCost with the per-line costs of c's own components.
func Breakdown(c Composite) ([]LineCost, decimal.Decimal, error) {
	w := newWalker()
	var lines []LineCost
	total, err := w.fold(c, func(l LineCost) { lines = append(lines, l) })
	if err != nil {
		return nil, decimal.Zero, err
	}
	return lines, total, nil
}

type walker struct {
	path map[string]bool
}

func newWalker() *walker {
	return &walker{path: make(map[string]bool)}
}

func (w *walker) total(c Composite) (decimal.Decimal, error) {
	return w.fold(c, nil)
}

func (w *walker) fold(c Composite, emit func(LineCost)) (decimal.Decimal, error) {
	if isNil(c) {
		return decimal.Zero, &CostError{Kind: KindInvalidComponent, Index: -1, Err: errors.New("nothing to cost")}
	}
	owner := c.Identity()

	if _, ok := c.(*Recipe); ok {
		if w.path[owner] {
			return decimal.Zero, &CostError{Kind: KindCyclicComposition, Owner: owner, Index: -1, Ref: owner}
		}
		w.path[owner] = true
		defer delete(w.path, owner)
	}

	sum := decimal.Zero
	for i, comp := range c.Parts() {
		line, err := w.line(comp)
		if err != nil {
			return decimal.Zero, attribute(err, owner, i, refOf(comp))
		}
		line.Index = i
		if emit != nil {
			emit(line)
		}
		sum = sum.Add(line.Cost)
	}
	return sum, nil
}

func (w *walker) line(comp Component) (LineCost, error) {
	switch c := comp.(type) {
	case IngredientUse:
		if c.Ingredient == nil {
			return LineCost{}, &CostError{Kind: KindInvalidComponent, Index: -1, Err: errors.New("unresolved ingredient")}
		}
		if !c.Quantity.IsPositive() {
			return LineCost{}, &CostError{Kind: KindInvalidComponent, Index: -1, Err: errNonPositiveQuantity}
		}
		cost, err := CostOfIngredient(c.Ingredient, c.Quantity, c.Unit)
		if err != nil {
			return LineCost{}, err
		}
		return LineCost{Ref: c.Ingredient.ID, Name: c.Ingredient.Name, Kind: "ingredient", Quantity: c.Quantity, Unit: c.Unit, Cost: cost}, nil

	case SubRecipeUse:
		if c.Recipe == nil {
			return LineCost{}, &CostError{Kind: KindInvalidComponent, Index: -1, Err: errors.New("unresolved sub-recipe")}
		}
		if !c.Quantity.IsPositive() {
			return LineCost{}, &CostError{Kind: KindInvalidComponent, Index: -1, Err: errNonPositiveQuantity}
		}
		if w.path[c.Recipe.ID] {
			return LineCost{}, &CostError{
				Kind:  KindCyclicComposition,
				Index: -1,
				Err:   fmt.Errorf("recipe %q already on the composition path", c.Recipe.Name),
			}
		}
		subTotal, err := w.total(c.Recipe)
		if err != nil {
			return LineCost{}, err
		}
		cost, err := subRecipeCost(c.Recipe, subTotal, c.Quantity, c.Unit)
		if err != nil {
			return LineCost{}, err
		}
		return LineCost{Ref: c.Recipe.ID, Name: c.Recipe.Name, Kind: "recipe", Quantity: c.Quantity, Unit: c.Unit, Cost: cost}, nil

	default:
		return LineCost{}, &CostError{Kind: KindInvalidComponent, Index: -1, Err: fmt.Errorf("unsupported component %T", comp)}
	}
}

func refOf(c Component) string {
	if c == nil {
		return ""
	}
	return c.RefID()
}

func isNil(c Composite) bool {
	switch v := c.(type) {
	case nil:
		return true
	case *Recipe:
		return v == nil
	case *Entree:
		return v == nil
	}
	return false
}
