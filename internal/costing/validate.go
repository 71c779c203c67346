package costing

import (
	"errors"
	"strings"
)

// ValidateComponents checks every line of c for a resolved reference, a
// catalog unit and a strictly positive quantity.
func ValidateComponents(c Composite) error {
	if isNil(c) {
		return &CostError{Kind: KindInvalidComponent, Index: -1, Err: errors.New("nothing to validate")}
	}
	for i, comp := range c.Parts() {
		if err := validateLine(comp); err != nil {
			return &CostError{Kind: KindInvalidComponent, Owner: c.Identity(), Index: i, Ref: refOf(comp), Err: err}
		}
	}
	return nil
}

func validateLine(comp Component) error {
	if comp == nil {
		return errors.New("empty component")
	}
	if comp.RefID() == "" {
		return errors.New("unresolved reference")
	}
	q, u := comp.Amount()
	if !u.Valid() {
		return errors.New("unknown unit")
	}
	if !q.IsPositive() {
		return errNonPositiveQuantity
	}
	return nil
}

// ValidateAcyclic rejects r if it reaches itself, directly or through any
// chain of sub-recipes. The error names the offending path.
func ValidateAcyclic(r *Recipe) error {
	if r == nil {
		return nil
	}
	var path []*Recipe
	onPath := make(map[string]bool)
	done := make(map[string]bool)

	var visit func(cur *Recipe) error
	visit = func(cur *Recipe) error {
		if onPath[cur.ID] {
			return cycleError(path, cur)
		}
		if done[cur.ID] {
			return nil
		}
		onPath[cur.ID] = true
		path = append(path, cur)
		for _, comp := range cur.Components {
			use, ok := comp.(SubRecipeUse)
			if !ok || use.Recipe == nil {
				continue
			}
			if err := visit(use.Recipe); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		delete(onPath, cur.ID)
		done[cur.ID] = true
		return nil
	}
	return visit(r)
}

func cycleError(path []*Recipe, repeat *Recipe) error {
	start := 0
	for i, p := range path {
		if p.ID == repeat.ID {
			start = i
			break
		}
	}
	names := make([]string, 0, len(path)-start+1)
	for _, p := range path[start:] {
		names = append(names, p.Name)
	}
	names = append(names, repeat.Name)

	last := path[len(path)-1]
	index := -1
	for i, comp := range last.Components {
		if use, ok := comp.(SubRecipeUse); ok && use.Recipe != nil && use.Recipe.ID == repeat.ID {
			index = i
			break
		}
	}
	return &CostError{
		Kind:  KindCyclicComposition,
		Owner: last.ID,
		Index: index,
		Ref:   repeat.ID,
		Err:   errors.New(strings.Join(names, " -> ")),
	}
}
