package costing

import (
	"errors"
	"fmt"

	"github.com/Simplici0/menucost/internal/units"
)

// Sentinel errors for broad classification.
var (
	ErrIncompatibleUnits = errors.New("incompatible units")
	ErrUnitMismatch      = errors.New("unit mismatch")
	ErrUndefinedYield    = errors.New("undefined yield")
	ErrCyclicComposition = errors.New("cyclic composition")
	ErrInvalidComponent  = errors.New("invalid component")
)

// ConversionError reports that a quantity cannot be expressed in the target
// unit for the given ingredient.
type ConversionError struct {
	From units.Unit
	To   units.Unit
	// Yield is set when the target was a freeform recipe yield.
	Yield string
}

func (e *ConversionError) Error() string {
	to := e.To.String()
	if e.Yield != "" {
		to = e.Yield
	}
	return fmt.Sprintf("cannot convert %s to %s: add a custom conversion or density", e.From, to)
}

func (e *ConversionError) Is(target error) bool { return target == ErrIncompatibleUnits }

// ErrorKind is a coarse-grained categorization for costing errors.
type ErrorKind string

const (
	KindUnitMismatch      ErrorKind = "unit_mismatch"
	KindUndefinedYield    ErrorKind = "undefined_yield"
	KindCyclicComposition ErrorKind = "cyclic_composition"
	KindInvalidComponent  ErrorKind = "invalid_component"
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindUnitMismatch:
		return ErrUnitMismatch
	case KindUndefinedYield:
		return ErrUndefinedYield
	case KindCyclicComposition:
		return ErrCyclicComposition
	default:
		return ErrInvalidComponent
	}
}

// Step is one component line of a recipe or entree.
type Step struct {
	Owner string
	Index int
}

// CostError attributes a failure to the component that caused it.
type CostError struct {
	Kind ErrorKind
	// Owner is the recipe or entree whose component failed.
	Owner string
	// Index is the position of the failing component, -1 when not applicable.
	Index int
	// Ref is the ingredient or recipe the component points at.
	Ref string
	// Via holds the sub-recipe lines that led to Owner, outermost first.
	Via []Step
	Err error
}

func (e *CostError) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := string(e.Kind)
	if e.Owner != "" {
		base += fmt.Sprintf(" (owner=%s", e.Owner)
		if e.Index >= 0 {
			base += fmt.Sprintf(" line=%d", e.Index)
		}
		if e.Ref != "" {
			base += fmt.Sprintf(" ref=%s", e.Ref)
		}
		for _, st := range e.Via {
			base += fmt.Sprintf(" via=%s[%d]", st.Owner, st.Index)
		}
		base += ")"
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *CostError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *CostError) Is(target error) bool {
	return e != nil && target == e.Kind.sentinel()
}

// IsKind reports whether err carries a CostError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *CostError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

// ConversionPair returns the unit pair behind err, if any.
func ConversionPair(err error) (*ConversionError, bool) {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// attribute fills in the owner and line of a component-level error. An error
// that already names an owner came from deeper in the graph: it keeps that
// owner and records this line in Via.
func attribute(err error, owner string, index int, ref string) error {
	var ce *CostError
	if errors.As(err, &ce) {
		if ce.Owner != "" {
			out := *ce
			out.Via = append([]Step{{Owner: owner, Index: index}}, ce.Via...)
			return &out
		}
		out := *ce
		out.Owner, out.Index, out.Ref = owner, index, ref
		return &out
	}
	return &CostError{Kind: KindInvalidComponent, Owner: owner, Index: index, Ref: ref, Err: err}
}
