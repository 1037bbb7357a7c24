// Package ops implements TokenScript's type-directed operator kernel (spec
// §4.5): the table of which (left type, operator, right type) combinations
// are legal and what they produce, kept separate from the tree-walking
// evaluator so the dispatch table can be tested in isolation — the same
// separation the teacher keeps between internal/interp (evaluation) and its
// own operator-coercion helpers.
package ops

import (
	"fmt"
	"math"

	"github.com/tokenscript-lang/tsi/internal/values"
)

// UnitConverter resolves a value expressed in `from` units to `to` units, so
// mixed-unit arithmetic (`1em + 4px`) can be normalized before the kernel's
// own arithmetic runs. The interpreter wires its UnitManager in here; ops
// itself knows nothing about manager registration (spec §4.6.3 keeps that
// logic in the unit manager).
type UnitConverter interface {
	ConvertTo(value float64, from, to string) (float64, error)
}

// OpError is a typed arithmetic/comparison failure naming the offending
// types, so the interpreter can format a diagnostic without re-deriving
// type names.
type OpError struct {
	Op          string
	Left, Right string
}

func (e *OpError) Error() string {
	if e.Right == "" {
		return fmt.Sprintf("operator %s is not defined for %s", e.Op, e.Left)
	}
	return fmt.Sprintf("operator %s is not defined between %s and %s", e.Op, e.Left, e.Right)
}

// Kernel evaluates binary/unary operators over Values.
type Kernel struct {
	Units UnitConverter
}

// New returns a Kernel that converts units via conv (nil disables
// cross-unit arithmetic; same-unit or unitless operations still work).
func New(conv UnitConverter) *Kernel {
	return &Kernel{Units: conv}
}

func (k *Kernel) numericOperands(op string, l, r values.Value) (lv, rv float64, unit string, err error) {
	switch left := l.(type) {
	case values.Number:
		switch right := r.(type) {
		case values.Number:
			return left.Value, right.Value, "", nil
		case values.NumberWithUnit:
			return left.Value, right.Value, right.Unit, nil
		}
	case values.NumberWithUnit:
		switch right := r.(type) {
		case values.Number:
			return left.Value, right.Value, left.Unit, nil
		case values.NumberWithUnit:
			if left.Unit == right.Unit {
				return left.Value, right.Value, left.Unit, nil
			}
			if k.Units == nil {
				return 0, 0, "", &OpError{Op: op, Left: l.TypeName(), Right: r.TypeName()}
			}
			converted, convErr := k.Units.ConvertTo(right.Value, right.Unit, left.Unit)
			if convErr != nil {
				return 0, 0, "", fmt.Errorf("cannot reconcile units %q and %q: %w", left.Unit, right.Unit, convErr)
			}
			return left.Value, converted, left.Unit, nil
		}
	}
	return 0, 0, "", &OpError{Op: op, Left: l.TypeName(), Right: r.TypeName()}
}

func wrap(v float64, unit string) values.Value {
	if unit == "" {
		return values.Number{Value: v}
	}
	return values.NumberWithUnit{Value: v, Unit: unit}
}

// Add implements `+`: numeric addition (with unit reconciliation) or String
// concatenation (spec §4.5: "+ also concatenates two Strings").
func (k *Kernel) Add(l, r values.Value) (values.Value, error) {
	if ls, ok := l.(values.String); ok {
		if rs, ok := r.(values.String); ok {
			return values.String{Value: ls.Value + rs.Value}, nil
		}
	}
	lv, rv, unit, err := k.numericOperands("+", l, r)
	if err != nil {
		return nil, err
	}
	return wrap(lv+rv, unit), nil
}

func (k *Kernel) Sub(l, r values.Value) (values.Value, error) {
	lv, rv, unit, err := k.numericOperands("-", l, r)
	if err != nil {
		return nil, err
	}
	return wrap(lv-rv, unit), nil
}

// Mul implements `*`: Number*Number, or NumberWithUnit*Number (a unit times
// a bare scalar; unit*unit is not defined, spec §4.5).
func (k *Kernel) Mul(l, r values.Value) (values.Value, error) {
	switch left := l.(type) {
	case values.Number:
		switch right := r.(type) {
		case values.Number:
			return values.Number{Value: left.Value * right.Value}, nil
		case values.NumberWithUnit:
			return values.NumberWithUnit{Value: left.Value * right.Value, Unit: right.Unit}, nil
		}
	case values.NumberWithUnit:
		if right, ok := r.(values.Number); ok {
			return values.NumberWithUnit{Value: left.Value * right.Value, Unit: left.Unit}, nil
		}
	}
	return nil, &OpError{Op: "*", Left: l.TypeName(), Right: r.TypeName()}
}

// Div implements `/`. A unit divided by the same unit cancels to a bare
// Number (spec §4.5); a unit divided by a bare Number keeps the unit.
func (k *Kernel) Div(l, r values.Value) (values.Value, error) {
	switch left := l.(type) {
	case values.Number:
		if right, ok := r.(values.Number); ok {
			if right.Value == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return values.Number{Value: left.Value / right.Value}, nil
		}
	case values.NumberWithUnit:
		switch right := r.(type) {
		case values.Number:
			if right.Value == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return values.NumberWithUnit{Value: left.Value / right.Value, Unit: left.Unit}, nil
		case values.NumberWithUnit:
			if right.Value == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			if left.Unit == right.Unit {
				return values.Number{Value: left.Value / right.Value}, nil
			}
			if k.Units != nil {
				converted, err := k.Units.ConvertTo(right.Value, right.Unit, left.Unit)
				if err != nil {
					return nil, fmt.Errorf("cannot reconcile units %q and %q: %w", left.Unit, right.Unit, err)
				}
				if converted == 0 {
					return nil, fmt.Errorf("division by zero")
				}
				return values.Number{Value: left.Value / converted}, nil
			}
		}
	}
	return nil, &OpError{Op: "/", Left: l.TypeName(), Right: r.TypeName()}
}

// Pow implements `^`, right-associative at the parser level; units are not
// carried through exponentiation (spec §4.5: only the base's numeric value
// participates).
func (k *Kernel) Pow(l, r values.Value) (values.Value, error) {
	lv, ok := numericValue(l)
	if !ok {
		return nil, &OpError{Op: "^", Left: l.TypeName(), Right: r.TypeName()}
	}
	rv, ok := numericValue(r)
	if !ok {
		return nil, &OpError{Op: "^", Left: l.TypeName(), Right: r.TypeName()}
	}
	return values.Number{Value: math.Pow(lv, rv)}, nil
}

func numericValue(v values.Value) (float64, bool) {
	switch n := v.(type) {
	case values.Number:
		return n.Value, true
	case values.NumberWithUnit:
		return n.Value, true
	}
	return 0, false
}

// Negate implements unary `-`.
func (k *Kernel) Negate(v values.Value) (values.Value, error) {
	switch n := v.(type) {
	case values.Number:
		return values.Number{Value: -n.Value}, nil
	case values.NumberWithUnit:
		return values.NumberWithUnit{Value: -n.Value, Unit: n.Unit}, nil
	}
	return nil, &OpError{Op: "unary -", Left: v.TypeName()}
}

// Compare implements the ordering operators < <= > >=. Only Number and
// NumberWithUnit (reconciled to a common unit) are ordered (spec §4.5).
func (k *Kernel) Compare(op string, l, r values.Value) (values.Value, error) {
	lv, rv, _, err := k.numericOperands(op, l, r)
	if err != nil {
		return nil, err
	}
	var result bool
	switch op {
	case "<":
		result = lv < rv
	case "<=":
		result = lv <= rv
	case ">":
		result = lv > rv
	case ">=":
		result = lv >= rv
	default:
		return nil, fmt.Errorf("unknown comparison operator %q", op)
	}
	return values.Boolean{Value: result}, nil
}

// Equal implements == and !=: defined for every type, false across
// mismatched types rather than an error (spec §4.5).
func (k *Kernel) Equal(l, r values.Value) values.Value {
	if ln, ok := l.(values.Number); ok {
		if rn, ok := r.(values.NumberWithUnit); ok {
			return values.Boolean{Value: ln.Value == rn.Value && rn.Unit == ""}
		}
	}
	if lu, ok := l.(values.NumberWithUnit); ok {
		if rn, ok := r.(values.Number); ok {
			return values.Boolean{Value: lu.Value == rn.Value && lu.Unit == ""}
		}
	}
	return values.Boolean{Value: l.Equals(r)}
}

// Truthy implements TokenScript's truthiness rule used by && / ||'s
// short-circuit tests (if/while conditions and unary ! are stricter: they
// require an actual Boolean, see requireBoolean in internal/interpreter and
// Not below): Boolean uses its own value, Null is always false, Number 0 is
// false, empty String/List/Dictionary are false, everything else is true
// (spec §4.5/§4.7).
func Truthy(v values.Value) bool {
	switch x := v.(type) {
	case values.Boolean:
		return x.Value
	case values.Null:
		return false
	case values.Number:
		return x.Value != 0
	case values.NumberWithUnit:
		return x.Value != 0
	case values.String:
		return x.Value != ""
	case *values.List:
		return len(x.Elements) > 0
	case *values.Dictionary:
		return x.Map.Len() > 0
	default:
		return true
	}
}

func (k *Kernel) And(l, r values.Value) values.Value {
	return values.Boolean{Value: Truthy(l) && Truthy(r)}
}

func (k *Kernel) Or(l, r values.Value) values.Value {
	return values.Boolean{Value: Truthy(l) || Truthy(r)}
}

// Not implements unary `!`, which spec §4.5 states requires a Boolean
// operand (like if/while conditions, described identically in §4.7, and
// unlike && / ||, which short-circuit on any value's truthiness).
func (k *Kernel) Not(v values.Value) (values.Value, error) {
	b, ok := v.(values.Boolean)
	if !ok {
		return nil, fmt.Errorf("! requires Boolean, got %s", v.TypeName())
	}
	return values.Boolean{Value: !b.Value}, nil
}
