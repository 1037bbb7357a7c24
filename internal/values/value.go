// Package values implements the TokenScript symbol/value system (spec §4.3):
// Number, NumberWithUnit, String, Boolean, Color, List, Dictionary and Null,
// each with equality, deep-copy, and optional method/attribute dispatch.
//
// This replaces the teacher's inheritance-based value classes (internal/interp
// value.go in the teacher repo has one struct per Go type implementing a
// shared `Value` interface already, which is the same shape spec §9's
// "Design Notes" asks for: "replace [polymorphic value classes] with a
// tagged sum of value variants and a table-driven method registry per
// variant"). We follow that shape and add the per-variant method table the
// teacher's simpler values didn't need.
package values

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Value is implemented by every TokenScript runtime value.
type Value interface {
	// TypeName returns the dotted type name, e.g. "Number",
	// "NumberWithUnit.Px", "Color.Hex", "Color.Rgb".
	TypeName() string
	// String renders the value the way a token's resolved output is shown.
	String() string
	// Equals is value equality (spec: List.index/equals-based lookups use
	// this).
	Equals(other Value) bool
	// TypeEquals compares only the dotted type name.
	TypeEquals(other Value) bool
	// DeepCopy returns an independent copy; primitives may return
	// themselves since Go values of these types are already copy-safe.
	DeepCopy() Value
}

// MethodArgError reports an arity mismatch when calling a value method.
type MethodArgError struct {
	Type    string
	Method  string
	Min     int
	Max     int // -1 means unbounded (variadic)
	Got     int
}

func (e *MethodArgError) Error() string {
	if e.Max < 0 {
		return fmt.Sprintf("%s.%s expects at least %d argument(s), got %d", e.Type, e.Method, e.Min, e.Got)
	}
	if e.Min == e.Max {
		return fmt.Sprintf("%s.%s expects %d argument(s), got %d", e.Type, e.Method, e.Min, e.Got)
	}
	return fmt.Sprintf("%s.%s expects %d-%d argument(s), got %d", e.Type, e.Method, e.Min, e.Max, e.Got)
}

// MethodFn implements one method body: receiver is the value the method was
// called on, args have already been arity-checked (and deep-copied by the
// caller for mutating methods per spec §3 invariants).
type MethodFn func(receiver Value, args []Value) (Value, error)

// MethodDef is one entry in a per-type method table: spec §4.3 "Method
// dispatch supports one variadic (unpack) parameter; arity checks are:
// required args <= supplied <= declared-or-infinity."
type MethodDef struct {
	MinArgs  int
	MaxArgs  int // -1 for unbounded (variadic tail)
	Variadic bool
	Fn       MethodFn
}

// Call runs def against receiver/args after checking arity.
func (def MethodDef) Call(typeName, name string, receiver Value, args []Value) (Value, error) {
	if len(args) < def.MinArgs || (def.MaxArgs >= 0 && len(args) > def.MaxArgs) {
		return nil, &MethodArgError{Type: typeName, Method: name, Min: def.MinArgs, Max: def.MaxArgs, Got: len(args)}
	}
	return def.Fn(receiver, args)
}

// Methodable is implemented by values that support method dispatch
// (spec §4.3 has_method/call_method).
type Methodable interface {
	HasMethod(name string) bool
	CallMethod(name string, args []Value) (Value, error)
}

// Attributable is implemented by values with gettable/settable attributes
// (spec §4.3 has_attribute/get_attribute/set_attribute).
type Attributable interface {
	HasAttribute(name string) bool
	GetAttribute(name string) (Value, error)
	SetAttribute(name string, v Value) error
}

// ---- Null ----

type Null struct{}

func (Null) TypeName() string       { return "Null" }
func (Null) String() string         { return "null" }
func (Null) DeepCopy() Value        { return Null{} }
func (Null) Equals(other Value) bool {
	_, ok := other.(Null)
	return ok
}
func (n Null) TypeEquals(other Value) bool { return other.TypeName() == n.TypeName() }

// ---- Number ----

// Number is a double with an "is-integer printable" flag: an integer-valued
// float prints without a decimal point (spec §3 Value invariants).
type Number struct {
	Value   float64
	IsFloat bool
}

func (n Number) TypeName() string { return "Number" }

func (n Number) String() string { return n.ToString(10) }

// ToString renders n in the given radix (2..36). Fractional hex (radix 16)
// values of exactly .5 round toward negative infinity so color round-trips
// stay exact (spec §4.3, §9 Open Question 2); any other fraction in a
// non-decimal radix uses round-half-to-even. Radix 10 prints the fraction
// unrounded.
func (n Number) ToString(radix int) string {
	if radix == 10 {
		if isIntPrintable(n.Value) {
			return strconv.FormatInt(int64(math.Round(n.Value)), 10)
		}
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	}

	if isIntPrintable(n.Value) {
		return strconv.FormatInt(int64(math.Round(n.Value)), radix)
	}

	intPart := math.Trunc(n.Value)
	frac := n.Value - intPart
	var rounded float64
	if radix == 16 && math.Abs(math.Abs(frac)-0.5) < 1e-9 {
		rounded = math.Floor(n.Value)
	} else {
		rounded = RoundHalfEven(n.Value)
	}
	return strconv.FormatInt(int64(rounded), radix)
}

func isIntPrintable(v float64) bool {
	return v == math.Trunc(v) && !math.IsInf(v, 0)
}

// RoundHalfEven implements banker's rounding: ties (an exact .5 fraction)
// round to the nearest even integer rather than away from zero. Exported
// for managers.FunctionManager's "round"/"round_to" builtins (spec §4.6.4),
// which need the identical tie-breaking rule this type already uses for
// every non-hex ToString radix.
func RoundHalfEven(v float64) float64 {
	floor := math.Floor(v)
	diff := v - floor
	switch {
	case diff < 0.5:
		return floor
	case diff > 0.5:
		return floor + 1
	default:
		if math.Mod(floor, 2) == 0 {
			return floor
		}
		return floor + 1
	}
}

func (n Number) Equals(other Value) bool {
	o, ok := other.(Number)
	return ok && o.Value == n.Value
}
func (n Number) TypeEquals(other Value) bool { return other.TypeName() == n.TypeName() }
func (n Number) DeepCopy() Value             { return n }

func (n Number) HasAttribute(name string) bool { return name == "value" }
func (n Number) GetAttribute(name string) (Value, error) {
	if name == "value" {
		return Number{Value: n.Value, IsFloat: n.IsFloat}, nil
	}
	return nil, fmt.Errorf("Number has no attribute %q", name)
}
func (n Number) SetAttribute(name string, v Value) error {
	return fmt.Errorf("Number attribute %q is not assignable", name)
}

var numberMethods = map[string]MethodDef{
	"to_string": {MinArgs: 0, MaxArgs: 1, Fn: func(recv Value, args []Value) (Value, error) {
		n := recv.(Number)
		radix := 10
		if len(args) == 1 {
			r, ok := args[0].(Number)
			if !ok {
				return nil, fmt.Errorf("to_string radix must be a Number")
			}
			radix = int(r.Value)
		}
		if radix < 2 || radix > 36 {
			return nil, fmt.Errorf("invalid radix %d: must be in [2, 36]", radix)
		}
		return String{Value: n.ToString(radix)}, nil
	}},
}

func (n Number) HasMethod(name string) bool { _, ok := numberMethods[name]; return ok }
func (n Number) CallMethod(name string, args []Value) (Value, error) {
	def, ok := numberMethods[name]
	if !ok {
		return nil, fmt.Errorf("Number has no method %q", name)
	}
	return def.Call(n.TypeName(), name, n, args)
}

// ---- NumberWithUnit ----

// NumberWithUnit is a number tagged with a unit from the closed base set of
// spec §3 or one registered at runtime by the UnitManager (not tracked here:
// this struct only carries the unit tag).
type NumberWithUnit struct {
	Value float64
	Unit  string
}

func (n NumberWithUnit) TypeName() string { return "NumberWithUnit." + capitalize(n.Unit) }
func (n NumberWithUnit) String() string {
	num := Number{Value: n.Value}
	return num.ToString(10) + n.Unit
}
func (n NumberWithUnit) Equals(other Value) bool {
	o, ok := other.(NumberWithUnit)
	return ok && o.Value == n.Value && o.Unit == n.Unit
}
func (n NumberWithUnit) TypeEquals(other Value) bool { return other.TypeName() == n.TypeName() }
func (n NumberWithUnit) DeepCopy() Value             { return n }

func (n NumberWithUnit) HasAttribute(name string) bool { return name == "value" }
func (n NumberWithUnit) GetAttribute(name string) (Value, error) {
	if name == "value" {
		return Number{Value: n.Value}, nil
	}
	return nil, fmt.Errorf("NumberWithUnit has no attribute %q", name)
}
func (n NumberWithUnit) SetAttribute(name string, v Value) error {
	return fmt.Errorf("NumberWithUnit attribute %q is not assignable", name)
}

var numberWithUnitMethods = map[string]MethodDef{
	"to_string": {MinArgs: 0, MaxArgs: 0, Fn: func(recv Value, args []Value) (Value, error) {
		return String{Value: recv.(NumberWithUnit).String()}, nil
	}},
	"to_number": {MinArgs: 0, MaxArgs: 0, Fn: func(recv Value, args []Value) (Value, error) {
		return Number{Value: recv.(NumberWithUnit).Value}, nil
	}},
}

func (n NumberWithUnit) HasMethod(name string) bool { _, ok := numberWithUnitMethods[name]; return ok }
func (n NumberWithUnit) CallMethod(name string, args []Value) (Value, error) {
	def, ok := numberWithUnitMethods[name]
	if !ok {
		return nil, fmt.Errorf("%s has no method %q", n.TypeName(), name)
	}
	return def.Call(n.TypeName(), name, n, args)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s == "%" {
		return "Percent"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ---- String ----

type String struct {
	Value string
}

func (s String) TypeName() string        { return "String" }
func (s String) String() string          { return s.Value }
func (s String) Equals(other Value) bool { o, ok := other.(String); return ok && o.Value == s.Value }
func (s String) TypeEquals(other Value) bool { return other.TypeName() == s.TypeName() }
func (s String) DeepCopy() Value             { return s }

var stringMethods = map[string]MethodDef{
	"upper": {Fn: func(recv Value, args []Value) (Value, error) {
		return String{Value: strings.ToUpper(recv.(String).Value)}, nil
	}},
	"lower": {Fn: func(recv Value, args []Value) (Value, error) {
		return String{Value: strings.ToLower(recv.(String).Value)}, nil
	}},
	"length": {Fn: func(recv Value, args []Value) (Value, error) {
		return Number{Value: float64(len([]rune(recv.(String).Value)))}, nil
	}},
	"concat": {MinArgs: 1, MaxArgs: 1, Fn: func(recv Value, args []Value) (Value, error) {
		other, ok := args[0].(String)
		if !ok {
			return nil, fmt.Errorf("String.concat expects a String argument")
		}
		return String{Value: recv.(String).Value + other.Value}, nil
	}},
	"split": {MinArgs: 0, MaxArgs: 1, Fn: func(recv Value, args []Value) (Value, error) {
		s := recv.(String).Value
		if len(args) == 0 {
			runes := []rune(s)
			elems := make([]Value, len(runes))
			for i, r := range runes {
				elems[i] = String{Value: string(r)}
			}
			return &List{Elements: elems}, nil
		}
		delim, ok := args[0].(String)
		if !ok {
			return nil, fmt.Errorf("String.split delimiter must be a String")
		}
		parts := strings.Split(s, delim.Value)
		elems := make([]Value, len(parts))
		for i, part := range parts {
			elems[i] = String{Value: part}
		}
		return &List{Elements: elems}, nil
	}},
}

func (s String) HasMethod(name string) bool { _, ok := stringMethods[name]; return ok }
func (s String) CallMethod(name string, args []Value) (Value, error) {
	def, ok := stringMethods[name]
	if !ok {
		return nil, fmt.Errorf("String has no method %q", name)
	}
	return def.Call(s.TypeName(), name, s, args)
}

// ---- Boolean ----

type Boolean struct {
	Value bool
}

func (b Boolean) TypeName() string { return "Boolean" }
func (b Boolean) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}
func (b Boolean) Equals(other Value) bool     { o, ok := other.(Boolean); return ok && o.Value == b.Value }
func (b Boolean) TypeEquals(other Value) bool { return other.TypeName() == b.TypeName() }
func (b Boolean) DeepCopy() Value             { return b }

// DeepCopy is the primitive-safe fallback used by List/Dictionary mutators
// for any Value that isn't itself a container.
func DeepCopy(v Value) Value {
	if v == nil {
		return nil
	}
	return v.DeepCopy()
}

// SortedKeys is a small shared helper for types (like Dictionary) that want
// a deterministic debug ordering distinct from insertion order.
func SortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
