package managers

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tokenscript-lang/tsi/internal/values"
)

// FunctionDef is one callable entry in the FunctionManager: either a
// built-in Go implementation or a user-registered function (spec §4.6.4).
type FunctionDef struct {
	MinArgs int
	MaxArgs int // -1 for unbounded
	Fn      func(args []values.Value) (values.Value, error)
}

// uninterpretedKeywords is the closed, case-sensitive set from spec §6/§7:
// used as a bare identifier or as a function name, each re-emits verbatim
// and is never looked up as a variable or function call. This is distinct
// from the "pass-through formatting" builtins (linear-gradient, rgba below)
// registered in FunctionManager itself, which *do* evaluate their arguments
// before reformatting them back into CSS-function text.
var uninterpretedKeywords = map[string]bool{
	"inside": true, "outside": true, "above": true, "below": true,
	"left": true, "right": true, "top": true, "bottom": true,
	"before": true, "after": true, "between": true,
	"uppercase": true, "lowercase": true, "underline": true, "none": true,
	"innerShadow": true, "outerShadow": true, "shadow": true,
}

// IsUninterpreted reports whether name is in the pass-through set.
func IsUninterpreted(name string) bool { return uninterpretedKeywords[name] }

// FunctionManager resolves calls like `min(10px, 20px)` or a user-registered
// custom function (spec §4.6.4).
type FunctionManager struct {
	builtins map[string]FunctionDef
	users    *versionedRegistry[FunctionDef]
	byName   map[string]FunctionDef
	units    *UnitManager
}

// SetUnits wires the shared UnitManager so unit-aware builtins (currently
// "sum") can route mixed-unit arguments through UnitManager.CommonFormat
// instead of discarding units (spec §4.6.4: "sum (unit-aware through
// UnitManager)"). Called once by the interpreter constructor.
func (m *FunctionManager) SetUnits(units *UnitManager) { m.units = units }

// NewFunctionManager returns a manager pre-loaded with TokenScript's
// built-in math/utility functions.
func NewFunctionManager() *FunctionManager {
	m := &FunctionManager{
		builtins: make(map[string]FunctionDef),
		users:    newVersionedRegistry[FunctionDef](),
		byName:   make(map[string]FunctionDef),
	}
	m.registerBuiltins()
	return m
}

// RegisterFunction adds (or overrides, at a given version) a user-defined
// function, e.g. loaded from a FunctionSpec pack (spec §6).
func (m *FunctionManager) RegisterFunction(name, version string, def FunctionDef) error {
	if err := m.users.Register(name, version, def); err != nil {
		return err
	}
	m.byName[name] = def
	return nil
}

// Call resolves and invokes name against args, preferring the most recently
// registered user function over a built-in of the same name.
func (m *FunctionManager) Call(name string, args []values.Value) (values.Value, error) {
	if def, ok := m.byName[name]; ok {
		return callChecked(name, def, args)
	}
	if def, ok := m.builtins[name]; ok {
		return callChecked(name, def, args)
	}
	return nil, fmt.Errorf("unknown function %q", name)
}

func callChecked(name string, def FunctionDef, args []values.Value) (values.Value, error) {
	if len(args) < def.MinArgs || (def.MaxArgs >= 0 && len(args) > def.MaxArgs) {
		return nil, fmt.Errorf("%s expects %s, got %d", name, arityDesc(def), len(args))
	}
	return def.Fn(args)
}

func arityDesc(def FunctionDef) string {
	if def.MaxArgs < 0 {
		return fmt.Sprintf("at least %d argument(s)", def.MinArgs)
	}
	if def.MinArgs == def.MaxArgs {
		return fmt.Sprintf("%d argument(s)", def.MinArgs)
	}
	return fmt.Sprintf("%d-%d argument(s)", def.MinArgs, def.MaxArgs)
}

func numArg(v values.Value) (float64, error) {
	switch n := v.(type) {
	case values.Number:
		return n.Value, nil
	case values.NumberWithUnit:
		return n.Value, nil
	}
	return 0, fmt.Errorf("expected a Number, got %s", v.TypeName())
}

func (m *FunctionManager) registerBuiltins() {
	unary := func(f func(float64) float64) func([]values.Value) (values.Value, error) {
		return func(args []values.Value) (values.Value, error) {
			v, err := numArg(args[0])
			if err != nil {
				return nil, err
			}
			return values.Number{Value: f(v)}, nil
		}
	}

	m.builtins["abs"] = FunctionDef{MinArgs: 1, MaxArgs: 1, Fn: unary(math.Abs)}
	m.builtins["sqrt"] = FunctionDef{MinArgs: 1, MaxArgs: 1, Fn: unary(math.Sqrt)}
	m.builtins["floor"] = FunctionDef{MinArgs: 1, MaxArgs: 1, Fn: unary(math.Floor)}
	m.builtins["ceil"] = FunctionDef{MinArgs: 1, MaxArgs: 1, Fn: unary(math.Ceil)}
	m.builtins["sin"] = FunctionDef{MinArgs: 1, MaxArgs: 1, Fn: unary(math.Sin)}
	m.builtins["cos"] = FunctionDef{MinArgs: 1, MaxArgs: 1, Fn: unary(math.Cos)}
	m.builtins["tan"] = FunctionDef{MinArgs: 1, MaxArgs: 1, Fn: unary(math.Tan)}
	m.builtins["asin"] = FunctionDef{MinArgs: 1, MaxArgs: 1, Fn: unary(math.Asin)}
	m.builtins["acos"] = FunctionDef{MinArgs: 1, MaxArgs: 1, Fn: unary(math.Acos)}
	m.builtins["atan"] = FunctionDef{MinArgs: 1, MaxArgs: 1, Fn: unary(math.Atan)}
	m.builtins["atan2"] = FunctionDef{MinArgs: 2, MaxArgs: 2, Fn: func(args []values.Value) (values.Value, error) {
		y, err := numArg(args[0])
		if err != nil {
			return nil, err
		}
		x, err := numArg(args[1])
		if err != nil {
			return nil, err
		}
		return values.Number{Value: math.Atan2(y, x)}, nil
	}}

	// log(x, base?): natural log with an optional base (spec §4.6.4).
	m.builtins["log"] = FunctionDef{MinArgs: 1, MaxArgs: 2, Fn: func(args []values.Value) (values.Value, error) {
		x, err := numArg(args[0])
		if err != nil {
			return nil, err
		}
		if len(args) == 1 {
			return values.Number{Value: math.Log(x)}, nil
		}
		base, err := numArg(args[1])
		if err != nil {
			return nil, err
		}
		return values.Number{Value: math.Log(x) / math.Log(base)}, nil
	}}

	// round/round_to use banker's rounding (round-half-to-even), not
	// math.Round's round-half-away-from-zero, matching the tie-breaking rule
	// values.Number.ToString already applies for non-hex radixes (spec §4.6.4).
	m.builtins["round"] = FunctionDef{MinArgs: 1, MaxArgs: 1, Fn: unary(values.RoundHalfEven)}

	m.builtins["round_to"] = FunctionDef{MinArgs: 2, MaxArgs: 2, Fn: func(args []values.Value) (values.Value, error) {
		v, err := numArg(args[0])
		if err != nil {
			return nil, err
		}
		places, err := numArg(args[1])
		if err != nil {
			return nil, err
		}
		factor := math.Pow(10, places)
		return values.Number{Value: values.RoundHalfEven(v*factor) / factor}, nil
	}}

	m.builtins["pow"] = FunctionDef{MinArgs: 2, MaxArgs: 2, Fn: func(args []values.Value) (values.Value, error) {
		base, err := numArg(args[0])
		if err != nil {
			return nil, err
		}
		exp, err := numArg(args[1])
		if err != nil {
			return nil, err
		}
		return values.Number{Value: math.Pow(base, exp)}, nil
	}}

	m.builtins["mod"] = FunctionDef{MinArgs: 2, MaxArgs: 2, Fn: func(args []values.Value) (values.Value, error) {
		a, err := numArg(args[0])
		if err != nil {
			return nil, err
		}
		b, err := numArg(args[1])
		if err != nil {
			return nil, err
		}
		if b == 0 {
			return nil, fmt.Errorf("mod by zero")
		}
		return values.Number{Value: math.Mod(a, b)}, nil
	}}

	m.builtins["min"] = FunctionDef{MinArgs: 1, MaxArgs: -1, Fn: reduceFn(math.Min, math.Inf(1))}
	m.builtins["max"] = FunctionDef{MinArgs: 1, MaxArgs: -1, Fn: reduceFn(math.Max, math.Inf(-1))}

	m.builtins["sum"] = FunctionDef{MinArgs: 1, MaxArgs: -1, Fn: func(args []values.Value) (values.Value, error) {
		if m.units != nil {
			if hasUnit(args) {
				return m.sumWithUnits(args)
			}
		}
		var total float64
		for _, a := range args {
			v, err := numArg(a)
			if err != nil {
				return nil, err
			}
			total += v
		}
		return values.Number{Value: total}, nil
	}}

	m.builtins["average"] = FunctionDef{MinArgs: 1, MaxArgs: -1, Fn: func(args []values.Value) (values.Value, error) {
		var total float64
		for _, a := range args {
			v, err := numArg(a)
			if err != nil {
				return nil, err
			}
			total += v
		}
		return values.Number{Value: total / float64(len(args))}, nil
	}}

	m.builtins["parse_int"] = FunctionDef{MinArgs: 1, MaxArgs: 2, Fn: func(args []values.Value) (values.Value, error) {
		s, ok := args[0].(values.String)
		if !ok {
			return nil, fmt.Errorf("parse_int expects a String")
		}
		radix := 10
		if len(args) == 2 {
			r, err := numArg(args[1])
			if err != nil {
				return nil, err
			}
			radix = int(r)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s.Value), radix, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as base-%d integer", s.Value, radix)
		}
		return values.Number{Value: float64(n)}, nil
	}}

	m.builtins["pi"] = FunctionDef{MinArgs: 0, MaxArgs: 0, Fn: func(args []values.Value) (values.Value, error) {
		return values.Number{Value: math.Pi}, nil
	}}

	// type(x) returns the last dotted segment of TypeName(), lowercased, e.g.
	// "NumberWithUnit.Px" -> "px", "Color.Hex" -> "hex" (spec §4.6.4).
	m.builtins["type"] = FunctionDef{MinArgs: 1, MaxArgs: 1, Fn: func(args []values.Value) (values.Value, error) {
		name := args[0].TypeName()
		parts := strings.Split(name, ".")
		return values.String{Value: strings.ToLower(parts[len(parts)-1])}, nil
	}}

	// linear-gradient/rgba are the "pass-through formatting" builtins (spec
	// §4.6.4): arguments are evaluated like any other call, then reformatted
	// back as `name(v1, v2, ...)` text rather than computing anything, since
	// downstream CSS-like consumers want the call shape preserved.
	m.builtins["linear-gradient"] = FunctionDef{MinArgs: 0, MaxArgs: -1, Fn: formatPassThrough("linear-gradient")}
	m.builtins["rgba"] = FunctionDef{MinArgs: 0, MaxArgs: -1, Fn: formatPassThrough("rgba")}
}

func formatPassThrough(name string) func([]values.Value) (values.Value, error) {
	return func(args []values.Value) (values.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		return values.String{Value: name + "(" + strings.Join(parts, ", ") + ")"}, nil
	}
}

// hasUnit reports whether any argument is a NumberWithUnit.
func hasUnit(args []values.Value) bool {
	for _, a := range args {
		if _, ok := a.(values.NumberWithUnit); ok {
			return true
		}
	}
	return false
}

// sumWithUnits implements the unit-aware path of "sum": every dimensioned
// argument is routed through UnitManager.CommonFormat so mixed-unit sums
// (e.g. `sum(1in, 2px)`) add in a single common unit rather than silently
// dropping units (spec §4.6.4, §4.6.3 convert_to_common_format).
func (m *FunctionManager) sumWithUnits(args []values.Value) (values.Value, error) {
	nums := make([]float64, len(args))
	units := make([]string, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case values.NumberWithUnit:
			nums[i], units[i] = v.Value, v.Unit
		case values.Number:
			nums[i] = v.Value
		default:
			return nil, fmt.Errorf("expected a Number, got %s", a.TypeName())
		}
	}
	converted, unit, err := m.units.CommonFormat(nums, units)
	if err != nil {
		return nil, err
	}
	var total float64
	for _, v := range converted {
		total += v
	}
	return values.NumberWithUnit{Value: total, Unit: unit}, nil
}

// reduceFn implements min/max. Per spec §9 Open Question 1, a dimensioned
// operand's unit is dropped: the current (reference) semantics returns a
// unit-less Number even when every argument is a NumberWithUnit, which is
// what spec §8 test #4 encodes (`min(10px, 20px, 5px)` => "5", not "5px").
func reduceFn(pick func(a, b float64) float64, seed float64) func([]values.Value) (values.Value, error) {
	return func(args []values.Value) (values.Value, error) {
		best := seed
		for _, a := range args {
			v, err := numArg(a)
			if err != nil {
				return nil, err
			}
			best = pick(best, v)
		}
		return values.Number{Value: best}, nil
	}
}

// Clone returns a FunctionManager with its own mutable registration slot
// (spec §5) for user-registered functions, sharing the built-in table and
// the wired UnitManager.
func (m *FunctionManager) Clone() *FunctionManager {
	builtins := make(map[string]FunctionDef, len(m.builtins))
	for k, v := range m.builtins {
		builtins[k] = v
	}
	byName := make(map[string]FunctionDef, len(m.byName))
	for k, v := range m.byName {
		byName[k] = v
	}
	return &FunctionManager{
		builtins: builtins,
		users:    m.users.Clone(func(d FunctionDef) FunctionDef { return d }),
		byName:   byName,
		units:    m.units,
	}
}

// Names returns every resolvable function name (built-in and registered),
// sorted, mostly useful for diagnostics and CLI introspection.
func (m *FunctionManager) Names() []string {
	seen := make(map[string]bool)
	for n := range m.builtins {
		seen[n] = true
	}
	for n := range m.byName {
		seen[n] = true
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
