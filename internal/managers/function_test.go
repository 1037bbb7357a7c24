package managers

import (
	"math"
	"testing"

	"github.com/tokenscript-lang/tsi/internal/values"
)

func TestBuiltinMinMaxDropUnit(t *testing.T) {
	// spec §8 test #4 / §9 Open Question 1: current semantics drop the unit.
	m := NewFunctionManager()
	got, err := m.Call("min", []values.Value{
		values.NumberWithUnit{Value: 20, Unit: "px"},
		values.NumberWithUnit{Value: 10, Unit: "px"},
		values.NumberWithUnit{Value: 5, Unit: "px"},
	})
	if err != nil {
		t.Fatal(err)
	}
	n, ok := got.(values.Number)
	if !ok || n.Value != 5 {
		t.Fatalf("got %v, want unit-less Number 5", got)
	}
}

func TestBuiltinSumAndAverage(t *testing.T) {
	m := NewFunctionManager()
	args := []values.Value{values.Number{Value: 2}, values.Number{Value: 4}, values.Number{Value: 6}}

	sum, err := m.Call("sum", args)
	if err != nil {
		t.Fatal(err)
	}
	if sum.(values.Number).Value != 12 {
		t.Fatalf("sum = %v", sum)
	}

	avg, err := m.Call("average", args)
	if err != nil {
		t.Fatal(err)
	}
	if avg.(values.Number).Value != 4 {
		t.Fatalf("average = %v", avg)
	}
}

func TestBuiltinSumRoutesMixedUnitsThroughUnitManager(t *testing.T) {
	m := NewFunctionManager()
	units := NewUnitManager() // "in" and "px" are both seeded in the "length" family
	m.SetUnits(units)

	got, err := m.Call("sum", []values.Value{
		values.NumberWithUnit{Value: 1, Unit: "in"},
		values.NumberWithUnit{Value: 4, Unit: "px"},
	})
	if err != nil {
		t.Fatal(err)
	}
	nu, ok := got.(values.NumberWithUnit)
	if !ok || nu.Unit != "in" || nu.Value != 1+4.0/96.0 {
		t.Fatalf("got %v, want ~1.0417in", got)
	}
}

func TestBuiltinParseIntWithRadix(t *testing.T) {
	m := NewFunctionManager()
	got, err := m.Call("parse_int", []values.Value{values.String{Value: "ff"}, values.Number{Value: 16}})
	if err != nil {
		t.Fatal(err)
	}
	if got.(values.Number).Value != 255 {
		t.Fatalf("got %v, want 255", got)
	}
}

func TestModByZeroErrors(t *testing.T) {
	m := NewFunctionManager()
	if _, err := m.Call("mod", []values.Value{values.Number{Value: 1}, values.Number{Value: 0}}); err == nil {
		t.Fatal("expected mod-by-zero error")
	}
}

func TestUserFunctionOverridesBuiltin(t *testing.T) {
	m := NewFunctionManager()
	_ = m.RegisterFunction("abs", "2.0", FunctionDef{MinArgs: 1, MaxArgs: 1, Fn: func(args []values.Value) (values.Value, error) {
		return values.String{Value: "custom-abs"}, nil
	}})
	got, err := m.Call("abs", []values.Value{values.Number{Value: -5}})
	if err != nil {
		t.Fatal(err)
	}
	if got.(values.String).Value != "custom-abs" {
		t.Fatalf("expected user override to win, got %v", got)
	}
}

func TestUnknownFunctionErrors(t *testing.T) {
	m := NewFunctionManager()
	if _, err := m.Call("not_a_function", nil); err == nil {
		t.Fatal("expected error for unknown function")
	}
}

func TestFunctionManagerCloneIsolatesRegistration(t *testing.T) {
	m := NewFunctionManager()
	clone := m.Clone()

	err := clone.RegisterFunction("double", "1.0", FunctionDef{MinArgs: 1, MaxArgs: 1, Fn: func(args []values.Value) (values.Value, error) {
		n, _ := args[0].(values.Number)
		return values.Number{Value: n.Value * 2}, nil
	}})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := clone.Call("double", []values.Value{values.Number{Value: 21}}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Call("double", []values.Value{values.Number{Value: 21}}); err == nil {
		t.Fatal("expected the original manager to be unaffected by the clone's registration")
	}
	// Builtins registered before cloning still resolve on both managers.
	if _, err := clone.Call("abs", []values.Value{values.Number{Value: -1}}); err != nil {
		t.Fatal(err)
	}
}

func TestUninterpretedKeywordsClosedSet(t *testing.T) {
	if !IsUninterpreted("none") {
		t.Fatal("expected none to be in the spec §7 closed uninterpreted set")
	}
	if !IsUninterpreted("innerShadow") {
		t.Fatal("expected innerShadow to be in the spec §7 closed uninterpreted set")
	}
	if IsUninterpreted("NONE") {
		t.Fatal("the closed set is case-sensitive; NONE must not match none")
	}
	if IsUninterpreted("min") {
		t.Fatal("min is a real builtin, must not be in the uninterpreted set")
	}
	if IsUninterpreted("linear-gradient") {
		t.Fatal("linear-gradient is a registered pass-through builtin, not in the §7 closed set")
	}
}

func TestBuiltinPassThroughFormatting(t *testing.T) {
	m := NewFunctionManager()
	got, err := m.Call("linear-gradient", []values.Value{
		values.String{Value: "red"},
		values.String{Value: "blue"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.(values.String).Value != "linear-gradient(red, blue)" {
		t.Fatalf("got %q", got)
	}

	rgba, err := m.Call("rgba", []values.Value{
		values.Number{Value: 255}, values.Number{Value: 0}, values.Number{Value: 0}, values.Number{Value: 0.5},
	})
	if err != nil {
		t.Fatal(err)
	}
	if rgba.(values.String).Value != "rgba(255, 0, 0, 0.5)" {
		t.Fatalf("got %q", rgba)
	}
}

func TestBuiltinRoundUsesBankersRounding(t *testing.T) {
	m := NewFunctionManager()
	tests := []struct {
		in   float64
		want float64
	}{
		{0.5, 0},
		{1.5, 2},
		{2.5, 2},
		{3.5, 4},
		{-0.5, 0},
		{-1.5, -2},
		{2.4, 2},
		{2.6, 3},
	}
	for _, tt := range tests {
		got, err := m.Call("round", []values.Value{values.Number{Value: tt.in}})
		if err != nil {
			t.Fatal(err)
		}
		if n := got.(values.Number).Value; n != tt.want {
			t.Errorf("round(%v) = %v, want %v", tt.in, n, tt.want)
		}
	}
}

func TestBuiltinRoundToUsesBankersRoundingAtScale(t *testing.T) {
	m := NewFunctionManager()
	tests := []struct {
		v      float64
		places float64
		want   float64
	}{
		{0.125, 2, 0.12}, // 0.125 and 12.5 are both exact in binary
		{1.25, 1, 1.2},   // 1.25 and 12.5 are both exact in binary
		{1.375, 2, 1.38}, // 137.5 exact; 138 is the even neighbor
	}
	for _, tt := range tests {
		got, err := m.Call("round_to", []values.Value{values.Number{Value: tt.v}, values.Number{Value: tt.places}})
		if err != nil {
			t.Fatal(err)
		}
		if n := got.(values.Number).Value; math.Abs(n-tt.want) > 1e-9 {
			t.Errorf("round_to(%v, %v) = %v, want %v", tt.v, tt.places, n, tt.want)
		}
	}
}

func TestBuiltinTypeReturnsLowercasedLastSegment(t *testing.T) {
	m := NewFunctionManager()
	tests := []struct {
		arg  values.Value
		want string
	}{
		{values.Number{Value: 1}, "number"},
		{values.NumberWithUnit{Value: 1, Unit: "px"}, "px"},
		{values.String{Value: "s"}, "string"},
		{values.Boolean{Value: true}, "boolean"},
		{values.NewHexColor("#ff0080"), "hex"},
	}
	for _, tt := range tests {
		got, err := m.Call("type", []values.Value{tt.arg})
		if err != nil {
			t.Fatal(err)
		}
		if s := got.(values.String).Value; s != tt.want {
			t.Errorf("type(%s) = %q, want %q", tt.arg.TypeName(), s, tt.want)
		}
	}
}

func TestBuiltinExtraMathFunctions(t *testing.T) {
	m := NewFunctionManager()
	if _, err := m.Call("asin", []values.Value{values.Number{Value: 0.5}}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Call("atan2", []values.Value{values.Number{Value: 1}, values.Number{Value: 1}}); err != nil {
		t.Fatal(err)
	}
	got, err := m.Call("log", []values.Value{values.Number{Value: 8}, values.Number{Value: 2}})
	if err != nil {
		t.Fatal(err)
	}
	if n := got.(values.Number).Value; n < 2.999 || n > 3.001 {
		t.Fatalf("log(8, 2) = %v, want ~3", n)
	}
}
