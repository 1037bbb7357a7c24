package ops

import (
	"testing"

	"github.com/tokenscript-lang/tsi/internal/values"
)

type fakeConverter struct{}

func (fakeConverter) ConvertTo(value float64, from, to string) (float64, error) {
	if from == "em" && to == "px" {
		return value * 16, nil
	}
	return 0, &OpError{Op: "convert", Left: from, Right: to}
}

func TestAddNumberAndUnit(t *testing.T) {
	k := New(nil)
	got, err := k.Add(values.Number{Value: 8}, values.NumberWithUnit{Value: 8, Unit: "px"})
	if err != nil {
		t.Fatal(err)
	}
	nu := got.(values.NumberWithUnit)
	if nu.Value != 16 || nu.Unit != "px" {
		t.Fatalf("got %v", nu)
	}
}

func TestAddMismatchedUnitsWithoutConverterErrors(t *testing.T) {
	k := New(nil)
	_, err := k.Add(values.NumberWithUnit{Value: 1, Unit: "em"}, values.NumberWithUnit{Value: 1, Unit: "px"})
	if err == nil {
		t.Fatal("expected error reconciling mismatched units with no converter")
	}
}

func TestAddMismatchedUnitsWithConverter(t *testing.T) {
	k := New(fakeConverter{})
	got, err := k.Add(values.NumberWithUnit{Value: 1, Unit: "px"}, values.NumberWithUnit{Value: 1, Unit: "em"})
	if err != nil {
		t.Fatal(err)
	}
	nu := got.(values.NumberWithUnit)
	if nu.Value != 17 || nu.Unit != "px" {
		t.Fatalf("got %v, want 17px", nu)
	}
}

func TestStringConcatViaAdd(t *testing.T) {
	k := New(nil)
	got, err := k.Add(values.String{Value: "a"}, values.String{Value: "b"})
	if err != nil {
		t.Fatal(err)
	}
	if got.(values.String).Value != "ab" {
		t.Fatalf("got %v", got)
	}
}

func TestDivisionByZero(t *testing.T) {
	k := New(nil)
	if _, err := k.Div(values.Number{Value: 1}, values.Number{Value: 0}); err == nil {
		t.Fatal("expected division by zero error")
	}
}

func TestDivSameUnitCancels(t *testing.T) {
	k := New(nil)
	got, err := k.Div(values.NumberWithUnit{Value: 10, Unit: "px"}, values.NumberWithUnit{Value: 2, Unit: "px"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.(values.Number); !ok {
		t.Fatalf("expected unit to cancel to bare Number, got %T", got)
	}
	if got.(values.Number).Value != 5 {
		t.Fatalf("got %v", got)
	}
}

func TestPowRightAssociativeValueOnly(t *testing.T) {
	k := New(nil)
	got, err := k.Pow(values.Number{Value: 2}, values.Number{Value: 10})
	if err != nil {
		t.Fatal(err)
	}
	if got.(values.Number).Value != 1024 {
		t.Fatalf("got %v", got)
	}
}

func TestCompareOperators(t *testing.T) {
	k := New(nil)
	cases := []struct {
		op   string
		want bool
	}{
		{"<", true}, {"<=", true}, {">", false}, {">=", false},
	}
	for _, c := range cases {
		got, err := k.Compare(c.op, values.Number{Value: 1}, values.Number{Value: 2})
		if err != nil {
			t.Fatal(err)
		}
		if got.(values.Boolean).Value != c.want {
			t.Fatalf("%s: got %v, want %v", c.op, got, c.want)
		}
	}
}

func TestEqualAcrossNumberAndUnitless(t *testing.T) {
	k := New(nil)
	got := k.Equal(values.Number{Value: 5}, values.NumberWithUnit{Value: 5, Unit: ""})
	if !got.(values.Boolean).Value {
		t.Fatal("expected 5 == 5(no unit) to be true")
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		v    values.Value
		want bool
	}{
		{values.Number{Value: 0}, false},
		{values.Number{Value: 1}, true},
		{values.String{Value: ""}, false},
		{values.String{Value: "x"}, true},
		{values.Null{}, false},
		{&values.List{}, false},
		{&values.List{Elements: []values.Value{values.Null{}}}, true},
	}
	for _, c := range cases {
		if got := Truthy(c.v); got != c.want {
			t.Fatalf("Truthy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestNegate(t *testing.T) {
	k := New(nil)
	got, err := k.Negate(values.NumberWithUnit{Value: 4, Unit: "px"})
	if err != nil {
		t.Fatal(err)
	}
	if got.(values.NumberWithUnit).Value != -4 {
		t.Fatalf("got %v", got)
	}
}
