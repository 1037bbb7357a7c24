package interpreter

import (
	"testing"

	"github.com/tokenscript-lang/tsi/internal/lexer"
	"github.com/tokenscript-lang/tsi/internal/parser"
	"github.com/tokenscript-lang/tsi/internal/values"
)

func run(t *testing.T, it *Interpreter, src string) values.Value {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	prog, err := p.ParseInline()
	if err != nil {
		t.Fatalf("parse error for %q: %v", src, err)
	}
	v, err := it.Run(prog)
	if err != nil {
		t.Fatalf("eval error for %q: %v", src, err)
	}
	return v
}

func TestArithmeticAndUnits(t *testing.T) {
	it := New(nil, nil, nil)
	tests := []struct {
		src  string
		want string
	}{
		{"16 * 1.5", "24"},
		{"16px * 1.5", "24px"},
		{"8 + 8px", "16px"},
		{"min(10px, 20px, 5px)", "5"}, // spec §9 Open Question 1: min/max drop units (spec §8 test #4)
		{"2 ^ 3 ^ 2", "512"}, // right-associative: 2^(3^2)
	}
	for _, tt := range tests {
		got := run(t, it, tt.src).String()
		if got != tt.want {
			t.Errorf("%s = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestReferenceResolution(t *testing.T) {
	it := New(nil, nil, nil)
	it.References["base.spacing"] = values.NumberWithUnit{Value: 16, Unit: "px"}

	got := run(t, it, "{base.spacing} * 2")
	if got.String() != "32px" {
		t.Fatalf("got %q, want 32px", got.String())
	}
}

func TestMissingReferenceErrorType(t *testing.T) {
	it := New(nil, nil, nil)
	l := lexer.New("{missing.one}")
	p := parser.New(l)
	prog, err := p.ParseInline()
	if err != nil {
		t.Fatal(err)
	}
	_, err = it.Run(prog)
	if _, ok := err.(*MissingReferenceError); !ok {
		t.Fatalf("expected *MissingReferenceError, got %T: %v", err, err)
	}
}

func TestVariableDeclarationAndAssignment(t *testing.T) {
	it := New(nil, nil, nil)
	src := `variable x: Number = 10; x = x + 5; return x;`
	l := lexer.New(src)
	p := parser.New(l)
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatal(err)
	}
	got, err := it.Run(prog)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "15" {
		t.Fatalf("got %q, want 15", got.String())
	}
}

func TestIfElifElse(t *testing.T) {
	it := New(nil, nil, nil)
	src := `
variable x: Number = 25;
if (x > 20) [
  x = 20;
] elif (x > 10) [
  x = 10;
] else [
  x = 0;
]
return x;`
	l := lexer.New(src)
	p := parser.New(l)
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatal(err)
	}
	got, err := it.Run(prog)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "20" {
		t.Fatalf("got %q, want 20 (x clamped)", got.String())
	}
}

func TestWhileLoop(t *testing.T) {
	it := New(nil, nil, nil)
	src := `
variable i: Number = 0;
variable total: Number = 0;
while (i < 5) [
  total = total + i;
  i = i + 1;
]
return total;`
	l := lexer.New(src)
	p := parser.New(l)
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatal(err)
	}
	got, err := it.Run(prog)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "10" {
		t.Fatalf("got %q, want 10 (0+1+2+3+4)", got.String())
	}
}

func TestWhileLoopLimitStopsRunaway(t *testing.T) {
	it := New(nil, nil, nil)
	src := `variable x: Number = 1; while (x > 0) [ x = x + 1; ] return x;`
	l := lexer.New(src)
	p := parser.New(l)
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatal(err)
	}
	_, err = it.Run(prog)
	if _, ok := err.(LoopLimitError); !ok {
		t.Fatalf("expected LoopLimitError, got %T: %v", err, err)
	}
}

func TestStringMethodCallViaAttrChain(t *testing.T) {
	it := New(nil, nil, nil)
	got := run(t, it, `'hello'.upper()`)
	if got.String() != "HELLO" {
		t.Fatalf("got %q", got.String())
	}
}

func TestListMethodChain(t *testing.T) {
	it := New(nil, nil, nil)
	got := run(t, it, `(1, 2, 3).length()`)
	if got.String() != "3" {
		t.Fatalf("got %q", got.String())
	}
}

func TestPassThroughBuiltinFormatsCall(t *testing.T) {
	it := New(nil, nil, nil)
	got := run(t, it, `linear-gradient(red, blue)`)
	if got.String() != "linear-gradient(red, blue)" {
		t.Fatalf("got %q", got.String())
	}
}

func TestColorAttributeAssignmentGoesThroughColorManager(t *testing.T) {
	it := New(nil, nil, nil)
	it.Colors.RegisterSpecWithSchema("rgb", "1.0", []string{"r", "g", "b"},
		map[string]string{"r": "number", "g": "number", "b": "number"},
		func(args []values.Value) (values.Color, error) {
			attrs := values.NewOrderedMap()
			attrs.Set("r", args[0])
			attrs.Set("g", args[1])
			attrs.Set("b", args[2])
			return values.NewDynamicColor("rgb", attrs), nil
		}, nil)
	it.Types.RegisterColorSubtype("rgb")

	l := lexer.New(`variable c: Color.Rgb = rgb(1, 2, 3); c.r = 200; return c.r;`)
	p := parser.New(l)
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatal(err)
	}
	got, err := it.Run(prog)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "200" {
		t.Fatalf("got %q, want 200", got.String())
	}

	l2 := lexer.New(`variable c: Color.Rgb = rgb(1, 2, 3); c.r = 'oops'; return c.r;`)
	p2 := parser.New(l2)
	prog2, err := p2.ParseProgram()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := it.Run(prog2); err == nil {
		t.Fatal("expected an INVALID_ATTRIBUTE_TYPE error assigning a String to a number attribute")
	}
}
