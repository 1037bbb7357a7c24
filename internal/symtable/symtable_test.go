package symtable

import (
	"testing"

	"github.com/tokenscript-lang/tsi/internal/values"
)

func TestDeclareAndGetCaseInsensitive(t *testing.T) {
	root := NewRoot()
	if err := root.Declare("Spacing", values.Number{Value: 16}); err != nil {
		t.Fatal(err)
	}
	v, ok := root.Get("SPACING")
	if !ok {
		t.Fatal("expected case-insensitive lookup to succeed")
	}
	if v.(values.Number).Value != 16 {
		t.Fatalf("got %v", v)
	}
}

func TestRedeclareInSameScopeErrors(t *testing.T) {
	root := NewRoot()
	if err := root.Declare("x", values.Null{}); err != nil {
		t.Fatal(err)
	}
	if err := root.Declare("x", values.Null{}); err == nil {
		t.Fatal("expected redeclaration error")
	}
}

func TestChildScopeShadowsAndFallsBack(t *testing.T) {
	root := NewRoot()
	_ = root.Declare("x", values.Number{Value: 1})
	child := root.Child()
	_ = child.Declare("y", values.Number{Value: 2})

	if _, ok := child.Get("x"); !ok {
		t.Fatal("expected child to see parent's x")
	}
	if err := child.Set("x", values.Number{Value: 99}); err != nil {
		t.Fatal(err)
	}
	v, _ := root.Get("x")
	if v.(values.Number).Value != 99 {
		t.Fatalf("expected parent x updated via child Set, got %v", v)
	}

	if _, ok := root.Get("y"); ok {
		t.Fatal("parent should not see child-only binding y")
	}
}

func TestSetUndeclaredErrors(t *testing.T) {
	root := NewRoot()
	if err := root.Set("never_declared", values.Null{}); err == nil {
		t.Fatal("expected error assigning to undeclared variable")
	}
}

func TestTypeRegistryValidate(t *testing.T) {
	r := NewTypeRegistry()
	if err := r.Validate("Number", ""); err != nil {
		t.Fatalf("Number should validate: %v", err)
	}
	if err := r.Validate("Bogus", ""); err == nil {
		t.Fatal("expected error for unknown base type")
	}
	if err := r.Validate("Color", "rgb"); err == nil {
		t.Fatal("expected error: rgb not yet registered")
	}
	r.RegisterColorSubtype("rgb")
	if err := r.Validate("Color", "rgb"); err != nil {
		t.Fatalf("rgb should validate after registration: %v", err)
	}
	if err := r.Validate("Number", "rgb"); err == nil {
		t.Fatal("expected error: Number does not support subtypes")
	}
}
