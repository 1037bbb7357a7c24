package managers

import (
	"fmt"
	"testing"

	"github.com/tokenscript-lang/tsi/internal/values"
)

func newTestColorManager() *ColorManager {
	m := NewColorManager()
	m.RegisterSpec("hex", "latest", nil, func(args []values.Value) (values.Color, error) {
		return values.Color{}, fmt.Errorf("hex has no constructor")
	}, func(c values.Color) string { return c.Hex })

	m.RegisterSpec("rgb", "1.0", []string{"r", "g", "b"}, func(args []values.Value) (values.Color, error) {
		if len(args) != 3 {
			return values.Color{}, fmt.Errorf("rgb expects 3 arguments")
		}
		attrs := values.NewOrderedMap()
		attrs.Set("r", args[0])
		attrs.Set("g", args[1])
		attrs.Set("b", args[2])
		return values.NewDynamicColor("rgb", attrs), nil
	}, func(c values.Color) string {
		r, _ := c.Attrs.Get("r")
		g, _ := c.Attrs.Get("g")
		b, _ := c.Attrs.Get("b")
		return fmt.Sprintf("rgb(%s, %s, %s)", r.String(), g.String(), b.String())
	})

	m.RegisterConversion("rgb", "hex", func(c values.Color) (values.Color, error) {
		r, _ := c.Attrs.Get("r")
		g, _ := c.Attrs.Get("g")
		b, _ := c.Attrs.Get("b")
		hex := fmt.Sprintf("#%02x%02x%02x",
			int(r.(values.Number).Value), int(g.(values.Number).Value), int(b.(values.Number).Value))
		return values.NewHexColor(hex), nil
	})

	return m
}

func TestColorManagerInitializeAndConvert(t *testing.T) {
	m := newTestColorManager()
	rgb, err := m.Initialize("rgb", []values.Value{
		values.Number{Value: 255}, values.Number{Value: 0}, values.Number{Value: 128},
	})
	if err != nil {
		t.Fatal(err)
	}
	if rgb.TypeName() != "Color.Rgb" {
		t.Fatalf("got type %q", rgb.TypeName())
	}

	hex, err := m.Convert(rgb, "hex")
	if err != nil {
		t.Fatal(err)
	}
	if hex.Hex != "#ff0080" {
		t.Fatalf("got %q, want #ff0080", hex.Hex)
	}
}

func TestColorManagerFormat(t *testing.T) {
	m := newTestColorManager()
	rgb, _ := m.Initialize("rgb", []values.Value{values.Number{Value: 1}, values.Number{Value: 2}, values.Number{Value: 3}})
	if got, want := m.Format(rgb), "rgb(1, 2, 3)"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestToProxyConvertsAndFormats(t *testing.T) {
	m := newTestColorManager()
	rgb, _ := m.Initialize("rgb", []values.Value{values.Number{Value: 255}, values.Number{Value: 0}, values.Number{Value: 128}})
	proxy := &ToProxy{Manager: m, Source: rgb}

	result, err := proxy.CallMethod("hex", nil)
	if err != nil {
		t.Fatal(err)
	}
	hex := result.(values.Color)
	if hex.Hex != "#ff0080" {
		t.Fatalf("got %q", hex.Hex)
	}
}

func TestColorManagerUnknownSubtype(t *testing.T) {
	m := newTestColorManager()
	if _, err := m.Initialize("cmyk", nil); err == nil {
		t.Fatal("expected error for unregistered subtype")
	}
}

func TestColorManagerCloneIsolatesRegistration(t *testing.T) {
	m := newTestColorManager()
	clone := m.Clone()

	err := clone.RegisterSpec("cmyk", "1.0", []string{"c", "m", "y", "k"}, func(args []values.Value) (values.Color, error) {
		attrs := values.NewOrderedMap()
		attrs.Set("c", args[0])
		return values.NewDynamicColor("cmyk", attrs), nil
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := clone.Initialize("cmyk", []values.Value{values.Number{Value: 1}}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Initialize("cmyk", nil); err == nil {
		t.Fatal("expected the original manager to be unaffected by the clone's registration")
	}
	// The original's already-registered "rgb" still converts through the
	// cloned graph too, since Graph.Clone copies edges rather than sharing
	// the adjacency map.
	rgb, _ := m.Initialize("rgb", []values.Value{values.Number{Value: 1}, values.Number{Value: 2}, values.Number{Value: 3}})
	if _, err := clone.Convert(rgb, "hex"); err != nil {
		t.Fatal(err)
	}
}

func newSchemaTestColorManager() *ColorManager {
	m := NewColorManager()
	m.RegisterSpecWithSchema("rgb", "1.0", []string{"r", "g", "b"},
		map[string]string{"r": "number", "g": "number", "b": "number"},
		func(args []values.Value) (values.Color, error) {
			attrs := values.NewOrderedMap()
			attrs.Set("r", args[0])
			attrs.Set("g", args[1])
			attrs.Set("b", args[2])
			return values.NewDynamicColor("rgb", attrs), nil
		}, nil)
	return m
}

func TestColorManagerSetAttributeEnforcesSchema(t *testing.T) {
	m := newSchemaTestColorManager()
	rgb, _ := m.Initialize("rgb", []values.Value{values.Number{Value: 1}, values.Number{Value: 2}, values.Number{Value: 3}})

	updated, err := m.SetAttribute(rgb, "r", values.Number{Value: 200})
	if err != nil {
		t.Fatal(err)
	}
	r, _ := updated.Attrs.Get("r")
	if r.(values.Number).Value != 200 {
		t.Fatalf("got %v, want 200", r)
	}

	if _, err := m.SetAttribute(rgb, "r", values.String{Value: "oops"}); err == nil {
		t.Fatal("expected a type-mismatch error")
	} else if ce, ok := err.(*ColorManagerError); !ok || ce.Tag != TagInvalidAttributeType {
		t.Fatalf("got %v, want INVALID_ATTRIBUTE_TYPE", err)
	}

	if _, err := m.SetAttribute(rgb, "nope", values.Number{Value: 1}); err == nil {
		t.Fatal("expected an error for an undeclared attribute")
	} else if ce, ok := err.(*ColorManagerError); !ok || ce.Tag != TagInvalidAttributeType {
		t.Fatalf("got %v, want INVALID_ATTRIBUTE_TYPE", err)
	}
}

func TestColorManagerSetAttributeOnHexIsStringValueAssignment(t *testing.T) {
	m := newSchemaTestColorManager()
	hex := values.NewHexColor("#ff0080")
	_, err := m.SetAttribute(hex, "r", values.Number{Value: 1})
	if err == nil {
		t.Fatal("expected an error assigning an attribute to a hex color")
	}
	if ce, ok := err.(*ColorManagerError); !ok || ce.Tag != TagStringValueAssignment {
		t.Fatalf("got %v, want STRING_VALUE_ASSIGNMENT", err)
	}
}

func TestColorManagerSetAttributeMissingSpecAndSchema(t *testing.T) {
	m := NewColorManager()
	attrs := values.NewOrderedMap()
	attrs.Set("v", values.Number{Value: 1})
	unregistered := values.NewDynamicColor("mystery", attrs)
	if _, err := m.SetAttribute(unregistered, "v", values.Number{Value: 2}); err == nil {
		t.Fatal("expected an error for an unregistered subtype")
	} else if ce, ok := err.(*ColorManagerError); !ok || ce.Tag != TagMissingSpec {
		t.Fatalf("got %v, want MISSING_SPEC", err)
	}

	m.RegisterSpec("gray", "1.0", []string{"v"}, func(args []values.Value) (values.Color, error) {
		attrs := values.NewOrderedMap()
		attrs.Set("v", args[0])
		return values.NewDynamicColor("gray", attrs), nil
	}, nil)
	gray, _ := m.Initialize("gray", []values.Value{values.Number{Value: 1}})
	if _, err := m.SetAttribute(gray, "v", values.Number{Value: 2}); err == nil {
		t.Fatal("expected an error for a spec with no schema")
	} else if ce, ok := err.(*ColorManagerError); !ok || ce.Tag != TagMissingSchema {
		t.Fatalf("got %v, want MISSING_SCHEMA", err)
	}
}
