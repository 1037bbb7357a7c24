package values

import (
	"fmt"
	"strings"
)

// ColorKind distinguishes the two Color variants spec §4.3 describes: a
// literal hex string, or a dynamic named-attribute color (rgb(...),
// hsl(...), any subtype a ColorSpec registers).
type ColorKind int

const (
	ColorHex ColorKind = iota
	ColorDynamic
)

// Color is TokenScript's color value. Conversion between subtypes
// (`.to.hex()`, `.to.rgb()`, ...) is performed by the color manager, which
// walks its registered conversion graph and returns a new Color — this type
// only carries the data, not the conversion logic (spec §4.6.2).
type Color struct {
	Kind ColorKind

	// ColorHex
	Hex string // normalized lowercase, always "#rrggbb"

	// ColorDynamic
	Subtype string // e.g. "rgb", "hsl"
	Attrs   *OrderedMap
}

// NewHexColor normalizes a 3- or 6-digit hex string to 6 digits, lowercase.
func NewHexColor(raw string) Color {
	h := strings.ToLower(raw)
	if len(h) == 4 { // "#rgb"
		var sb strings.Builder
		sb.WriteByte('#')
		for _, c := range h[1:] {
			sb.WriteRune(c)
			sb.WriteRune(c)
		}
		h = sb.String()
	}
	return Color{Kind: ColorHex, Hex: h}
}

func NewDynamicColor(subtype string, attrs *OrderedMap) Color {
	return Color{Kind: ColorDynamic, Subtype: subtype, Attrs: attrs}
}

func (c Color) TypeName() string {
	if c.Kind == ColorHex {
		return "Color.Hex"
	}
	return "Color." + capitalize(c.Subtype)
}

func (c Color) String() string {
	if c.Kind == ColorHex {
		return c.Hex
	}
	keys := c.Attrs.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		v, _ := c.Attrs.Get(k)
		parts[i] = v.String()
	}
	return c.Subtype + "(" + strings.Join(parts, ", ") + ")"
}

func (c Color) Equals(other Value) bool {
	o, ok := other.(Color)
	if !ok || o.Kind != c.Kind {
		return false
	}
	if c.Kind == ColorHex {
		return o.Hex == c.Hex
	}
	return o.Subtype == c.Subtype && c.Attrs.Equals(o.Attrs)
}

func (c Color) TypeEquals(other Value) bool { return other.TypeName() == c.TypeName() }

func (c Color) DeepCopy() Value {
	if c.Kind == ColorHex {
		return c
	}
	return Color{Kind: ColorDynamic, Subtype: c.Subtype, Attrs: c.Attrs.Clone()}
}

func (c Color) HasAttribute(name string) bool {
	if c.Kind == ColorHex {
		return false
	}
	_, ok := c.Attrs.Get(name)
	return ok
}

func (c Color) GetAttribute(name string) (Value, error) {
	if c.Kind == ColorDynamic {
		if v, ok := c.Attrs.Get(name); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%s has no attribute %q", c.TypeName(), name)
}

func (c Color) SetAttribute(name string, v Value) error {
	return fmt.Errorf("%s attribute %q is not assignable; colors are immutable", c.TypeName(), name)
}
