package managers

import (
	"fmt"

	"github.com/tokenscript-lang/tsi/internal/values"
)

// ColorInitializer builds a Color.<Subtype> value from positional
// constructor arguments, e.g. `rgb(255, 0, 128)` (spec §4.6.2).
type ColorInitializer func(args []values.Value) (values.Color, error)

// ColorConversion converts one Color subtype's attribute set into another's
// (an edge in the color conversion graph).
type ColorConversion func(values.Color) (values.Color, error)

// ColorFormatter renders a Color in its subtype's canonical textual form,
// e.g. "#ff0080" for Hex or "rgb(255, 0, 128)" for Rgb. Falls back to
// Color.String when a subtype registers no formatter.
type ColorFormatter func(values.Color) string

type colorSpec struct {
	subtype     string
	attrs       []string
	schema      map[string]string // attr name -> "number"|"string"|"color"; nil if the spec declared none (spec §4.3 MISSING_SCHEMA)
	initializer ColorInitializer
	formatter   ColorFormatter
}

// ColorManagerError is a tagged error for schema-enforced attribute
// assignment on Color.Dynamic values (spec §4.3, §7): the tag names are the
// spec's own closed set, not free-form messages, so callers can switch on
// them without string matching.
type ColorManagerError struct {
	Tag     string
	Message string
}

func (e *ColorManagerError) Error() string { return fmt.Sprintf("%s: %s", e.Tag, e.Message) }

// Tag values for ColorManagerError (spec §4.3, §7).
const (
	TagStringValueAssignment = "STRING_VALUE_ASSIGNMENT"
	TagAttributeChainTooLong = "ATTRIBUTE_CHAIN_TOO_LONG"
	TagMissingSpec           = "MISSING_SPEC"
	TagMissingSchema         = "MISSING_SCHEMA"
	TagInvalidAttributeType  = "INVALID_ATTRIBUTE_TYPE"
)

// ColorManager holds every registered color subtype and the conversion
// graph between them (spec §4.6.2).
type ColorManager struct {
	specs   *versionedRegistry[colorSpec]
	byName  map[string]colorSpec // subtype name -> most-recently resolved spec, for fast initializer/formatter lookup
	convert *Graph
}

// NewColorManager returns a manager with no subtypes registered; every
// subtype (hex, rgb, hsl, ...) is registered by callers via RegisterSpec, the
// same way a token spec pack would (spec §6 ColorSpec schema).
func NewColorManager() *ColorManager {
	m := &ColorManager{
		specs:   newVersionedRegistry[colorSpec](),
		byName:  make(map[string]colorSpec),
		convert: NewGraph(),
	}
	return m
}

// RegisterSpec registers a color subtype under name/version with its
// constructor, attribute order and optional formatter; conversions to/from
// other subtypes are added separately with RegisterConversion. schema may be nil,
// meaning the spec declared no attribute-type schema (spec §6 ColorSpec's
// `schema` is optional); SetAttribute on such a subtype then fails with
// MISSING_SCHEMA rather than guessing a type.
func (m *ColorManager) RegisterSpec(name, version string, attrs []string, init ColorInitializer, format ColorFormatter) error {
	return m.RegisterSpecWithSchema(name, version, attrs, nil, init, format)
}

// RegisterSpecWithSchema is RegisterSpec with an explicit attr->type schema
// (spec §6 ColorSpec.schema.properties), required for SetAttribute's
// schema-type enforcement (spec §4.3).
func (m *ColorManager) RegisterSpecWithSchema(name, version string, attrs []string, schema map[string]string, init ColorInitializer, format ColorFormatter) error {
	spec := colorSpec{subtype: name, attrs: attrs, schema: schema, initializer: init, formatter: format}
	if err := m.specs.Register(name, version, spec); err != nil {
		return err
	}
	m.byName[name] = spec
	return nil
}

// SetAttribute enforces spec §4.3's schema-typed attribute assignment on a
// Color.Dynamic value: the attribute must be declared in the subtype's
// schema, and v's runtime type must match the schema's declared type
// ("number", "string", or "color"). Hex colors have no schema at all (they
// carry their value as a literal string, not named attributes), so
// assigning to one is STRING_VALUE_ASSIGNMENT rather than MISSING_SPEC.
func (m *ColorManager) SetAttribute(c values.Color, name string, v values.Value) (values.Color, error) {
	if c.Kind == values.ColorHex {
		return values.Color{}, &ColorManagerError{Tag: TagStringValueAssignment,
			Message: "Color.Hex has no settable attributes; it is a literal string value"}
	}
	spec, ok := m.byName[c.Subtype]
	if !ok {
		return values.Color{}, &ColorManagerError{Tag: TagMissingSpec,
			Message: fmt.Sprintf("no registered spec for color subtype %q", c.Subtype)}
	}
	if spec.schema == nil {
		return values.Color{}, &ColorManagerError{Tag: TagMissingSchema,
			Message: fmt.Sprintf("color subtype %q declares no attribute schema", c.Subtype)}
	}
	attrType, ok := spec.schema[name]
	if !ok {
		return values.Color{}, &ColorManagerError{Tag: TagInvalidAttributeType,
			Message: fmt.Sprintf("%q is not a schema attribute of %q", name, c.Subtype)}
	}
	if !attrTypeMatches(attrType, v) {
		return values.Color{}, &ColorManagerError{Tag: TagInvalidAttributeType,
			Message: fmt.Sprintf("attribute %q of %q expects %s, got %s", name, c.Subtype, attrType, v.TypeName())}
	}
	c.Attrs.Set(name, v.DeepCopy())
	return c, nil
}

// attrTypeMatches checks v's runtime kind against one of the three schema
// attribute types spec §3/§6 allow ("number", "string", "color").
func attrTypeMatches(attrType string, v values.Value) bool {
	switch attrType {
	case "number":
		switch v.(type) {
		case values.Number, values.NumberWithUnit:
			return true
		}
		return false
	case "string":
		_, ok := v.(values.String)
		return ok
	case "color":
		_, ok := v.(values.Color)
		return ok
	default:
		return false
	}
}

// RegisterConversion adds a directed conversion edge from one subtype to
// another (spec §4.6.2: conversions need not be symmetric; `.to.hex()` may
// exist for "rgb" without "hex" converting back).
func (m *ColorManager) RegisterConversion(from, to string, fn ColorConversion) {
	m.convert.AddEdge(from, to, func(in any) (any, error) {
		return fn(in.(values.Color))
	})
}

// Initialize constructs a Color.<subtype> value by name.
func (m *ColorManager) Initialize(subtype string, args []values.Value) (values.Color, error) {
	spec, ok := m.byName[subtype]
	if !ok {
		return values.Color{}, fmt.Errorf("unknown color subtype %q", subtype)
	}
	if spec.initializer == nil {
		return values.Color{}, fmt.Errorf("color subtype %q has no initializer", subtype)
	}
	return spec.initializer(args)
}

// Convert walks the shortest registered conversion chain from c's subtype
// (or "hex" for literal colors) to toSubtype.
func (m *ColorManager) Convert(c values.Color, toSubtype string) (values.Color, error) {
	from := "hex"
	if c.Kind == values.ColorDynamic {
		from = c.Subtype
	}
	if from == toSubtype {
		return c, nil
	}
	path, ok := m.convert.ShortestPath(from, toSubtype)
	if !ok {
		return values.Color{}, fmt.Errorf("no conversion path from %q to %q", from, toSubtype)
	}
	cur := any(c)
	for _, edge := range path {
		next, err := edge.Apply(cur)
		if err != nil {
			return values.Color{}, fmt.Errorf("converting to %q: %w", edge.To, err)
		}
		cur = next
	}
	return cur.(values.Color), nil
}

// Format renders c via its subtype's registered formatter, falling back to
// Color.String.
func (m *ColorManager) Format(c values.Color) string {
	subtype := "hex"
	if c.Kind == values.ColorDynamic {
		subtype = c.Subtype
	}
	if spec, ok := m.byName[subtype]; ok && spec.formatter != nil {
		return spec.formatter(c)
	}
	return c.String()
}

// Clone returns a ColorManager with its own mutable registration slots
// (spec §5: independent resolver batches may register extra subtypes without
// affecting each other) while the closures backing each already-registered
// spec/conversion are shared, since those are immutable once built.
func (m *ColorManager) Clone() *ColorManager {
	byName := make(map[string]colorSpec, len(m.byName))
	for k, v := range m.byName {
		byName[k] = v
	}
	return &ColorManager{
		specs:   m.specs.Clone(func(s colorSpec) colorSpec { return s }),
		byName:  byName,
		convert: m.convert.Clone(),
	}
}

// ToProxy is the receiver of a `.to` chain (e.g. `color.to.hex()`): each
// method call on it converts the source to the named subtype and returns the
// converted Color. The interpreter constructs one of
// these whenever it sees the `.to` attribute on a Color.
type ToProxy struct {
	Manager *ColorManager
	Source  values.Color
}

func (p *ToProxy) TypeName() string       { return "ColorConversionProxy" }
func (p *ToProxy) String() string         { return p.Manager.Format(p.Source) }
func (p *ToProxy) Equals(values.Value) bool { return false }
func (p *ToProxy) TypeEquals(o values.Value) bool {
	_, ok := o.(*ToProxy)
	return ok
}
func (p *ToProxy) DeepCopy() values.Value { return &ToProxy{Manager: p.Manager, Source: p.Source} }

func (p *ToProxy) HasMethod(name string) bool {
	_, ok := p.Manager.byName[name]
	return ok
}

func (p *ToProxy) CallMethod(name string, args []values.Value) (values.Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("%s takes no arguments", name)
	}
	converted, err := p.Manager.Convert(p.Source, name)
	if err != nil {
		return nil, err
	}
	return converted, nil
}
