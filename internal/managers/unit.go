package managers

import "fmt"

// UnitKind classifies a registered unit per spec §4.6.3: absolute units
// convert to one another via a fixed factor; relative units (em, rem, %)
// only convert when given an external reference, which this manager does
// not carry, so cross-unit arithmetic between two different relative units
// is rejected rather than guessed at.
type UnitKind int

const (
	UnitAbsolute UnitKind = iota
	UnitRelative
)

type unitSpec struct {
	name   string
	kind   UnitKind
	family string  // e.g. "length", "angle"; only same-family absolute units convert
	toBase float64 // multiply by this to get the family's base unit
}

// UnitManager resolves arithmetic and conversions between registered units
// (spec §4.6.3). "px" is the built-in absolute base unit of the "length"
// family; additional absolute length units (in, cm, mm, pt) and the
// "angle" family ("deg") are seeded with their CSS-standard factors, and
// the remaining closed-set units (em, rem, vw, vh, %) are relative: they
// only convert given an external reference the manager does not carry, so
// cross-unit arithmetic between two different relative units is rejected
// rather than guessed at.
type UnitManager struct {
	specs  *versionedRegistry[unitSpec]
	byName map[string]unitSpec
}

// NewUnitManager seeds the registry with spec §3's closed unit set: "px" is
// the length family's absolute base; in/cm/mm/pt convert to it by their
// CSS-standard factor; "deg" anchors its own "angle" family; em/rem/vw/vh/%
// are registered relative (no conversion without external context).
func NewUnitManager() *UnitManager {
	m := &UnitManager{specs: newVersionedRegistry[unitSpec](), byName: make(map[string]unitSpec)}
	m.mustRegister("px", "1.0", UnitAbsolute, "length", 1.0)
	m.mustRegister("in", "1.0", UnitAbsolute, "length", 96.0)
	m.mustRegister("cm", "1.0", UnitAbsolute, "length", 96.0/2.54)
	m.mustRegister("mm", "1.0", UnitAbsolute, "length", 96.0/25.4)
	m.mustRegister("pt", "1.0", UnitAbsolute, "length", 96.0/72.0)
	m.mustRegister("deg", "1.0", UnitAbsolute, "angle", 1.0)
	m.mustRegister("em", "1.0", UnitRelative, "", 16.0)
	m.mustRegister("rem", "1.0", UnitRelative, "", 16.0)
	m.mustRegister("vw", "1.0", UnitRelative, "", 0.0)
	m.mustRegister("vh", "1.0", UnitRelative, "", 0.0)
	m.mustRegister("%", "1.0", UnitRelative, "", 0.0)
	return m
}

func (m *UnitManager) mustRegister(name, version string, kind UnitKind, family string, toBase float64) {
	if err := m.registerUnit(name, version, kind, family, toBase); err != nil {
		panic(err)
	}
}

// RegisterUnit adds a unit in its own single-member family, converting only
// to itself. Use this for units outside the built-in length/angle
// families (spec §6 UnitSpec registration); toBase is advisory for
// UnitRelative units.
func (m *UnitManager) RegisterUnit(name, version string, kind UnitKind, toBase float64) error {
	return m.registerUnit(name, version, kind, name, toBase)
}

// RegisterUnitInFamily adds a unit that converts against every other
// absolute unit already registered in the same family.
func (m *UnitManager) RegisterUnitInFamily(name, version string, kind UnitKind, family string, toBase float64) error {
	return m.registerUnit(name, version, kind, family, toBase)
}

func (m *UnitManager) registerUnit(name, version string, kind UnitKind, family string, toBase float64) error {
	spec := unitSpec{name: name, kind: kind, family: family, toBase: toBase}
	if err := m.specs.Register(name, version, spec); err != nil {
		return err
	}
	m.byName[name] = spec
	return nil
}

// ConvertTo implements ops.UnitConverter: converts value expressed in
// `from` units into `to` units. Only absolute units sharing the same
// family convert; everything else is an error (spec §4.6.3: "mixing two
// different non-scalar units is an error" unless a conversion edge
// reconciles them).
func (m *UnitManager) ConvertTo(value float64, from, to string) (float64, error) {
	if from == to {
		return value, nil
	}
	fromSpec, ok := m.byName[from]
	if !ok {
		return 0, fmt.Errorf("unknown unit %q", from)
	}
	toSpec, ok := m.byName[to]
	if !ok {
		return 0, fmt.Errorf("unknown unit %q", to)
	}
	if fromSpec.kind != UnitAbsolute || toSpec.kind != UnitAbsolute {
		return 0, fmt.Errorf("cannot convert between %q and %q without a reference size", from, to)
	}
	if fromSpec.family != toSpec.family {
		return 0, fmt.Errorf("cannot convert between %q and %q: different unit families", from, to)
	}
	base := value * fromSpec.toBase
	return base / toSpec.toBase, nil
}

// CommonFormat implements spec §4.6.3's convert_to_common_format: given a
// list of (value, unit) pairs, pick the first absolute unit encountered as
// the common target and convert every other absolute-unit value into it.
// A relative unit that differs from the target makes CommonFormat return
// ConvertTo's error, since relative units can't be reconciled without
// context.
func (m *UnitManager) CommonFormat(values []float64, units []string) ([]float64, string, error) {
	if len(values) != len(units) {
		return nil, "", fmt.Errorf("values/units length mismatch")
	}
	target := ""
	for _, u := range units {
		if u == "" {
			continue
		}
		spec, ok := m.byName[u]
		if ok && spec.kind == UnitAbsolute {
			target = u
			break
		}
		if target == "" {
			target = u
		}
	}
	out := make([]float64, len(values))
	for i, v := range values {
		if units[i] == target || units[i] == "" {
			out[i] = v
			continue
		}
		converted, err := m.ConvertTo(v, units[i], target)
		if err != nil {
			return nil, "", err
		}
		out[i] = converted
	}
	return out, target, nil
}

// Clone returns a UnitManager with its own mutable registration slot (spec
// §5), sharing the immutable unitSpec values themselves.
func (m *UnitManager) Clone() *UnitManager {
	byName := make(map[string]unitSpec, len(m.byName))
	for k, v := range m.byName {
		byName[k] = v
	}
	return &UnitManager{
		specs:  m.specs.Clone(func(s unitSpec) unitSpec { return s }),
		byName: byName,
	}
}

// IsRelative reports whether unit was registered as UnitRelative.
func (m *UnitManager) IsRelative(unit string) bool {
	spec, ok := m.byName[unit]
	return ok && spec.kind == UnitRelative
}

// Known reports whether unit has been registered at all.
func (m *UnitManager) Known(unit string) bool {
	_, ok := m.byName[unit]
	return ok
}
