// Package symtable implements TokenScript's variable scope chain and the
// root-frame type registry used to validate `variable x: Type.Sub` and
// `variable x: Type` declarations (spec §4.4).
//
// This mirrors the teacher's internal/interp Environment (a scope-chain
// stack of frames with a shared root for globals), generalized with a
// case-insensitive lookup (spec §4.4: "variable and attribute names are
// matched case-insensitively") and a type registry the teacher's Environment
// doesn't need, since DWScript resolves declared types at compile time
// through its own internal/types package instead of a runtime registry.
package symtable

import (
	"fmt"
	"strings"

	"github.com/tokenscript-lang/tsi/internal/values"
)

// Scope is one frame in the variable scope chain: the root (script-level)
// scope, or a nested block introduced by if/while (spec §4.4: blocks open a
// child scope that is discarded when the block exits).
type Scope struct {
	vars   map[string]values.Value
	parent *Scope
}

// NewRoot creates the outermost scope.
func NewRoot() *Scope {
	return &Scope{vars: make(map[string]values.Value)}
}

// Child opens a nested scope whose lookups fall back to s.
func (s *Scope) Child() *Scope {
	return &Scope{vars: make(map[string]values.Value), parent: s}
}

func normalize(name string) string { return strings.ToLower(name) }

// Declare binds name in this scope (shadowing any outer binding of the same
// name). Redeclaring a name already bound in THIS scope is an error (spec
// §4.4/§4.7: "declaring a variable twice in the same scope is an error").
func (s *Scope) Declare(name string, v values.Value) error {
	key := normalize(name)
	if _, exists := s.vars[key]; exists {
		return fmt.Errorf("variable %q is already declared in this scope", name)
	}
	s.vars[key] = v
	return nil
}

// Get looks up name, walking outward through parent scopes.
func (s *Scope) Get(name string) (values.Value, bool) {
	key := normalize(name)
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set updates an already-declared binding in the nearest enclosing scope
// that has it; it does not create a new binding (spec §4.7: assignment to
// an undeclared name is an error).
func (s *Scope) Set(name string, v values.Value) error {
	key := normalize(name)
	for sc := s; sc != nil; sc = sc.parent {
		if _, ok := sc.vars[key]; ok {
			sc.vars[key] = v
			return nil
		}
	}
	return fmt.Errorf("assignment to undeclared variable %q", name)
}

// TypeRegistry tracks the closed set of base type names plus whatever color
// subtypes a ColorManager has registered, so declarations like
// `variable c: Color.Rgb;` can be validated without the symtable package
// importing the managers package (which itself depends on values, not
// symtable — keeping the dependency graph one-directional).
type TypeRegistry struct {
	baseTypes     map[string]bool
	colorSubtypes map[string]bool
}

var builtinBaseTypes = []string{
	"Number", "NumberWithUnit", "String", "Boolean", "Color", "List", "Dictionary", "Null",
}

// NewTypeRegistry returns a registry seeded with TokenScript's built-in base
// types (spec §3 Value variants).
func NewTypeRegistry() *TypeRegistry {
	r := &TypeRegistry{
		baseTypes:     make(map[string]bool),
		colorSubtypes: make(map[string]bool),
	}
	for _, t := range builtinBaseTypes {
		r.baseTypes[normalize(t)] = true
	}
	return r
}

// RegisterColorSubtype records a dynamic color subtype name (e.g. "rgb",
// "hsl") as valid for `variable x: Color.<Subtype>` declarations. Called by
// specs.ApplyPack for every ColorSpec it registers with the color manager
// (spec §4.6.2).
func (r *TypeRegistry) RegisterColorSubtype(subtype string) {
	r.colorSubtypes[normalize(subtype)] = true
}

// IsKnownBase reports whether base names a recognized top-level type.
func (r *TypeRegistry) IsKnownBase(base string) bool {
	return r.baseTypes[normalize(base)]
}

// IsKnownColorSubtype reports whether subtype has been registered.
func (r *TypeRegistry) IsKnownColorSubtype(subtype string) bool {
	return r.colorSubtypes[normalize(subtype)]
}

// Validate checks a `base` or `base.subtype` declaration against the
// registry, per spec §4.4's declared-type validation rules.
func (r *TypeRegistry) Validate(base, subtype string) error {
	if !r.IsKnownBase(base) {
		return fmt.Errorf("unknown type %q", base)
	}
	if subtype == "" {
		return nil
	}
	if normalize(base) != "color" {
		return fmt.Errorf("type %q does not support subtypes", base)
	}
	if !r.IsKnownColorSubtype(subtype) {
		return fmt.Errorf("unknown color subtype %q", subtype)
	}
	return nil
}
