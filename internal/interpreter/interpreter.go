// Package interpreter implements the tree-walking evaluator for TokenScript
// (spec §4.7). Like the teacher's internal/interp/runner.go, it wires a
// scope/environment, a type system, and an evaluator together behind one
// constructor; unlike the teacher (which evaluates a full imperative
// language with classes, closures and a bytecode fallback), this evaluator
// only ever walks the AST directly, since TokenScript has no compilation
// target (spec Non-goals: "no compilation to another target; no JIT").
package interpreter

import (
	"fmt"
	"strings"

	"github.com/tokenscript-lang/tsi/internal/ast"
	"github.com/tokenscript-lang/tsi/internal/managers"
	"github.com/tokenscript-lang/tsi/internal/ops"
	"github.com/tokenscript-lang/tsi/internal/symtable"
	"github.com/tokenscript-lang/tsi/internal/values"
)

// MaxWhileIterations bounds every while loop (spec §4.7: a runaway
// condition must fail deterministically rather than hang the resolver).
const MaxWhileIterations = 100_000

// MissingReferenceError is returned when a `{name}` reference has no entry
// in the interpreter's shared References map. The resolver package matches
// on this type to classify a token's failure as "missing_reference" rather
// than a generic evaluation error (spec §4.8).
type MissingReferenceError struct {
	Name string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("missing reference %q", e.Name)
}

// LoopLimitError is returned when a while loop exceeds MaxWhileIterations.
type LoopLimitError struct{}

func (LoopLimitError) Error() string {
	return fmt.Sprintf("while loop exceeded %d iterations", MaxWhileIterations)
}

// Interpreter evaluates TokenScript ASTs against a shared set of resolved
// token values and the three extension managers (spec §4.6).
//
// References is intentionally a plain map the caller can share across many
// Eval calls: the batch resolver (internal/resolver) relies on this map
// being the single growing result set, not a per-token copy, so that a
// token's expression can reference an already-resolved sibling without the
// interpreter re-reading anything from outside itself.
type Interpreter struct {
	Types     *symtable.TypeRegistry
	Colors    *managers.ColorManager
	Units     *managers.UnitManager
	Functions *managers.FunctionManager
	Kernel    *ops.Kernel

	References map[string]values.Value
}

// New builds an Interpreter wired against the given managers. Pass nil for
// any manager to use a freshly constructed default instance.
func New(colors *managers.ColorManager, units *managers.UnitManager, functions *managers.FunctionManager) *Interpreter {
	if colors == nil {
		colors = managers.NewColorManager()
	}
	if units == nil {
		units = managers.NewUnitManager()
	}
	if functions == nil {
		functions = managers.NewFunctionManager()
	}
	functions.SetUnits(units)
	return &Interpreter{
		Types:      symtable.NewTypeRegistry(),
		Colors:     colors,
		Units:      units,
		Functions:  functions,
		Kernel:     ops.New(units),
		References: make(map[string]values.Value),
	}
}

// Run executes prog in a fresh root scope and returns the value of its
// final expression statement (inline mode) or its explicit return value
// (program mode); a program with neither yields Null (spec §4.7).
func (it *Interpreter) Run(prog *ast.Program) (values.Value, error) {
	scope := symtable.NewRoot()
	return it.evalProgram(scope, prog)
}

func (it *Interpreter) evalProgram(scope *symtable.Scope, prog *ast.Program) (values.Value, error) {
	var last values.Value
	for _, stmt := range prog.Statements {
		val, returned, err := it.execStmt(scope, stmt)
		if err != nil {
			return nil, err
		}
		if returned {
			return val, nil
		}
		if _, ok := stmt.(*ast.ExprStmt); ok {
			last = val
		}
	}
	if last != nil {
		return last, nil
	}
	return values.Null{}, nil
}

// execStmt evaluates one statement. returned is true if stmt was (or
// contained, via a nested block) a ReturnStmt that fired; val is then the
// returned value and execution of the enclosing block/program must stop.
func (it *Interpreter) execStmt(scope *symtable.Scope, stmt ast.Stmt) (val values.Value, returned bool, err error) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		return it.execVarDecl(scope, s)
	case *ast.Assignment:
		v, err := it.Eval(scope, s.Value)
		if err != nil {
			return nil, false, err
		}
		if err := it.assign(scope, s.Target, v); err != nil {
			return nil, false, err
		}
		return values.Null{}, false, nil
	case *ast.ExprStmt:
		v, err := it.Eval(scope, s.X)
		if err != nil {
			return nil, false, err
		}
		return v, false, nil
	case *ast.IfStmt:
		return it.execIf(scope, s)
	case *ast.WhileStmt:
		return it.execWhile(scope, s)
	case *ast.ReturnStmt:
		v, err := it.Eval(scope, s.Value)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	default:
		return nil, false, fmt.Errorf("unhandled statement type %T", stmt)
	}
}

func (it *Interpreter) execVarDecl(scope *symtable.Scope, s *ast.VarDecl) (values.Value, bool, error) {
	if err := it.Types.Validate(s.Type.Base, s.Type.Subtype); err != nil {
		return nil, false, err
	}
	var v values.Value = values.Null{}
	if s.Init != nil {
		val, err := it.Eval(scope, s.Init)
		if err != nil {
			return nil, false, err
		}
		v = val
	}
	if err := scope.Declare(s.Name, v); err != nil {
		return nil, false, err
	}
	return values.Null{}, false, nil
}

func (it *Interpreter) execBlock(parent *symtable.Scope, b *ast.Block) (values.Value, bool, error) {
	scope := parent.Child()
	var last values.Value = values.Null{}
	for _, stmt := range b.Statements {
		v, returned, err := it.execStmt(scope, stmt)
		if err != nil {
			return nil, false, err
		}
		if returned {
			return v, true, nil
		}
		last = v
	}
	return last, false, nil
}

// conditionError is returned when an if/elif/while condition evaluates to
// something other than Boolean (spec §4.7: "condition must be Boolean else
// error"; spec §7 lists "Boolean required for condition" among the generic
// interpreter type-mismatch errors).
type conditionError struct{ got string }

func (e conditionError) Error() string {
	return fmt.Sprintf("Boolean required for condition, got %s", e.got)
}

func requireBoolean(v values.Value) (bool, error) {
	b, ok := v.(values.Boolean)
	if !ok {
		return false, conditionError{got: v.TypeName()}
	}
	return b.Value, nil
}

func (it *Interpreter) execIf(scope *symtable.Scope, s *ast.IfStmt) (values.Value, bool, error) {
	cond, err := it.Eval(scope, s.Cond)
	if err != nil {
		return nil, false, err
	}
	b, err := requireBoolean(cond)
	if err != nil {
		return nil, false, err
	}
	if b {
		return it.execBlock(scope, s.Body)
	}
	for _, elif := range s.Elifs {
		c, err := it.Eval(scope, elif.Cond)
		if err != nil {
			return nil, false, err
		}
		eb, err := requireBoolean(c)
		if err != nil {
			return nil, false, err
		}
		if eb {
			return it.execBlock(scope, elif.Body)
		}
	}
	if s.Else != nil {
		return it.execBlock(scope, s.Else)
	}
	return values.Null{}, false, nil
}

func (it *Interpreter) execWhile(scope *symtable.Scope, s *ast.WhileStmt) (values.Value, bool, error) {
	for i := 0; ; i++ {
		if i >= MaxWhileIterations {
			return nil, false, LoopLimitError{}
		}
		cond, err := it.Eval(scope, s.Cond)
		if err != nil {
			return nil, false, err
		}
		b, err := requireBoolean(cond)
		if err != nil {
			return nil, false, err
		}
		if !b {
			return values.Null{}, false, nil
		}
		v, returned, err := it.execBlock(scope, s.Body)
		if err != nil {
			return nil, false, err
		}
		if returned {
			return v, true, nil
		}
	}
}

// assign implements both bare-name and attribute-chain assignment targets
// (spec §4.7): `x = v` rebinds x in its declaring scope; `x.a.b = v` walks
// attributes to the second-to-last segment and calls SetAttribute for the
// last one.
//
// Color.Dynamic values are special-cased through ColorManager.SetAttribute
// rather than the generic Attributable path, since spec §4.3/§4.7 require
// schema-type enforcement and a closed set of tagged errors
// (STRING_VALUE_ASSIGNMENT, ATTRIBUTE_CHAIN_TOO_LONG, MISSING_SPEC,
// MISSING_SCHEMA, INVALID_ATTRIBUTE_TYPE) that a plain SetAttribute call
// can't express. Spec §4.3: "attributes are gettable/settable via a dotted
// lvalue with chain length exactly one" — measured from the Color itself,
// not from the lvalue's base variable, so `dict.swatch.r = 1` (chain length
// two from `dict`, but one from the Color reached at `dict.swatch`) is
// fine, while `swatch.r.g = 1` is ATTRIBUTE_CHAIN_TOO_LONG.
func (it *Interpreter) assign(scope *symtable.Scope, target ast.LValue, v values.Value) error {
	if len(target.Chain) == 0 {
		return scope.Set(target.Name, v)
	}
	base, ok := scope.Get(target.Name)
	if !ok {
		return fmt.Errorf("assignment to undeclared variable %q", target.Name)
	}
	cur := base
	for i, seg := range target.Chain {
		if c, ok := cur.(values.Color); ok {
			if remaining := len(target.Chain) - i; remaining > 1 {
				return &managers.ColorManagerError{Tag: managers.TagAttributeChainTooLong,
					Message: fmt.Sprintf("color attribute chain %q is too long", strings.Join(target.Chain[i:], "."))}
			}
			updated, err := it.Colors.SetAttribute(c, seg, v)
			if err != nil {
				return err
			}
			if i == 0 {
				return scope.Set(target.Name, updated)
			}
			return nil // Attrs is a shared *OrderedMap; SetAttribute mutated it in place.
		}
		if i == len(target.Chain)-1 {
			attrObj, ok := cur.(values.Attributable)
			if !ok {
				return fmt.Errorf("%s has no attributes", cur.TypeName())
			}
			return attrObj.SetAttribute(seg, v)
		}
		attrObj, ok := cur.(values.Attributable)
		if !ok {
			return fmt.Errorf("%s has no attributes", cur.TypeName())
		}
		next, err := attrObj.GetAttribute(seg)
		if err != nil {
			return err
		}
		cur = next
	}
	return nil
}
