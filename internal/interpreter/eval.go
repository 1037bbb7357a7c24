package interpreter

import (
	"fmt"

	"github.com/tokenscript-lang/tsi/internal/ast"
	"github.com/tokenscript-lang/tsi/internal/managers"
	"github.com/tokenscript-lang/tsi/internal/ops"
	"github.com/tokenscript-lang/tsi/internal/symtable"
	"github.com/tokenscript-lang/tsi/internal/values"
)

// Eval evaluates an expression node against scope. Reference nodes are
// resolved against it.References, the shared growing result map (spec
// §4.8); every other node is self-contained.
func (it *Interpreter) Eval(scope *symtable.Scope, expr ast.Expr) (values.Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return values.Number{Value: e.Value, IsFloat: e.IsFloat}, nil
	case *ast.StringLiteral:
		// A bare word is ambiguous between a variable read and a literal
		// string until evaluated: if it names something declared in scope,
		// it's a variable read; otherwise it's the literal itself (spec §3's
		// AST note "string literal (explicit or identifier-like)").
		if !e.Explicit {
			if v, ok := scope.Get(e.Value); ok {
				return v, nil
			}
		}
		return values.String{Value: e.Value}, nil
	case *ast.HexColorLiteral:
		return values.NewHexColor(e.Value), nil
	case *ast.BooleanLiteral:
		return values.Boolean{Value: e.Value}, nil
	case *ast.NullLiteral:
		return values.Null{}, nil
	case *ast.Reference:
		v, ok := it.References[e.Name]
		if !ok {
			return nil, &MissingReferenceError{Name: e.Name}
		}
		return v, nil
	case *ast.UnitSuffix:
		return it.evalUnitSuffix(scope, e)
	case *ast.UnaryExpr:
		x, err := it.Eval(scope, e.X)
		if err != nil {
			return nil, err
		}
		return it.Kernel.Negate(x)
	case *ast.BinaryExpr:
		return it.evalBinary(scope, e)
	case *ast.LogicalExpr:
		return it.evalLogical(scope, e)
	case *ast.CompareExpr:
		return it.evalCompare(scope, e)
	case *ast.ListExpr:
		return it.evalList(scope, e)
	case *ast.CallExpr:
		return it.evalCall(scope, e)
	case *ast.AttrExpr:
		return it.evalAttrChain(scope, e)
	default:
		return nil, fmt.Errorf("unhandled expression type %T", expr)
	}
}

func (it *Interpreter) evalUnitSuffix(scope *symtable.Scope, e *ast.UnitSuffix) (values.Value, error) {
	x, err := it.Eval(scope, e.X)
	if err != nil {
		return nil, err
	}
	n, ok := x.(values.Number)
	if !ok {
		return nil, fmt.Errorf("cannot apply unit %q to %s", e.Unit, x.TypeName())
	}
	return values.NumberWithUnit{Value: n.Value, Unit: e.Unit}, nil
}

func (it *Interpreter) evalBinary(scope *symtable.Scope, e *ast.BinaryExpr) (values.Value, error) {
	left, err := it.Eval(scope, e.Left)
	if err != nil {
		return nil, err
	}
	right, err := it.Eval(scope, e.Right)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "+":
		return it.Kernel.Add(left, right)
	case "-":
		return it.Kernel.Sub(left, right)
	case "*":
		return it.Kernel.Mul(left, right)
	case "/":
		return it.Kernel.Div(left, right)
	case "^":
		return it.Kernel.Pow(left, right)
	default:
		return nil, fmt.Errorf("unknown binary operator %q", e.Op)
	}
}

func (it *Interpreter) evalLogical(scope *symtable.Scope, e *ast.LogicalExpr) (values.Value, error) {
	if e.Op == "!" {
		right, err := it.Eval(scope, e.Right)
		if err != nil {
			return nil, err
		}
		return it.Kernel.Not(right)
	}
	left, err := it.Eval(scope, e.Left)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "&&":
		if !boolTruthy(left) {
			return values.Boolean{Value: false}, nil
		}
	case "||":
		if boolTruthy(left) {
			return values.Boolean{Value: true}, nil
		}
	default:
		return nil, fmt.Errorf("unknown logical operator %q", e.Op)
	}
	right, err := it.Eval(scope, e.Right)
	if err != nil {
		return nil, err
	}
	return values.Boolean{Value: boolTruthy(right)}, nil
}

func boolTruthy(v values.Value) bool {
	return ops.Truthy(v)
}

func (it *Interpreter) evalCompare(scope *symtable.Scope, e *ast.CompareExpr) (values.Value, error) {
	left, err := it.Eval(scope, e.Left)
	if err != nil {
		return nil, err
	}
	right, err := it.Eval(scope, e.Right)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "==":
		return it.Kernel.Equal(left, right), nil
	case "!=":
		eq := it.Kernel.Equal(left, right).(values.Boolean)
		return values.Boolean{Value: !eq.Value}, nil
	default:
		return it.Kernel.Compare(e.Op, left, right)
	}
}

func (it *Interpreter) evalList(scope *symtable.Scope, e *ast.ListExpr) (values.Value, error) {
	elems := make([]values.Value, len(e.Elements))
	for i, el := range e.Elements {
		v, err := it.Eval(scope, el)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return &values.List{Elements: elems, Implicit: e.Implicit}, nil
}

func (it *Interpreter) evalArgs(scope *symtable.Scope, argExprs []ast.Expr) ([]values.Value, error) {
	args := make([]values.Value, len(argExprs))
	for i, a := range argExprs {
		v, err := it.Eval(scope, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (it *Interpreter) evalCall(scope *symtable.Scope, e *ast.CallExpr) (values.Value, error) {
	if managers.IsUninterpreted(e.Name) {
		return values.String{Value: e.String()}, nil
	}
	args, err := it.evalArgs(scope, e.Args)
	if err != nil {
		return nil, err
	}
	if v, err := it.Functions.Call(e.Name, args); err == nil {
		return v, nil
	}
	if c, cErr := it.Colors.Initialize(e.Name, args); cErr == nil {
		return c, nil
	}
	// Re-run to surface the function manager's error, which is almost
	// always the more useful message (unknown color subtype errors read
	// as noise for a plain unknown-function typo).
	_, err = it.Functions.Call(e.Name, args)
	return nil, err
}

func (it *Interpreter) evalAttrChain(scope *symtable.Scope, e *ast.AttrExpr) (values.Value, error) {
	cur, err := it.Eval(scope, e.X)
	if err != nil {
		return nil, err
	}
	for _, seg := range e.Chain {
		if !seg.Call && seg.Name == "to" {
			if c, ok := cur.(values.Color); ok {
				cur = &managers.ToProxy{Manager: it.Colors, Source: c}
				continue
			}
		}
		if seg.Call {
			m, ok := cur.(values.Methodable)
			if !ok {
				return nil, fmt.Errorf("%s has no method %q", cur.TypeName(), seg.Name)
			}
			args, err := it.evalArgs(scope, seg.Args)
			if err != nil {
				return nil, err
			}
			cur, err = m.CallMethod(seg.Name, args)
			if err != nil {
				return nil, err
			}
			continue
		}
		a, ok := cur.(values.Attributable)
		if !ok {
			return nil, fmt.Errorf("%s has no attribute %q", cur.TypeName(), seg.Name)
		}
		cur, err = a.GetAttribute(seg.Name)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}
