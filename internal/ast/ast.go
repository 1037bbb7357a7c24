// Package ast defines the TokenScript abstract syntax tree (spec §3).
//
// Every node carries the lexical token it was built from so the
// interpreter/diag packages can report line/column diagnostics without a
// second traversal, the same convention the teacher's internal/ast package
// uses (each node embeds a lexer.Token or exposes TokenLiteral()).
package ast

import (
	"strings"

	"github.com/tokenscript-lang/tsi/internal/token"
)

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Position
	String() string
}

// Expr is an expression node: it produces a value when evaluated.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Program is the root of a parse: a sequence of statements, with the set of
// token names referenced anywhere in the parse (spec §4.2 "Reference
// tracking"). Resolver consumes References directly instead of re-walking
// the tree.
type Program struct {
	Statements []Stmt
	References map[string]struct{}
}

func (p *Program) Pos() token.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return token.Position{}
}

func (p *Program) String() string {
	var sb strings.Builder
	for i, s := range p.Statements {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(s.String())
	}
	return sb.String()
}

// ReferenceNames returns the set of referenced token names as a sorted-free
// slice (insertion order is not meaningful; callers that need determinism
// sort it themselves).
func (p *Program) ReferenceNames() []string {
	names := make([]string, 0, len(p.References))
	for n := range p.References {
		names = append(names, n)
	}
	return names
}

// ---- Literals ----

type NumberLiteral struct {
	Token   token.Token
	Value   float64
	IsFloat bool // true if the source spelling contained '.' or an exponent
}

func (n *NumberLiteral) Pos() token.Position { return n.Token.Pos }
func (n *NumberLiteral) String() string      { return n.Token.Literal }
func (*NumberLiteral) exprNode()             {}

// StringLiteral covers both bare-word strings (STRING token, e.g. `solid`)
// and quoted strings (EXPLICIT_STRING token, e.g. `'solid'`). Explicit is
// true for the latter. The interpreter looks a bare word up as a variable
// first and falls back to the word itself only when no such variable is in
// scope; an explicit string always evaluates to its literal text.
type StringLiteral struct {
	Token    token.Token
	Value    string
	Explicit bool
}

func (s *StringLiteral) Pos() token.Position { return s.Token.Pos }
func (s *StringLiteral) String() string      { return s.Value }
func (*StringLiteral) exprNode()             {}

type HexColorLiteral struct {
	Token token.Token
	Value string // e.g. "#ff0080"
}

func (h *HexColorLiteral) Pos() token.Position { return h.Token.Pos }
func (h *HexColorLiteral) String() string      { return h.Value }
func (*HexColorLiteral) exprNode()             {}

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (b *BooleanLiteral) Pos() token.Position { return b.Token.Pos }
func (b *BooleanLiteral) String() string      { return b.Token.Literal }
func (*BooleanLiteral) exprNode()             {}

type NullLiteral struct {
	Token token.Token
}

func (n *NullLiteral) Pos() token.Position { return n.Token.Pos }
func (n *NullLiteral) String() string      { return "null" }
func (*NullLiteral) exprNode()             {}

// Reference is a `{dotted.name}` occurrence.
type Reference struct {
	Token token.Token
	Name  string
}

func (r *Reference) Pos() token.Position { return r.Token.Pos }
func (r *Reference) String() string      { return "{" + r.Name + "}" }
func (*Reference) exprNode()             {}

// UnitSuffix applies a FORMAT token to a numeric expression: `16px`.
type UnitSuffix struct {
	Token token.Token // the FORMAT token
	X     Expr
	Unit  string
}

func (u *UnitSuffix) Pos() token.Position { return u.X.Pos() }
func (u *UnitSuffix) String() string      { return u.X.String() + u.Unit }
func (*UnitSuffix) exprNode()             {}

// UnaryExpr is a prefix `-x`.
type UnaryExpr struct {
	Token token.Token
	Op    string
	X     Expr
}

func (u *UnaryExpr) Pos() token.Position { return u.Token.Pos }
func (u *UnaryExpr) String() string      { return "(" + u.Op + u.X.String() + ")" }
func (*UnaryExpr) exprNode()             {}

// BinaryExpr covers arithmetic (+ - * / ^).
type BinaryExpr struct {
	Token token.Token
	Op    string
	Left  Expr
	Right Expr
}

func (b *BinaryExpr) Pos() token.Position { return b.Token.Pos }
func (b *BinaryExpr) String() string {
	return "(" + b.Left.String() + " " + b.Op + " " + b.Right.String() + ")"
}
func (*BinaryExpr) exprNode() {}

// LogicalExpr covers && || !.
type LogicalExpr struct {
	Token token.Token
	Op    string
	Left  Expr // nil for unary "!"
	Right Expr
}

func (l *LogicalExpr) Pos() token.Position { return l.Token.Pos }
func (l *LogicalExpr) String() string {
	if l.Left == nil {
		return "(" + l.Op + l.Right.String() + ")"
	}
	return "(" + l.Left.String() + " " + l.Op + " " + l.Right.String() + ")"
}
func (*LogicalExpr) exprNode() {}

// CompareExpr covers == != < <= > >=.
type CompareExpr struct {
	Token token.Token
	Op    string
	Left  Expr
	Right Expr
}

func (c *CompareExpr) Pos() token.Position { return c.Token.Pos }
func (c *CompareExpr) String() string {
	return "(" + c.Left.String() + " " + c.Op + " " + c.Right.String() + ")"
}
func (*CompareExpr) exprNode() {}

// ListExpr is either an explicit (comma-joined) or implicit
// (space-juxtaposed) list, per spec §4.2.
type ListExpr struct {
	Token    token.Token
	Elements []Expr
	Implicit bool
}

func (l *ListExpr) Pos() token.Position { return l.Token.Pos }
func (l *ListExpr) String() string {
	sep := ", "
	if l.Implicit {
		sep = " "
	}
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return strings.Join(parts, sep)
}
func (*ListExpr) exprNode() {}

// CallExpr is a function call: `min(10px, 20px)`.
type CallExpr struct {
	Token token.Token
	Name  string
	Args  []Expr
}

func (c *CallExpr) Pos() token.Position { return c.Token.Pos }
func (c *CallExpr) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}
func (*CallExpr) exprNode() {}

// AttrSegment is one hop in an attribute-access / method-call chain:
// `.to.hex()` is two segments, the second with Call=true.
type AttrSegment struct {
	Token token.Token
	Name  string
	Call  bool // true if this segment is `.name(args)` rather than `.name`
	Args  []Expr
}

// AttrExpr is a chain of `.segment` accesses/calls rooted at X, e.g.
// `rgb(255,0,128).to.hex()`.
type AttrExpr struct {
	X     Expr
	Chain []AttrSegment
}

func (a *AttrExpr) Pos() token.Position { return a.X.Pos() }
func (a *AttrExpr) String() string {
	var sb strings.Builder
	sb.WriteString(a.X.String())
	for _, seg := range a.Chain {
		sb.WriteString(".")
		sb.WriteString(seg.Name)
		if seg.Call {
			parts := make([]string, len(seg.Args))
			for i, arg := range seg.Args {
				parts[i] = arg.String()
			}
			sb.WriteString("(")
			sb.WriteString(strings.Join(parts, ", "))
			sb.WriteString(")")
		}
	}
	return sb.String()
}
func (*AttrExpr) exprNode() {}

// ---- Statements ----

// TypeDecl is the `T` or `T.Sub` annotation in a variable declaration.
type TypeDecl struct {
	Base    string
	Subtype string // empty if no ".Sub" was given
}

func (t TypeDecl) String() string {
	if t.Subtype == "" {
		return t.Base
	}
	return t.Base + "." + t.Subtype
}

type VarDecl struct {
	Token token.Token
	Name  string
	Type  TypeDecl
	Init  Expr // nil if no initializer
}

func (v *VarDecl) Pos() token.Position { return v.Token.Pos }
func (v *VarDecl) String() string {
	s := "variable " + v.Name + ": " + v.Type.String()
	if v.Init != nil {
		s += " = " + v.Init.String()
	}
	return s + ";"
}
func (*VarDecl) stmtNode() {}

// LValue is an assignment target: a bare name, or a dotted attribute chain.
type LValue struct {
	Token token.Token
	Name  string
	Chain []string // attribute segments after Name; empty for a bare variable
}

func (l LValue) String() string {
	if len(l.Chain) == 0 {
		return l.Name
	}
	return l.Name + "." + strings.Join(l.Chain, ".")
}

type Assignment struct {
	Token  token.Token
	Target LValue
	Value  Expr
}

func (a *Assignment) Pos() token.Position { return a.Token.Pos }
func (a *Assignment) String() string      { return a.Target.String() + " = " + a.Value.String() + ";" }
func (*Assignment) stmtNode()             {}

// ExprStmt is a bare expression used as a statement (e.g. the inline-mode
// program body, or a function call for its side effects).
type ExprStmt struct {
	Token token.Token
	X     Expr
}

func (e *ExprStmt) Pos() token.Position { return e.Token.Pos }
func (e *ExprStmt) String() string      { return e.X.String() + ";" }
func (*ExprStmt) stmtNode()             {}

type Block struct {
	Token      token.Token
	Statements []Stmt
}

func (b *Block) Pos() token.Position { return b.Token.Pos }
func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString("[ ")
	for _, s := range b.Statements {
		sb.WriteString(s.String())
		sb.WriteString(" ")
	}
	sb.WriteString("]")
	return sb.String()
}
func (*Block) stmtNode() {}

type ElifClause struct {
	Cond Expr
	Body *Block
}

type IfStmt struct {
	Token token.Token
	Cond  Expr
	Body  *Block
	Elifs []ElifClause
	Else  *Block // nil if absent
}

func (i *IfStmt) Pos() token.Position { return i.Token.Pos }
func (i *IfStmt) String() string {
	s := "if (" + i.Cond.String() + ") " + i.Body.String()
	for _, e := range i.Elifs {
		s += " elif (" + e.Cond.String() + ") " + e.Body.String()
	}
	if i.Else != nil {
		s += " else " + i.Else.String()
	}
	return s
}
func (*IfStmt) stmtNode() {}

type WhileStmt struct {
	Token token.Token
	Cond  Expr
	Body  *Block
}

func (w *WhileStmt) Pos() token.Position { return w.Token.Pos }
func (w *WhileStmt) String() string      { return "while (" + w.Cond.String() + ") " + w.Body.String() }
func (*WhileStmt) stmtNode()             {}

type ReturnStmt struct {
	Token token.Token
	Value Expr
}

func (r *ReturnStmt) Pos() token.Position { return r.Token.Pos }
func (r *ReturnStmt) String() string      { return "return " + r.Value.String() + ";" }
func (*ReturnStmt) stmtNode()             {}
