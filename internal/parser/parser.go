// Package parser implements a recursive-descent parser for TokenScript,
// following the grammar in spec §4.2. Unlike the teacher's Pratt parser
// (internal/parser/parser.go in the teacher repo, which drives expression
// parsing off a precedence table and prefix/infix function maps), this
// grammar is small and fixed enough to write out level-by-level
// (or_expr/and_expr/.../pow_expr/unary/postfix/atom) the way the grammar in
// spec §4.2 lists it; the teacher's influence shows in the parser's shape
// (a thin cursor over the lexer, one statement/expression method per
// grammar rule, and errors returned as values instead of panics) rather than
// in its precedence mechanism. The first *Error aborts the parse; no errors
// are collected.
package parser

import (
	"fmt"

	"github.com/tokenscript-lang/tsi/internal/ast"
	"github.com/tokenscript-lang/tsi/internal/lexer"
	"github.com/tokenscript-lang/tsi/internal/token"
)

// Error is a parse failure: the offending token, its source line/column,
// and a message. Per spec §4.2 the parser does not attempt recovery — the
// first Error encountered aborts the parse.
type Error struct {
	Token   token.Token
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Token.Type, e.Token.Pos, e.Message)
}

// Parser turns a token stream into an *ast.Program.
type Parser struct {
	l    *lexer.Lexer
	cur  token.Token
	peek token.Token
	refs map[string]struct{}
}

// New creates a Parser over the tokens produced by l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, refs: make(map[string]struct{})}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errf(format string, args ...any) error {
	return &Error{Token: p.cur, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(t token.Type) (token.Token, error) {
	if p.cur.Type != t {
		return token.Token{}, p.errf("expected %s, got %s %q", t, p.cur.Type, p.cur.Literal)
	}
	tok := p.cur
	p.next()
	return tok, nil
}

// ParseProgram parses a full statement sequence up to EOF (spec §4.2
// "program"). It also serves inline mode: spec's "a single expression with
// no trailing semicolon" case falls out naturally here, because
// parseExprStmt only requires a terminating ';' when one is present before
// EOF (see parseExprStmt).
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{References: p.refs}
	for p.cur.Type != token.EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, nil
}

// ParseInline parses a single expression with no required trailing
// semicolon (spec §4.2 "Inline mode"), wrapping it as a one-statement
// Program. Used for individual token bodies and embedded conversion
// scripts.
func (p *Parser) ParseInline() (*ast.Program, error) {
	prog := &ast.Program{References: p.refs}
	if p.cur.Type == token.EOF {
		return prog, nil
	}
	x, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != token.EOF {
		return nil, p.errf("unexpected trailing input %q", p.cur.Literal)
	}
	es := &ast.ExprStmt{Token: token.Token{Type: token.EOF, Pos: x.Pos()}, X: x}
	prog.Statements = []ast.Stmt{es}
	return prog, nil
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch {
	case p.cur.Type == token.RESERVED_KEYWORD && p.cur.Literal == "variable":
		return p.parseVarDecl()
	case p.cur.Type == token.RESERVED_KEYWORD && p.cur.Literal == "if":
		return p.parseIf()
	case p.cur.Type == token.RESERVED_KEYWORD && p.cur.Literal == "while":
		return p.parseWhile()
	case p.cur.Type == token.RESERVED_KEYWORD && p.cur.Literal == "return":
		return p.parseReturn()
	case p.cur.Type == token.STRING && p.looksLikeAssignment():
		return p.parseAssignment()
	default:
		return p.parseExprStmt()
	}
}

// looksLikeAssignment scans ahead (without consuming) over an lvalue chain
// `IDENT ('.' IDENT)*` starting at p.cur and reports whether it is
// immediately followed by '='. It uses the lexer's unbounded Peek so the
// parser never has to save/restore lexer state to make this decision.
func (p *Parser) looksLikeAssignment() bool {
	if p.cur.Type != token.STRING {
		return false
	}
	offset := 0 // peekAt(0) is p.peek
	for p.peekAt(offset).Type == token.DOT && p.peekAt(offset+1).Type == token.STRING {
		offset += 2
	}
	return p.peekAt(offset).Type == token.ASSIGN
}

// peekAt returns the token n positions past p.peek (peekAt(0) == p.peek).
func (p *Parser) peekAt(n int) token.Token {
	if n == 0 {
		return p.peek
	}
	return p.l.Peek(n - 1)
}

func (p *Parser) parseVarDecl() (ast.Stmt, error) {
	tok := p.cur
	p.next() // consume 'variable'
	if p.cur.Type != token.STRING {
		return nil, p.errf("expected variable name")
	}
	name := p.cur.Literal
	if err := validateVarName(name); err != nil {
		return nil, &Error{Token: p.cur, Message: err.Error()}
	}
	p.next()
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	if p.cur.Type != token.STRING {
		return nil, p.errf("expected type name")
	}
	typeDecl := ast.TypeDecl{Base: p.cur.Literal}
	p.next()
	if p.cur.Type == token.DOT {
		p.next()
		if p.cur.Type != token.STRING {
			return nil, p.errf("expected subtype name")
		}
		typeDecl.Subtype = p.cur.Literal
		p.next()
	}

	var init ast.Expr
	if p.cur.Type == token.ASSIGN {
		p.next()
		x, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		init = x
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.VarDecl{Token: tok, Name: name, Type: typeDecl, Init: init}, nil
}

func (p *Parser) parseAssignment() (ast.Stmt, error) {
	tok := p.cur
	name := p.cur.Literal
	p.next()
	var chain []string
	for p.cur.Type == token.DOT {
		p.next()
		if p.cur.Type != token.STRING {
			return nil, p.errf("expected attribute name after '.'")
		}
		chain = append(chain, p.cur.Literal)
		p.next()
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.Assignment{Token: tok, Target: ast.LValue{Token: tok, Name: name, Chain: chain}, Value: value}, nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	tok, err := p.expect(token.LBLOCK)
	if err != nil {
		return nil, err
	}
	block := &ast.Block{Token: tok}
	for p.cur.Type != token.RBLOCK {
		if p.cur.Type == token.EOF {
			return nil, p.errf("unterminated block: missing ']'")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	p.next() // consume ']'
	return block, nil
}

// consumeOptionalTerminator implements spec §9 Open Question 3: if/while
// may be followed by an optional ';'.
func (p *Parser) consumeOptionalTerminator() {
	if p.cur.Type == token.SEMICOLON {
		p.next()
	}
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	tok := p.cur
	p.next()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Token: tok, Cond: cond, Body: body}

	for p.cur.Type == token.RESERVED_KEYWORD && p.cur.Literal == "elif" {
		p.next()
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		elifCond, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		elifBody, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Elifs = append(stmt.Elifs, ast.ElifClause{Cond: elifCond, Body: elifBody})
	}

	if p.cur.Type == token.RESERVED_KEYWORD && p.cur.Literal == "else" {
		p.next()
		elseBody, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Else = elseBody
	}

	p.consumeOptionalTerminator()
	return stmt, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	tok := p.cur
	p.next()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	p.consumeOptionalTerminator()
	return &ast.WhileStmt{Token: tok, Cond: cond, Body: body}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	tok := p.cur
	p.next()
	value, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Token: tok, Value: value}, nil
}

func (p *Parser) parseExprStmt() (ast.Stmt, error) {
	tok := p.cur
	x, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if p.cur.Type == token.SEMICOLON {
		p.next()
	} else if p.cur.Type != token.EOF {
		return nil, p.errf("expected ';', got %s %q", p.cur.Type, p.cur.Literal)
	}
	return &ast.ExprStmt{Token: tok, X: x}, nil
}

func validateVarName(name string) error {
	for _, r := range name {
		if r == '.' || r == '[' || r == '-' {
			return fmt.Errorf("Invalid variable name '%s'. Use a simple name (and underscores) without '.', '-', '['.", name)
		}
	}
	return nil
}
