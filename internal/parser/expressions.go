package parser

import (
	"strconv"
	"strings"

	"github.com/tokenscript-lang/tsi/internal/ast"
	"github.com/tokenscript-lang/tsi/internal/token"
)

// startsExpr reports whether t can begin a new or_expr; used to detect
// juxtaposition (implicit lists, spec §4.2) without consuming a token.
func startsExpr(t token.Type) bool {
	switch t {
	case token.NUMBER, token.EXPLICIT_STRING, token.HEX_COLOR, token.REFERENCE,
		token.STRING, token.LPAREN, token.MINUS, token.LOGIC_NOT:
		return true
	}
	return false
}

func isKeyword(tok token.Token, lit string) bool {
	return tok.Type == token.RESERVED_KEYWORD && tok.Literal == lit
}

// parseExprList implements the top-level "comma yields an explicit list,
// juxtaposition yields an implicit list" rule from spec §4.2. It is used
// everywhere the grammar says `expr` outside of a call's argument list.
func (p *Parser) parseExprList() (ast.Expr, error) {
	first, err := p.parseJuxtaposed()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != token.COMMA {
		return first, nil
	}
	tok := p.cur
	items := []ast.Expr{first}
	for p.cur.Type == token.COMMA {
		p.next()
		item, err := p.parseJuxtaposed()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return &ast.ListExpr{Token: tok, Elements: items, Implicit: false}, nil
}

// parseJuxtaposed parses one or more space-separated or_expr terms into an
// implicit list (or a single expression if there is only one term). This is
// also what a function-call argument parses as, since commas inside a call
// separate arguments rather than building an explicit list.
func (p *Parser) parseJuxtaposed() (ast.Expr, error) {
	first, err := p.parseOrExpr()
	if err != nil {
		return nil, err
	}
	items := []ast.Expr{first}
	for startsExpr(p.cur.Type) {
		next, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, next)
	}
	if len(items) == 1 {
		return first, nil
	}
	return &ast.ListExpr{Token: token.Token{Pos: first.Pos()}, Elements: items, Implicit: true}, nil
}

func (p *Parser) parseOrExpr() (ast.Expr, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == token.LOGIC_OR {
		tok := p.cur
		p.next()
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpr{Token: tok, Op: "||", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAndExpr() (ast.Expr, error) {
	left, err := p.parseNotExpr()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == token.LOGIC_AND {
		tok := p.cur
		p.next()
		right, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpr{Token: tok, Op: "&&", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNotExpr() (ast.Expr, error) {
	if p.cur.Type == token.LOGIC_NOT {
		tok := p.cur
		p.next()
		x, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		return &ast.LogicalExpr{Token: tok, Op: "!", Right: x}, nil
	}
	return p.parseCmpExpr()
}

var cmpOps = map[token.Type]string{
	token.IS_EQ:     "==",
	token.IS_NOT_EQ: "!=",
	token.IS_LT:     "<",
	token.IS_LT_EQ:  "<=",
	token.IS_GT:     ">",
	token.IS_GT_EQ:  ">=",
}

func (p *Parser) parseCmpExpr() (ast.Expr, error) {
	left, err := p.parseAddExpr()
	if err != nil {
		return nil, err
	}
	if op, ok := cmpOps[p.cur.Type]; ok {
		tok := p.cur
		p.next()
		right, err := p.parseAddExpr()
		if err != nil {
			return nil, err
		}
		return &ast.CompareExpr{Token: tok, Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseAddExpr() (ast.Expr, error) {
	left, err := p.parseMulExpr()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == token.PLUS || p.cur.Type == token.MINUS {
		tok := p.cur
		op := tok.Literal
		p.next()
		right, err := p.parseMulExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Token: tok, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMulExpr() (ast.Expr, error) {
	left, err := p.parsePowExpr()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == token.ASTERISK || p.cur.Type == token.SLASH {
		tok := p.cur
		op := tok.Literal
		p.next()
		right, err := p.parsePowExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Token: tok, Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parsePowExpr is right-associative: `2 ^ 3 ^ 2` == `2 ^ (3 ^ 2)`.
func (p *Parser) parsePowExpr() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.cur.Type == token.CARET {
		tok := p.cur
		p.next()
		right, err := p.parsePowExpr() // right-recursive for right-associativity
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Token: tok, Op: "^", Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.cur.Type == token.MINUS {
		tok := p.cur
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Token: tok, Op: "-", X: x}, nil
	}
	return p.parsePostfix()
}

// parsePostfix applies unit suffixes and `.name`/`.name(args)` chains onto
// an atom, per spec §4.2 `postfix := atom (unit_suffix | '.' IDENT
// (call_args)?)*`.
func (p *Parser) parsePostfix() (ast.Expr, error) {
	x, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	var chain []ast.AttrSegment
	flushChain := func() {
		if len(chain) > 0 {
			x = &ast.AttrExpr{X: x, Chain: chain}
			chain = nil
		}
	}

	for {
		switch {
		case p.cur.Type == token.FORMAT:
			flushChain()
			unit := p.cur.Literal
			tok := p.cur
			p.next()
			x = &ast.UnitSuffix{Token: tok, X: x, Unit: unit}
		case p.cur.Type == token.DOT:
			p.next()
			if p.cur.Type != token.STRING && p.cur.Type != token.RESERVED_KEYWORD {
				return nil, p.errf("expected attribute or method name after '.'")
			}
			seg := ast.AttrSegment{Token: p.cur, Name: p.cur.Literal}
			p.next()
			if p.cur.Type == token.LPAREN {
				args, err := p.parseCallArgs()
				if err != nil {
					return nil, err
				}
				seg.Call = true
				seg.Args = args
			}
			chain = append(chain, seg)
		default:
			flushChain()
			return x, nil
		}
	}
}

func (p *Parser) parseCallArgs() ([]ast.Expr, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for p.cur.Type != token.RPAREN {
		if p.cur.Type == token.EOF {
			return nil, p.errf("unterminated argument list: missing ')'")
		}
		arg, err := p.parseJuxtaposed()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur.Type == token.COMMA {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseAtom() (ast.Expr, error) {
	tok := p.cur
	switch tok.Type {
	case token.NUMBER:
		p.next()
		return parseNumberLiteral(tok)
	case token.EXPLICIT_STRING:
		p.next()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal, Explicit: true}, nil
	case token.HEX_COLOR:
		p.next()
		return &ast.HexColorLiteral{Token: tok, Value: tok.Literal}, nil
	case token.REFERENCE:
		p.next()
		p.refs[tok.Literal] = struct{}{}
		return &ast.Reference{Token: tok, Name: tok.Literal}, nil
	case token.RESERVED_KEYWORD:
		switch tok.Literal {
		case "true":
			p.next()
			return &ast.BooleanLiteral{Token: tok, Value: true}, nil
		case "false":
			p.next()
			return &ast.BooleanLiteral{Token: tok, Value: false}, nil
		case "null", "undefined":
			p.next()
			return &ast.NullLiteral{Token: tok}, nil
		}
		return nil, p.errf("unexpected keyword %q in expression", tok.Literal)
	case token.STRING:
		p.next()
		if p.cur.Type == token.LPAREN {
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			return &ast.CallExpr{Token: tok, Name: tok.Literal, Args: args}, nil
		}
		return &ast.StringLiteral{Token: tok, Value: tok.Literal, Explicit: false}, nil
	case token.LPAREN:
		p.next()
		x, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return x, nil
	default:
		return nil, p.errf("unexpected token %s %q in expression", tok.Type, tok.Literal)
	}
}

func parseNumberLiteral(tok token.Token) (ast.Expr, error) {
	lit := strings.ReplaceAll(tok.Literal, "_", "")
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, &Error{Token: tok, Message: "invalid numeric literal: " + tok.Literal}
	}
	isFloat := strings.ContainsAny(tok.Literal, ".eE")
	return &ast.NumberLiteral{Token: tok, Value: v, IsFloat: isFloat}, nil
}
