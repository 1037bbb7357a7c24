// Package token defines the lexical token kinds produced by the TokenScript
// lexer and consumed by the parser.
package token

import "fmt"

// Type identifies the lexical category of a Token.
type Type int

const (
	ILLEGAL Type = iota
	EOF

	NUMBER          // 16, 1.5, .5
	STRING          // bare-word string: solid, red
	EXPLICIT_STRING // 'quoted' or "quoted"
	REFERENCE       // {dotted.name}
	RESERVED_KEYWORD
	FORMAT // px, em, rem, vw, vh, pt, in, cm, mm, deg, %
	HEX_COLOR

	// Arithmetic operators.
	PLUS
	MINUS
	ASTERISK
	SLASH
	CARET

	// Comparison operators.
	IS_EQ
	IS_NOT_EQ
	IS_GT
	IS_LT
	IS_GT_EQ
	IS_LT_EQ

	ASSIGN // =

	LPAREN
	RPAREN
	LBLOCK // [
	RBLOCK // ]
	COMMA
	DOT
	COLON
	SEMICOLON

	LOGIC_AND
	LOGIC_OR
	LOGIC_NOT
)

var typeNames = map[Type]string{
	ILLEGAL:          "ILLEGAL",
	EOF:              "EOF",
	NUMBER:           "NUMBER",
	STRING:           "STRING",
	EXPLICIT_STRING:  "EXPLICIT_STRING",
	REFERENCE:        "REFERENCE",
	RESERVED_KEYWORD: "RESERVED_KEYWORD",
	FORMAT:           "FORMAT",
	HEX_COLOR:        "HEX_COLOR",
	PLUS:             "+",
	MINUS:            "-",
	ASTERISK:         "*",
	SLASH:            "/",
	CARET:            "^",
	IS_EQ:            "==",
	IS_NOT_EQ:        "!=",
	IS_GT:            ">",
	IS_LT:            "<",
	IS_GT_EQ:         ">=",
	IS_LT_EQ:         "<=",
	ASSIGN:           "=",
	LPAREN:           "(",
	RPAREN:           ")",
	LBLOCK:           "[",
	RBLOCK:           "]",
	COMMA:            ",",
	DOT:              ".",
	COLON:            ":",
	SEMICOLON:        ";",
	LOGIC_AND:        "&&",
	LOGIC_OR:         "||",
	LOGIC_NOT:        "!",
}

// String renders a human-readable name for the token type, used in
// diagnostics (e.g. "expected ), got ,").
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ReservedKeywords is the closed set from spec §4.1, keyed by their
// lowercased spelling; the value is the canonical form returned by the
// lexer regardless of the source casing.
var ReservedKeywords = map[string]string{
	"true":      "true",
	"false":     "false",
	"null":      "null",
	"undefined": "undefined",
	"while":     "while",
	"if":        "if",
	"elif":      "elif",
	"else":      "else",
	"return":    "return",
	"variable":  "variable",
}

// FormatKeywords is the closed base set of unit suffixes from spec §3,
// keyed by their lowercased spelling; the value is the canonical form.
// The lexer consults only this table (plus '%'). Unit specs registered at
// runtime (spec §6 UnitSpec) are known to the UnitManager but are not added
// here, so a registered unit name written after a number (`12pc`) lexes as
// a bare word, not as a unit suffix.
var FormatKeywords = map[string]string{
	"px":  "px",
	"em":  "em",
	"rem": "rem",
	"vw":  "vw",
	"vh":  "vh",
	"pt":  "pt",
	"in":  "in",
	"cm":  "cm",
	"mm":  "mm",
	"deg": "deg",
}

// Position locates a token (or an AST node, via its leading token) in the
// original source text.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexeme with its classification and source position.
type Token struct {
	Type    Type
	Literal string
	Pos     Position
}

func New(typ Type, literal string, pos Position) Token {
	return Token{Type: typ, Literal: literal, Pos: pos}
}
