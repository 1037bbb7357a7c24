package lexer

import (
	"testing"

	"github.com/tokenscript-lang/tsi/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `16 * {base.spacing}px + 8`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.NUMBER, "16"},
		{token.ASTERISK, "*"},
		{token.REFERENCE, "base.spacing"},
		{token.FORMAT, "px"},
		{token.PLUS, "+"},
		{token.NUMBER, "8"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - type wrong. expected=%s, got=%s (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestKeywordsAreCaseInsensitiveAndCanonicalized(t *testing.T) {
	input := `TRUE False NULL Undefined WHILE If Elif ELSE Return VARIABLE`
	expected := []string{"true", "false", "null", "undefined", "while", "if", "elif", "else", "return", "variable"}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != token.RESERVED_KEYWORD {
			t.Fatalf("token %d: expected RESERVED_KEYWORD, got %s", i, tok.Type)
		}
		if tok.Literal != want {
			t.Fatalf("token %d: expected canonical %q, got %q", i, want, tok.Literal)
		}
	}
}

func TestFormatKeywords(t *testing.T) {
	l := New(`PX Em REM %`)
	want := []string{"px", "em", "rem", "%"}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != token.FORMAT {
			t.Fatalf("token %d: expected FORMAT, got %s", i, tok.Type)
		}
		if tok.Literal != w {
			t.Fatalf("token %d: expected %q, got %q", i, w, tok.Literal)
		}
	}
}

func TestNumberLeadingDot(t *testing.T) {
	l := New(`.5`)
	tok := l.NextToken()
	if tok.Type != token.NUMBER || tok.Literal != "0.5" {
		t.Fatalf("expected NUMBER 0.5, got %s %q", tok.Type, tok.Literal)
	}
}

func TestReferenceStripsWhitespace(t *testing.T) {
	l := New(`{  base . spacing  }`)
	tok := l.NextToken()
	if tok.Type != token.REFERENCE {
		t.Fatalf("expected REFERENCE, got %s", tok.Type)
	}
	if tok.Literal != "base.spacing" {
		t.Fatalf("expected whitespace stripped, got %q", tok.Literal)
	}
}

func TestReferenceErrors(t *testing.T) {
	t.Run("missing closer", func(t *testing.T) {
		l := New(`{base`)
		l.NextToken()
		if len(l.Errors()) != 1 {
			t.Fatalf("expected 1 error, got %d", len(l.Errors()))
		}
	})
	t.Run("empty name", func(t *testing.T) {
		l := New(`{}`)
		l.NextToken()
		if len(l.Errors()) != 1 {
			t.Fatalf("expected 1 error, got %d", len(l.Errors()))
		}
	})
}

func TestQuotedStrings(t *testing.T) {
	for _, quote := range []string{`'`, `"`} {
		l := New(quote + "hello" + quote)
		tok := l.NextToken()
		if tok.Type != token.EXPLICIT_STRING || tok.Literal != "hello" {
			t.Fatalf("quote %s: expected EXPLICIT_STRING hello, got %s %q", quote, tok.Type, tok.Literal)
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`'hello`)
	l.NextToken()
	if len(l.Errors()) != 1 {
		t.Fatalf("expected 1 error, got %d", len(l.Errors()))
	}
}

func TestHexColor(t *testing.T) {
	tests := []string{"#fff", "#FF0080", "#123456"}
	for _, src := range tests {
		l := New(src)
		tok := l.NextToken()
		if tok.Type != token.HEX_COLOR || tok.Literal != src {
			t.Fatalf("%s: expected HEX_COLOR %s, got %s %q", src, src, tok.Type, tok.Literal)
		}
	}
}

func TestHexColorMalformed(t *testing.T) {
	for _, src := range []string{"#ff", "#fffff", "#gg0000"} {
		l := New(src)
		l.NextToken()
		if len(l.Errors()) == 0 {
			t.Fatalf("%s: expected a lexer error", src)
		}
	}
}

func TestLineComment(t *testing.T) {
	l := New("16 // a comment\n+ 8")
	tok := l.NextToken()
	if tok.Type != token.NUMBER || tok.Literal != "16" {
		t.Fatalf("expected NUMBER 16, got %s %q", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != token.PLUS {
		t.Fatalf("expected PLUS after comment, got %s", tok.Type)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := New(`1 + 2`)
	if p := l.Peek(0); p.Type != token.NUMBER {
		t.Fatalf("Peek(0) expected NUMBER, got %s", p.Type)
	}
	if p := l.Peek(1); p.Type != token.PLUS {
		t.Fatalf("Peek(1) expected PLUS, got %s", p.Type)
	}
	tok := l.NextToken()
	if tok.Type != token.NUMBER || tok.Literal != "1" {
		t.Fatalf("expected NUMBER 1 first, got %s %q", tok.Type, tok.Literal)
	}
}

func TestEmojiIdentifier(t *testing.T) {
	l := New(`🚀`)
	tok := l.NextToken()
	if tok.Type != token.STRING {
		t.Fatalf("expected STRING for emoji identifier, got %s", tok.Type)
	}
	if tok.Literal != "🚀" {
		t.Fatalf("expected literal 🚀, got %q", tok.Literal)
	}
}

func TestHyphenatedIdentifier(t *testing.T) {
	l := New(`linear-gradient`)
	tok := l.NextToken()
	if tok.Type != token.STRING || tok.Literal != "linear-gradient" {
		t.Fatalf("expected STRING linear-gradient, got %s %q", tok.Type, tok.Literal)
	}
}
