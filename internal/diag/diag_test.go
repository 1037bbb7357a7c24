package diag

import (
	"strings"
	"testing"

	"github.com/tokenscript-lang/tsi/internal/token"
)

func TestFormatPlain(t *testing.T) {
	e := &SourceError{
		Source:  "16 * {base.spacing}px",
		Pos:     token.Position{Line: 1, Column: 6},
		Message: `missing reference "base.spacing"`,
	}
	out := e.Format(false)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), out)
	}
	if lines[0] != `error at 1:6: missing reference "base.spacing"` {
		t.Fatalf("got %q", lines[0])
	}
	if lines[1] != "16 * {base.spacing}px" {
		t.Fatalf("got %q", lines[1])
	}
	if lines[2] != "     ^" {
		t.Fatalf("got %q", lines[2])
	}
}

func TestFormatColor(t *testing.T) {
	e := &SourceError{Source: "x", Pos: token.Position{Line: 1, Column: 1}, Message: "boom"}
	out := e.Format(true)
	if !strings.Contains(out, ansiRed) || !strings.Contains(out, ansiReset) {
		t.Fatalf("expected ANSI color codes in %q", out)
	}
}

func TestFormatMultilineSource(t *testing.T) {
	src := "line one\nline two\nline three"
	e := &SourceError{Source: src, Pos: token.Position{Line: 2, Column: 1}, Message: "oops"}
	out := e.Format(false)
	if !strings.Contains(out, "line two") {
		t.Fatalf("expected to find line two in %q", out)
	}
}

func TestErrorInterface(t *testing.T) {
	var err error = &SourceError{Message: "bad thing"}
	if err.Error() != "bad thing" {
		t.Fatalf("got %q", err.Error())
	}
}
