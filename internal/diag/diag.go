// Package diag formats TokenScript errors as source-pointing diagnostics,
// modeled on the teacher's internal/errors.CompilerError.Format(color bool):
// a one-line summary followed by the offending source line and a caret
// under the exact column.
package diag

import (
	"fmt"
	"strings"

	"github.com/tokenscript-lang/tsi/internal/token"
)

// SourceError pairs a message with the token position and original source
// text needed to render a caret diagram.
type SourceError struct {
	Source  string
	Pos     token.Position
	Message string
}

func (e *SourceError) Error() string { return e.Message }

// ansiRed/ansiReset are the only escapes used; Format degrades to plain
// text when color is false, the same switch the teacher's formatter takes.
const (
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// Format renders a one-line message plus a caret-annotated source line, e.g.:
//
//	error at 1:6: missing reference "base.spacing"
//	16 * {base.spacing}px
//	     ^
func (e *SourceError) Format(color bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "error at %s: %s\n", e.Pos, e.Message)

	line := sourceLine(e.Source, e.Pos.Line)
	sb.WriteString(line)
	sb.WriteString("\n")

	col := e.Pos.Column
	if col < 1 {
		col = 1
	}
	caretLine := strings.Repeat(" ", col-1) + "^"
	if color {
		sb.WriteString(ansiRed)
		sb.WriteString(caretLine)
		sb.WriteString(ansiReset)
	} else {
		sb.WriteString(caretLine)
	}
	return sb.String()
}

func sourceLine(src string, lineNo int) string {
	lines := strings.Split(src, "\n")
	if lineNo < 1 || lineNo > len(lines) {
		return ""
	}
	return lines[lineNo-1]
}
