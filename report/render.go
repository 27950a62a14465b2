package report

import (
	"fmt"
	"io"
	"strings"
)

// Position is a resolved 1-based line/column location for a byte offset.
type Position struct {
	Line   int
	Column int
}

// Resolve maps a byte offset into src to its 1-based line and column.
// Offsets past the end of src resolve to the position just after the last
// character. Columns count bytes, not runes, matching how spans are recorded.
func Resolve(src string, offset int) Position {
	if offset > len(src) {
		offset = len(src)
	}
	line := 1
	col := 1
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return Position{Line: line, Column: col}
}

// Render writes a human-readable annotated report to w. Each diagnostic is
// printed with its resolved location, the offending source line, and a caret
// marker under the span. filename may be empty.
func (r *SourceReport) Render(w io.Writer, src, filename string) error {
	for _, d := range r.diags {
		if err := renderDiagnostic(w, d, src, filename); err != nil {
			return err
		}
	}
	return nil
}

func renderDiagnostic(w io.Writer, d Diagnostic, src, filename string) error {
	pos := Resolve(src, d.Span.Start)

	loc := fmt.Sprintf("%d:%d", pos.Line, pos.Column)
	if filename != "" {
		loc = filename + ":" + loc
	}
	if _, err := fmt.Fprintf(w, "%s: %s\n  --> %s\n", d.Severity, d.Message, loc); err != nil {
		return err
	}

	line := sourceLine(src, pos.Line)
	if line != "" {
		marker := caretMarker(line, pos.Column, d.Span.Len())
		if _, err := fmt.Fprintf(w, "   | %s\n   | %s\n", line, marker); err != nil {
			return err
		}
	}

	for _, h := range d.Hints {
		if _, err := fmt.Fprintf(w, "   = hint: %s\n", h); err != nil {
			return err
		}
	}
	return nil
}

// sourceLine returns the 1-based line n of src without its line ending,
// or "" when n is out of range.
func sourceLine(src string, n int) string {
	for i := 1; len(src) > 0; i++ {
		end := strings.IndexByte(src, '\n')
		var line string
		if end < 0 {
			line, src = src, ""
		} else {
			line, src = src[:end], src[end+1:]
		}
		if i == n {
			return strings.TrimSuffix(line, "\r")
		}
	}
	return ""
}

// caretMarker builds the "^^^^" underline for a span starting at the given
// 1-based column. Tabs in the source line are mirrored so the marker stays
// aligned. At least one caret is always produced.
func caretMarker(line string, column, width int) string {
	var b strings.Builder
	for i := 0; i < column-1 && i < len(line); i++ {
		if line[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	if width < 1 {
		width = 1
	}
	b.WriteString(strings.Repeat("^", width))
	return b.String()
}
