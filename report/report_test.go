package report_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipemark/recipemark/report"
)

// TestSourceReport_Accumulation tests that diagnostics accumulate in emission
// order and that severity queries reflect the recorded entries.
func TestSourceReport_Accumulation(t *testing.T) {
	var r report.SourceReport
	assert.True(t, r.IsEmpty())
	assert.False(t, r.HasErrors())

	r.Warn("parse.component", "malformed marker", report.NewSpan(4, 8))
	r.Error("analysis.reference", "reference not found", report.NewSpan(10, 15))

	diags := r.Diagnostics()
	require.Len(t, diags, 2)
	assert.Equal(t, report.SeverityWarning, diags[0].Severity)
	assert.Equal(t, report.SeverityError, diags[1].Severity)
	assert.True(t, r.HasErrors())
	assert.True(t, r.HasWarnings())
	assert.False(t, r.IsEmpty())
}

// TestSourceReport_Merge tests that Merge preserves both reports' orderings.
func TestSourceReport_Merge(t *testing.T) {
	var a, b report.SourceReport
	a.Warn("w1", "first", report.PosSpan(0))
	b.Error("e1", "second", report.PosSpan(5))

	a.Merge(&b)
	diags := a.Diagnostics()
	require.Len(t, diags, 2)
	assert.Equal(t, "w1", diags[0].Code)
	assert.Equal(t, "e1", diags[1].Code)
}

// TestSourceReport_DiagnosticsNeverNil tests that the zero report yields an
// empty, non-nil slice (callers serialize it directly).
func TestSourceReport_DiagnosticsNeverNil(t *testing.T) {
	var r report.SourceReport
	assert.NotNil(t, r.Diagnostics())
	assert.Empty(t, r.Diagnostics())
}

// TestResolve tests byte-offset to line/column resolution.
func TestResolve(t *testing.T) {
	src := "first\nsecond line\nthird"
	tests := []struct {
		name   string
		offset int
		line   int
		column int
	}{
		{"start of file", 0, 1, 1},
		{"middle of first line", 3, 1, 4},
		{"start of second line", 6, 2, 1},
		{"middle of second line", 13, 2, 8},
		{"past end clamps", 1000, 3, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := report.Resolve(src, tt.offset)
			assert.Equal(t, tt.line, pos.Line)
			assert.Equal(t, tt.column, pos.Column)
		})
	}
}

// TestRender tests the human-readable report layout: location header, source
// line echo, and caret underline aligned with the span.
func TestRender(t *testing.T) {
	src := "a step with @bad{1//2} inside\n"
	var r report.SourceReport
	r.Error("parse.quantity", "division by zero", report.NewSpan(17, 21))

	var buf strings.Builder
	require.NoError(t, r.Render(&buf, src, "dinner.cook"))

	out := buf.String()
	assert.Contains(t, out, "error: division by zero")
	assert.Contains(t, out, "--> dinner.cook:1:18")
	assert.Contains(t, out, "a step with @bad{1//2} inside")
	assert.Contains(t, out, "^^^^")
}

// TestRender_NoFilename tests that the location header omits the filename
// prefix when none is given.
func TestRender_NoFilename(t *testing.T) {
	var r report.SourceReport
	r.Warn("parse", "something", report.PosSpan(0))

	var buf strings.Builder
	require.NoError(t, r.Render(&buf, "x", ""))
	assert.Contains(t, buf.String(), "--> 1:1")
}
