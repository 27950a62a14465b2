// Package report provides source spans and the diagnostic accumulator shared
// by every stage of the recipe pipeline. Diagnostics are collected, never
// thrown: each parse or analysis call returns its best-effort result together
// with a SourceReport describing everything that went wrong along the way.
package report

import "fmt"

// Severity classifies a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Span is a half-open byte range [Start, End) into the original source text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewSpan returns the span [start, end).
func NewSpan(start, end int) Span {
	return Span{Start: start, End: end}
}

// PosSpan returns an empty span anchored at offset.
func PosSpan(offset int) Span {
	return Span{Start: offset, End: offset}
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether offset falls inside the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Diagnostic is a structured error or warning record emitted during parsing,
// analysis, scaling, or aisle-config parsing.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"` // short kind tag, e.g. "parse.component", "analysis.reference"
	Message  string   `json:"message"`
	Span     Span     `json:"span"`
	Hints    []string `json:"hints,omitempty"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s (%s)", d.Severity, d.Message, d.Code)
}

// SourceReport accumulates diagnostics in emission order.
// The zero value is ready to use.
type SourceReport struct {
	diags []Diagnostic
}

// Error records an error diagnostic.
func (r *SourceReport) Error(code, message string, span Span, hints ...string) {
	r.diags = append(r.diags, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  message,
		Span:     span,
		Hints:    hints,
	})
}

// Warn records a warning diagnostic.
func (r *SourceReport) Warn(code, message string, span Span, hints ...string) {
	r.diags = append(r.diags, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  message,
		Span:     span,
		Hints:    hints,
	})
}

// Append adds an already-built diagnostic.
func (r *SourceReport) Append(d Diagnostic) {
	r.diags = append(r.diags, d)
}

// Merge appends all diagnostics from other, preserving order.
func (r *SourceReport) Merge(other *SourceReport) {
	if other == nil {
		return
	}
	r.diags = append(r.diags, other.diags...)
}

// Diagnostics returns the accumulated diagnostics in emission order.
// The returned slice is never nil.
func (r *SourceReport) Diagnostics() []Diagnostic {
	if r.diags == nil {
		return []Diagnostic{}
	}
	return r.diags
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (r *SourceReport) HasErrors() bool {
	for _, d := range r.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any warning-severity diagnostic was recorded.
func (r *SourceReport) HasWarnings() bool {
	for _, d := range r.diags {
		if d.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// IsEmpty reports whether no diagnostics were recorded.
func (r *SourceReport) IsEmpty() bool { return len(r.diags) == 0 }
