// Package quantity implements quantity values (numbers, ranges, text),
// arithmetic over them, grouped totals across recipe occurrences, and
// human-friendly fraction formatting.
package quantity

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind discriminates the value forms a quantity can take.
type Kind int

const (
	KindEmpty Kind = iota
	KindNumber
	KindRange
	KindText
	KindByServings
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumber:
		return "number"
	case KindRange:
		return "range"
	case KindText:
		return "text"
	case KindByServings:
		return "by-servings"
	}
	return "unknown"
}

// Value is the amount part of a quantity. The zero value is the empty
// marker used by intermediate-preparation placeholders.
type Value struct {
	kind  Kind
	start float64 // number, or range start
	end   float64 // range end
	text  string
	parts []Value // one value per declared serving figure
}

// Empty returns the empty marker value.
func Empty() Value { return Value{} }

// NewNumber returns a numeric value.
func NewNumber(n float64) Value {
	return Value{kind: KindNumber, start: n}
}

// NewRange returns a range value. A degenerate range collapses to a number.
func NewRange(start, end float64) Value {
	if start == end {
		return NewNumber(start)
	}
	return Value{kind: KindRange, start: start, end: end}
}

// NewText returns a text value.
func NewText(s string) Value {
	return Value{kind: KindText, text: s}
}

// NewByServings returns a value that carries one alternative per declared
// serving figure. A single part collapses to that part.
func NewByServings(parts []Value) Value {
	if len(parts) == 1 {
		return parts[0]
	}
	return Value{kind: KindByServings, parts: parts}
}

func (v Value) Kind() Kind { return v.kind }

// Number returns the numeric value; only meaningful for KindNumber.
func (v Value) Number() float64 { return v.start }

// Range returns the range bounds; only meaningful for KindRange.
func (v Value) Range() (start, end float64) { return v.start, v.end }

// Text returns the text; only meaningful for KindText.
func (v Value) Text() string { return v.text }

// ByServings returns the per-serving alternatives; only meaningful for
// KindByServings. Callers must not mutate the returned slice.
func (v Value) ByServings() []Value { return v.parts }

// IsNumeric reports whether the value is a number or a range.
func (v Value) IsNumeric() bool {
	return v.kind == KindNumber || v.kind == KindRange
}

// Equal reports exact equality (no epsilon).
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == KindByServings {
		if len(v.parts) != len(o.parts) {
			return false
		}
		for i := range v.parts {
			if !v.parts[i].Equal(o.parts[i]) {
				return false
			}
		}
		return true
	}
	return v.start == o.start && v.end == o.end && v.text == o.text
}

// EqualApprox reports equality where numeric parts may differ by up to eps.
func (v Value) EqualApprox(o Value, eps float64) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return math.Abs(v.start-o.start) <= eps
	case KindRange:
		return math.Abs(v.start-o.start) <= eps && math.Abs(v.end-o.end) <= eps
	case KindByServings:
		if len(v.parts) != len(o.parts) {
			return false
		}
		for i := range v.parts {
			if !v.parts[i].EqualApprox(o.parts[i], eps) {
				return false
			}
		}
		return true
	default:
		return v.Equal(o)
	}
}

// Scale multiplies numeric values by factor. Text, empty and per-serving
// values are returned unchanged; callers that need a diagnostic for unscaled
// values check the kind themselves.
func (v Value) Scale(factor float64) Value {
	switch v.kind {
	case KindNumber:
		return NewNumber(v.start * factor)
	case KindRange:
		return NewRange(v.start*factor, v.end*factor)
	default:
		return v
	}
}

// Errors returned by value arithmetic.
var (
	ErrTextValue       = errors.New("text values cannot be added")
	ErrEmptyValue      = errors.New("empty values cannot be added")
	ErrByServingsValue = errors.New("per-serving values cannot be added")
	ErrDivisionByZero  = errors.New("division by zero")
)

// TryAdd returns v + o. Numbers and ranges combine; a number added to a
// range shifts both bounds. Text, empty and per-serving values are rejected.
func (v Value) TryAdd(o Value) (Value, error) {
	if v.kind == KindText || o.kind == KindText {
		return Value{}, ErrTextValue
	}
	if v.kind == KindByServings || o.kind == KindByServings {
		return Value{}, ErrByServingsValue
	}
	if v.kind == KindEmpty || o.kind == KindEmpty {
		return Value{}, ErrEmptyValue
	}
	vs, ve := v.bounds()
	os, oe := o.bounds()
	if v.kind == KindNumber && o.kind == KindNumber {
		return NewNumber(vs + os), nil
	}
	return NewRange(vs+os, ve+oe), nil
}

func (v Value) bounds() (float64, float64) {
	if v.kind == KindRange {
		return v.start, v.end
	}
	return v.start, v.start
}

// MarshalJSON encodes the value with an explicit type tag so hosts can
// discriminate kinds without guessing.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(struct {
			Type  string  `json:"type"`
			Value float64 `json:"value"`
		}{"number", v.start})
	case KindRange:
		return json.Marshal(struct {
			Type  string  `json:"type"`
			Start float64 `json:"start"`
			End   float64 `json:"end"`
		}{"range", v.start, v.end})
	case KindText:
		return json.Marshal(struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		}{"text", v.text})
	case KindByServings:
		return json.Marshal(struct {
			Type   string  `json:"type"`
			Values []Value `json:"values"`
		}{"by_servings", v.parts})
	default:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{"empty"})
	}
}

// MarshalYAML mirrors MarshalJSON for YAML output.
func (v Value) MarshalYAML() (any, error) {
	switch v.kind {
	case KindNumber:
		return map[string]any{"type": "number", "value": v.start}, nil
	case KindRange:
		return map[string]any{"type": "range", "start": v.start, "end": v.end}, nil
	case KindText:
		return map[string]any{"type": "text", "value": v.text}, nil
	case KindByServings:
		return map[string]any{"type": "by_servings", "values": v.parts}, nil
	default:
		return map[string]any{"type": "empty"}, nil
	}
}

var (
	decimalRE = `\d+(?:\.\d+)?`
	rangeRE   = regexp.MustCompile(`^(` + decimalRE + `)\s*-\s*(` + decimalRE + `)$`)
	mixedRE   = regexp.MustCompile(`^(\d+)\s+(\d+)\s*/\s*(\d+)$`)
	fracRE    = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)$`)
)

// ParseValue interprets s as a quantity value: a decimal number, a fraction
// ("1/2"), a mixed number ("2 1/2"), a range ("2-3"), or, failing all of
// those, text. A zero denominator returns ErrDivisionByZero together with
// the recovery value 1 so callers can keep going after reporting it.
func ParseValue(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Empty(), nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
		return NewNumber(n), nil
	}
	if m := rangeRE.FindStringSubmatch(s); m != nil {
		start, err1 := strconv.ParseFloat(m[1], 64)
		end, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			return NewRange(start, end), nil
		}
	}
	if m := mixedRE.FindStringSubmatch(s); m != nil {
		whole, _ := strconv.ParseFloat(m[1], 64)
		num, _ := strconv.ParseFloat(m[2], 64)
		den, _ := strconv.ParseFloat(m[3], 64)
		if den == 0 {
			return NewNumber(1), ErrDivisionByZero
		}
		return NewNumber(whole + num/den), nil
	}
	if m := fracRE.FindStringSubmatch(s); m != nil {
		num, _ := strconv.ParseFloat(m[1], 64)
		den, _ := strconv.ParseFloat(m[2], 64)
		if den == 0 {
			return NewNumber(1), ErrDivisionByZero
		}
		return NewNumber(num / den), nil
	}
	return NewText(s), nil
}

// FormatNumber renders a float rounded to at most three decimal places with
// trailing zeros trimmed.
func FormatNumber(n float64) string {
	rounded := math.Round(n*1000) / 1000
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// Format renders the value as a plain display string: numbers rounded to
// three decimals, ranges as "a-b", text verbatim, per-serving alternatives
// joined with "|", empty as "".
func (v Value) Format() string {
	switch v.kind {
	case KindNumber:
		return FormatNumber(v.start)
	case KindRange:
		return fmt.Sprintf("%s-%s", FormatNumber(v.start), FormatNumber(v.end))
	case KindText:
		return v.text
	case KindByServings:
		rendered := make([]string, len(v.parts))
		for i, p := range v.parts {
			rendered[i] = p.Format()
		}
		return strings.Join(rendered, "|")
	default:
		return ""
	}
}

func (v Value) String() string { return v.Format() }
