package parser

import (
	"regexp"
	"strings"

	"github.com/recipemark/recipemark/quantity"
	"github.com/recipemark/recipemark/report"
)

// advancedUnitRE splits "2 kg" style quantities: an unambiguously numeric
// value (number, decimal, fraction, mixed number, or range) separated from
// its unit by whitespace. Only consulted under the advanced-units extension.
var advancedUnitRE = regexp.MustCompile(
	`^(\d+\s+\d+\s*/\s*\d+` + // mixed number
		`|\d+\s*/\s*\d+` + // fraction
		`|\d+(?:\.\d+)?\s*-\s*\d+(?:\.\d+)?` + // range
		`|\d+(?:\.\d+)?` + // number
		`)\s+(\S.*)$`)

// parseQuantityText interprets the raw text between "{" and "}". Empty
// content means no quantity at all.
func parseQuantityText(src string, span report.Span, exts Extensions, rep *report.SourceReport) *Quantity {
	content := src[span.Start:span.End]
	q := &Quantity{Loc: span}

	// Scaling lock: "{=2%tbsp}" keeps its amount fixed under scaling.
	working, offset := trimOffsets(content, span.Start)
	if strings.HasPrefix(working, "=") {
		q.Locked = true
		working, offset = trimOffsets(working[1:], offset+1)
	}

	valueText := working
	valueOffset := offset
	unitText := ""
	unitOffset := 0

	if sep := strings.IndexByte(working, '%'); sep >= 0 {
		valueText = working[:sep]
		unitText = working[sep+1:]
		unitOffset = offset + sep + 1
	} else if exts.Has(AdvancedUnits) {
		if m := advancedUnitRE.FindStringSubmatchIndex(working); m != nil {
			valueText = working[m[2]:m[3]]
			unitText = working[m[4]:m[5]]
			unitOffset = offset + m[4]
		}
	}

	valueText, valueOffset = trimOffsets(valueText, valueOffset)
	// Legacy auto-scale marker; scaling is the default, so it is inert.
	valueText = strings.TrimRight(strings.TrimSuffix(strings.TrimRight(valueText, " \t"), "*"), " \t")
	unitText, unitOffset = trimOffsets(unitText, unitOffset)

	if valueText == "" && unitText == "" {
		if q.Locked {
			rep.Warn("parse.quantity", "scaling lock on an empty quantity", span)
		}
		return nil
	}

	q.Value = parseScalableValue(valueText, valueOffset, exts, rep)
	q.ValueSpan = report.NewSpan(valueOffset, valueOffset+len(valueText))
	q.Unit = unitText
	q.UnitSpan = report.NewSpan(unitOffset, unitOffset+len(unitText))
	return q
}

// parseScalableValue interprets the value part of a quantity. "|" separates
// one alternative per declared serving figure ("{100|150%g}"); a lone value
// parses as usual. An empty alternative is reported and replaced with 1.
func parseScalableValue(text string, offset int, exts Extensions, rep *report.SourceReport) quantity.Value {
	if !strings.Contains(text, "|") {
		return parseOneValue(text, offset, exts, rep)
	}
	parts := strings.Split(text, "|")
	values := make([]quantity.Value, len(parts))
	pos := offset
	for i, part := range parts {
		trimmed, partOffset := trimOffsets(part, pos)
		if trimmed == "" {
			rep.Error("parse.quantity", `missing value between "|" separators`,
				report.NewSpan(pos, pos+len(part)),
				"the value 1 is used instead")
			values[i] = quantity.NewNumber(1)
		} else {
			values[i] = parseOneValue(trimmed, partOffset, exts, rep)
		}
		pos += len(part) + 1
	}
	return quantity.NewByServings(values)
}

func parseOneValue(text string, offset int, exts Extensions, rep *report.SourceReport) quantity.Value {
	value, err := quantity.ParseValue(text)
	if err != nil {
		rep.Error("parse.quantity", "invalid quantity value: "+err.Error(),
			report.NewSpan(offset, offset+len(text)),
			"the value 1 is used instead")
	}
	if value.Kind() == quantity.KindRange && !exts.Has(RangeValues) {
		value = quantity.NewText(text)
	}
	return value
}

// trimOffsets trims surrounding whitespace and returns how far the start
// moved, keeping spans anchored to the original text.
func trimOffsets(s string, offset int) (string, int) {
	trimmed := strings.TrimLeft(s, " \t")
	offset += len(s) - len(trimmed)
	return strings.TrimRight(trimmed, " \t"), offset
}
