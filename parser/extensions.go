// Package parser turns recipe markup text into a parse tree of blocks plus a
// diagnostic report. It never aborts on malformed recipe text: ill-formed
// regions degrade to plain text with a warning and parsing continues.
package parser

import (
	"strings"

	"github.com/recipemark/recipemark/report"
)

// Extensions is the immutable capability set threaded through parsing and
// analysis. Documents that use no extension syntax parse identically under
// every subset of flags.
type Extensions uint16

const (
	// ComponentModifiers enables the @&-?+ modifier characters between a
	// component marker and its name.
	ComponentModifiers Extensions = 1 << iota
	// ComponentAlias enables "@name|display{}" aliases.
	ComponentAlias
	// AdvancedUnits enables whitespace unit separation for numeric values
	// and unit validation during analysis.
	AdvancedUnits
	// Modes enables the special [mode] and [duplicate] metadata keys.
	Modes
	// InlineQuantities enables detection of quantities inside step text.
	InlineQuantities
	// RangeValues enables "2-3" range values.
	RangeValues
	// TimerRequiresTime makes a timer without a time quantity an error.
	TimerRequiresTime
	// IntermediatePreparations enables "&(~1)" style back-references to
	// steps and sections. Implies ComponentModifiers.
	IntermediatePreparations
)

const (
	// NoExtensions is canonical parsing.
	NoExtensions Extensions = 0
	// AllExtensions enables everything.
	AllExtensions Extensions = ComponentModifiers | ComponentAlias |
		AdvancedUnits | Modes | InlineQuantities | RangeValues |
		TimerRequiresTime | IntermediatePreparations
	// DefaultExtensions is AllExtensions without the strict timer rule,
	// matching how lenient hosts usually configure the pipeline.
	DefaultExtensions Extensions = AllExtensions &^ TimerRequiresTime
)

// Has reports whether all bits of flag are enabled.
func (e Extensions) Has(flag Extensions) bool { return e&flag == flag }

// Normalize applies flag implications.
func (e Extensions) Normalize() Extensions {
	if e.Has(IntermediatePreparations) {
		e |= ComponentModifiers
	}
	return e
}

var extensionNames = map[string]Extensions{
	"component-modifiers":       ComponentModifiers,
	"component-alias":           ComponentAlias,
	"advanced-units":            AdvancedUnits,
	"modes":                     Modes,
	"inline-quantities":         InlineQuantities,
	"range-values":              RangeValues,
	"timer-requires-time":       TimerRequiresTime,
	"intermediate-preparations": IntermediatePreparations,
}

// ParseExtension resolves an extension by its kebab-case name.
func ParseExtension(name string) (Extensions, bool) {
	e, ok := extensionNames[strings.ToLower(name)]
	return e, ok
}

// ExtensionNames lists the kebab-case names of all enabled flags.
func (e Extensions) ExtensionNames() []string {
	ordered := []string{
		"component-modifiers", "component-alias", "advanced-units", "modes",
		"inline-quantities", "range-values", "timer-requires-time",
		"intermediate-preparations",
	}
	var out []string
	for _, name := range ordered {
		if e.Has(extensionNames[name]) {
			out = append(out, name)
		}
	}
	return out
}

// Modifiers is the bit set of component modifier characters.
type Modifiers uint8

const (
	// ModRecipe marks a reference to another recipe ("@@name" or a
	// path-like name).
	ModRecipe Modifiers = 1 << iota
	// ModRef marks an explicit reference to a prior definition ("&").
	ModRef
	// ModHidden keeps the component out of listings ("-").
	ModHidden
	// ModOptional marks the component optional ("?").
	ModOptional
	// ModNew forces a fresh definition even in reference duplicate mode ("+").
	ModNew
)

// Has reports whether all bits of flag are set.
func (m Modifiers) Has(flag Modifiers) bool { return m&flag == flag }

// ShouldBeListed reports whether a component with these modifiers belongs in
// ingredient listings: hidden components and plain references do not.
func (m Modifiers) ShouldBeListed() bool {
	return m&(ModHidden|ModRef) == 0
}

// String renders the modifier characters in marker order.
func (m Modifiers) String() string {
	var b strings.Builder
	if m.Has(ModRecipe) {
		b.WriteByte('@')
	}
	if m.Has(ModRef) {
		b.WriteByte('&')
	}
	if m.Has(ModNew) {
		b.WriteByte('+')
	}
	if m.Has(ModHidden) {
		b.WriteByte('-')
	}
	if m.Has(ModOptional) {
		b.WriteByte('?')
	}
	return b.String()
}

// IntermediateTarget is what an intermediate-preparation reference points at.
type IntermediateTarget int

const (
	// TargetStep is an absolute 1-based step number: "&(2)".
	TargetStep IntermediateTarget = iota
	// TargetStepBack counts steps backward from here: "&(~1)".
	TargetStepBack
	// TargetSection is an absolute 1-based section number: "&(=2)".
	TargetSection
	// TargetSectionBack counts sections backward: "&(=~1)".
	TargetSectionBack
)

func (t IntermediateTarget) String() string {
	switch t {
	case TargetStep:
		return "step"
	case TargetStepBack:
		return "relative step"
	case TargetSection:
		return "section"
	case TargetSectionBack:
		return "relative section"
	}
	return "unknown"
}

// IntermediateRef is a parsed "&(...)" back-reference.
type IntermediateRef struct {
	Target IntermediateTarget
	Value  int
	Span   report.Span
}
