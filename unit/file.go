package unit

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// File is the YAML unit-definition table. Multiple files may be layered into
// one Builder; later files extend earlier ones.
type File struct {
	DefaultSystem System                             `yaml:"default_system"`
	SIPrefixes    map[string]SIPrefix                `yaml:"si_prefixes"`
	Quantities    map[PhysicalQuantity]QuantityGroup `yaml:"quantities"`
	Fractions     *FractionsFile                     `yaml:"fractions"`
}

// SIPrefix scales an expand_si unit into a derived unit (kilo, milli, ...).
type SIPrefix struct {
	Symbol string  `yaml:"symbol"`
	Ratio  float64 `yaml:"ratio"`
}

// QuantityGroup holds the units and best-unit lists of one physical quantity.
type QuantityGroup struct {
	Best  BestUnits            `yaml:"best"`
	Units map[System][]UnitDef `yaml:"units"`
}

// BestUnits names the units eligible for best-unit selection. Either a single
// unified list (any system) or one list per system.
type BestUnits struct {
	Unified  []string
	BySystem map[System][]string
}

// UnmarshalYAML accepts either a sequence (unified) or a mapping keyed by
// system name.
func (b *BestUnits) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		return node.Decode(&b.Unified)
	case yaml.MappingNode:
		return node.Decode(&b.BySystem)
	default:
		return fmt.Errorf("best units: expected sequence or mapping, got %v", node.Tag)
	}
}

// For returns the best-unit name list for a system.
func (b *BestUnits) For(system System) []string {
	if b.Unified != nil {
		return b.Unified
	}
	return b.BySystem[system]
}

// Empty reports whether no best list is configured at all.
func (b *BestUnits) Empty() bool {
	return len(b.Unified) == 0 && len(b.BySystem) == 0
}

// UnitDef is one unit entry in the table.
type UnitDef struct {
	Names      []string `yaml:"names"`
	Symbols    []string `yaml:"symbols"`
	Aliases    []string `yaml:"aliases"`
	Ratio      float64  `yaml:"ratio"`
	Difference float64  `yaml:"difference"`
	ExpandSI   bool     `yaml:"expand_si"`
}

// FractionsFile configures fraction display, layered from most to least
// specific: per-unit, per-quantity, per-system, all.
type FractionsFile struct {
	All      *FractionsEntry                      `yaml:"all"`
	Metric   *FractionsEntry                      `yaml:"metric"`
	Imperial *FractionsEntry                      `yaml:"imperial"`
	Quantity map[PhysicalQuantity]*FractionsEntry `yaml:"quantity"`
	Unit     map[string]*FractionsEntry           `yaml:"unit"`
}

// FractionsEntry is one fraction policy. In YAML it may be written as a bare
// boolean (shorthand for enabled/disabled with defaults) or as a mapping.
type FractionsEntry struct {
	Enabled        *bool    `yaml:"enabled"`
	Accuracy       *float64 `yaml:"accuracy"`
	MaxDenominator *int     `yaml:"max_denominator"`
	MaxWhole       *int     `yaml:"max_whole"`
}

func (e *FractionsEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var enabled bool
		if err := node.Decode(&enabled); err != nil {
			return fmt.Errorf("fractions entry: %w", err)
		}
		e.Enabled = &enabled
		return nil
	}
	type plain FractionsEntry
	return node.Decode((*plain)(e))
}

// ParseFile decodes a YAML unit table.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse units file: %w", err)
	}
	return &f, nil
}
