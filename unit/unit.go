// Package unit implements the unit registry and converter: a declarative
// table of units (names, symbols, aliases, ratios, systems) loaded once and
// immutable afterward, plus conversion, best-unit selection, and the
// per-unit fraction display policy.
package unit

import "fmt"

// PhysicalQuantity is the dimension a unit measures.
type PhysicalQuantity string

const (
	Volume      PhysicalQuantity = "volume"
	Mass        PhysicalQuantity = "mass"
	Length      PhysicalQuantity = "length"
	Time        PhysicalQuantity = "time"
	Temperature PhysicalQuantity = "temperature"
)

// PhysicalQuantities lists all known dimensions in display order.
var PhysicalQuantities = []PhysicalQuantity{Volume, Mass, Length, Time, Temperature}

// System is the measurement system a unit belongs to. The zero value means
// the unit is system-neutral (seconds, minutes).
type System string

const (
	SystemNone System = ""
	Metric     System = "metric"
	Imperial   System = "imperial"
)

// Unit is a single registered unit. Ratio and Difference convert a value to
// the base unit of its physical quantity: base = (value + Difference) * Ratio.
// Difference is zero for everything except temperature scales.
type Unit struct {
	Names      []string         `json:"names"`
	Symbols    []string         `json:"symbols"`
	Aliases    []string         `json:"aliases,omitempty"`
	Ratio      float64          `json:"ratio"`
	Difference float64          `json:"difference,omitempty"`
	Quantity   PhysicalQuantity `json:"quantity"`
	System     System           `json:"system,omitempty"`
}

// Name returns the unit's primary display name.
func (u *Unit) Name() string {
	if len(u.Names) > 0 {
		return u.Names[0]
	}
	if len(u.Symbols) > 0 {
		return u.Symbols[0]
	}
	return ""
}

// Symbol returns the unit's primary symbol, falling back to its name.
func (u *Unit) Symbol() string {
	if len(u.Symbols) > 0 {
		return u.Symbols[0]
	}
	return u.Name()
}

// Keys returns every string the unit can be looked up by.
func (u *Unit) Keys() []string {
	keys := make([]string, 0, len(u.Names)+len(u.Symbols)+len(u.Aliases))
	keys = append(keys, u.Names...)
	keys = append(keys, u.Symbols...)
	keys = append(keys, u.Aliases...)
	return keys
}

// ToBase expresses a value of this unit in the base scale of its physical
// quantity.
func (u *Unit) ToBase(v float64) float64 {
	return (v + u.Difference) * u.Ratio
}

// FromBase expresses a base-scale value in this unit.
func (u *Unit) FromBase(base float64) float64 {
	return base/u.Ratio - u.Difference
}

// UnknownUnitError is returned when a unit lookup finds no match.
type UnknownUnitError struct {
	Name string
}

func (e UnknownUnitError) Error() string {
	return fmt.Sprintf("unknown unit: %q", e.Name)
}

// IncompatibleUnitsError is returned when converting between units of
// different physical quantities.
type IncompatibleUnitsError struct {
	From, To *Unit
}

func (e IncompatibleUnitsError) Error() string {
	return fmt.Sprintf("cannot convert %s (%s) to %s (%s)",
		e.From.Name(), e.From.Quantity, e.To.Name(), e.To.Quantity)
}
