package unit

import "math"

// bestThreshold is the slack applied when testing whether a value reaches 1
// in a candidate unit, so 0.999... noise from repeated conversion still
// counts as 1.
const bestThreshold = 1 - 0.001

// Converter is an immutable unit registry. It is safe for concurrent use:
// nothing mutates it after Build.
type Converter struct {
	units         []*Unit
	index         map[string]*Unit
	best          map[PhysicalQuantity]map[System][]*Unit
	fractions     FractionsFile
	defaultSystem System
}

// Empty returns a converter that knows no units. Lookups fail, so quantity
// grouping degrades to exact-unit-text matching.
func Empty() *Converter {
	return &Converter{
		index:         map[string]*Unit{},
		best:          map[PhysicalQuantity]map[System][]*Unit{},
		defaultSystem: Metric,
	}
}

// DefaultSystem returns the system used when neither the caller nor the unit
// pins one.
func (c *Converter) DefaultSystem() System { return c.defaultSystem }

// Units returns all registered units in registration order.
func (c *Converter) Units() []*Unit { return c.units }

// UnitsOf returns the registered units measuring the given quantity.
func (c *Converter) UnitsOf(q PhysicalQuantity) []*Unit {
	var out []*Unit
	for _, u := range c.units {
		if u.Quantity == q {
			out = append(out, u)
		}
	}
	return out
}

// Lookup resolves a unit by any of its names, symbols, or aliases.
func (c *Converter) Lookup(name string) (*Unit, error) {
	if u, ok := c.index[name]; ok {
		return u, nil
	}
	return nil, UnknownUnitError{Name: name}
}

// Knows reports whether name resolves to a registered unit.
func (c *Converter) Knows(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Compatible reports whether both unit names resolve and measure the same
// physical quantity.
func (c *Converter) Compatible(a, b string) bool {
	ua, ok := c.index[a]
	if !ok {
		return false
	}
	ub, ok := c.index[b]
	if !ok {
		return false
	}
	return ua.Quantity == ub.Quantity
}

// Convert converts a value between two units of the same physical quantity.
func (c *Converter) Convert(value float64, from, to *Unit) (float64, error) {
	if from.Quantity != to.Quantity {
		return 0, IncompatibleUnitsError{From: from, To: to}
	}
	base := (value + from.Difference) * from.Ratio
	return base/to.Ratio - to.Difference, nil
}

// ConvertByName converts a value between two units looked up by name.
func (c *Converter) ConvertByName(value float64, from, to string) (float64, error) {
	fu, err := c.Lookup(from)
	if err != nil {
		return 0, err
	}
	tu, err := c.Lookup(to)
	if err != nil {
		return 0, err
	}
	return c.Convert(value, fu, tu)
}

// BestUnit converts value from its unit into the most readable unit of the
// given system: the unit from the configured best list in which the value is
// smallest while still at least 1. When the value is below 1 in every
// candidate the smallest unit wins. system == SystemNone falls back to the
// source unit's system, then to the default system.
func (c *Converter) BestUnit(value float64, from *Unit, system System) (float64, *Unit, error) {
	if system == SystemNone {
		system = from.System
	}
	candidates := c.bestFor(from.Quantity, system)
	if len(candidates) == 0 {
		return value, from, nil
	}

	bestValue := value
	bestUnit := from
	found := false
	// candidates are sorted ascending by ratio, so the first hit scanning
	// from the largest unit down is the smallest value >= 1.
	for i := len(candidates) - 1; i >= 0; i-- {
		v, err := c.Convert(value, from, candidates[i])
		if err != nil {
			return 0, nil, err
		}
		if math.Abs(v) >= bestThreshold {
			return v, candidates[i], nil
		}
		bestValue, bestUnit = v, candidates[i]
		found = true
	}
	if !found {
		return value, from, nil
	}
	return bestValue, bestUnit, nil
}

// BestUnitFromBase picks the best display unit for a value already expressed
// in the base scale of a physical quantity. Reports false when no best list
// is configured for the quantity.
func (c *Converter) BestUnitFromBase(base float64, q PhysicalQuantity, system System) (float64, *Unit, bool) {
	if system == SystemNone {
		system = c.defaultSystem
	}
	candidates := c.bestFor(q, system)
	if len(candidates) == 0 {
		return 0, nil, false
	}
	for i := len(candidates) - 1; i >= 0; i-- {
		v := candidates[i].FromBase(base)
		if math.Abs(v) >= bestThreshold {
			return v, candidates[i], true
		}
	}
	smallest := candidates[0]
	return smallest.FromBase(base), smallest, true
}

// bestFor returns the best list for a quantity/system, trying the requested
// system, then the default system, then the unified (system-neutral) list.
func (c *Converter) bestFor(q PhysicalQuantity, system System) []*Unit {
	lists := c.best[q]
	if lists == nil {
		return nil
	}
	if units := lists[system]; len(units) > 0 {
		return units
	}
	if units := lists[c.defaultSystem]; len(units) > 0 {
		return units
	}
	return lists[SystemNone]
}

// ToSystem converts value from its unit into the best unit of the target
// system. Units without a system (time) stay put.
func (c *Converter) ToSystem(value float64, from *Unit, system System) (float64, *Unit, error) {
	if from.System == SystemNone || from.System == system {
		return c.BestUnit(value, from, from.System)
	}
	return c.BestUnit(value, from, system)
}

// Fractions is the resolved fraction display policy for one unit.
type Fractions struct {
	Enabled        bool
	Accuracy       float64 // max relative error accepted by the fraction search
	MaxDenominator int
	MaxWhole       int
}

// DefaultFractions is the policy applied where the table says nothing.
func DefaultFractions() Fractions {
	return Fractions{
		Enabled:        false,
		Accuracy:       0.05,
		MaxDenominator: 4,
		MaxWhole:       math.MaxInt32,
	}
}

// FractionsFor resolves the fraction policy for a unit by layering table
// entries from least to most specific: all, system, physical quantity, unit.
func (c *Converter) FractionsFor(u *Unit) Fractions {
	f := DefaultFractions()
	if u == nil {
		return f
	}
	apply(&f, c.fractions.All)
	switch u.System {
	case Metric:
		apply(&f, c.fractions.Metric)
	case Imperial:
		apply(&f, c.fractions.Imperial)
	}
	if c.fractions.Quantity != nil {
		apply(&f, c.fractions.Quantity[u.Quantity])
	}
	if c.fractions.Unit != nil {
		for _, key := range u.Keys() {
			if e, ok := c.fractions.Unit[key]; ok {
				apply(&f, e)
				break
			}
		}
	}
	return f
}

func apply(f *Fractions, e *FractionsEntry) {
	if e == nil {
		return
	}
	if e.Enabled != nil {
		f.Enabled = *e.Enabled
	}
	if e.Accuracy != nil {
		f.Accuracy = *e.Accuracy
	}
	if e.MaxDenominator != nil {
		f.MaxDenominator = *e.MaxDenominator
	}
	if e.MaxWhole != nil {
		f.MaxWhole = *e.MaxWhole
	}
}
