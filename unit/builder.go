package unit

import (
	"fmt"
	"sort"
)

// Builder assembles a Converter from one or more layered unit files.
type Builder struct {
	defaultSystem System
	units         []*Unit
	best          map[PhysicalQuantity]*BestUnits
	fractions     FractionsFile
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{best: make(map[PhysicalQuantity]*BestUnits)}
}

// AddFile layers a unit file onto the builder. Units accumulate; the default
// system, best lists, and fraction entries of later files override earlier
// ones where set.
func (b *Builder) AddFile(f *File) error {
	if f.DefaultSystem != SystemNone {
		b.defaultSystem = f.DefaultSystem
	}
	for quantity, group := range f.Quantities {
		if !knownQuantity(quantity) {
			return fmt.Errorf("units file: unknown physical quantity %q", quantity)
		}
		for system, defs := range group.Units {
			if system == "unspecified" {
				system = SystemNone
			}
			if system != SystemNone && system != Metric && system != Imperial {
				return fmt.Errorf("units file: unknown system %q in %s group", system, quantity)
			}
			for _, def := range defs {
				if err := b.addUnit(def, quantity, system, f.SIPrefixes); err != nil {
					return err
				}
			}
		}
		if !group.Best.Empty() {
			best := group.Best
			b.best[quantity] = &best
		}
	}
	if f.Fractions != nil {
		b.mergeFractions(f.Fractions)
	}
	return nil
}

func (b *Builder) addUnit(def UnitDef, quantity PhysicalQuantity, system System, prefixes map[string]SIPrefix) error {
	if len(def.Names) == 0 && len(def.Symbols) == 0 {
		return fmt.Errorf("units file: %s unit with no names or symbols", quantity)
	}
	if def.Ratio == 0 {
		return fmt.Errorf("units file: unit %q has a zero ratio", firstOf(def.Names, def.Symbols))
	}
	u := &Unit{
		Names:      def.Names,
		Symbols:    def.Symbols,
		Aliases:    def.Aliases,
		Ratio:      def.Ratio,
		Difference: def.Difference,
		Quantity:   quantity,
		System:     system,
	}
	b.units = append(b.units, u)
	if def.ExpandSI {
		// Deterministic order keeps Units() listings stable across builds.
		names := make([]string, 0, len(prefixes))
		for name := range prefixes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.units = append(b.units, expandSI(u, name, prefixes[name]))
		}
	}
	return nil
}

// expandSI derives a prefixed variant of u: names gain the prefix name,
// symbols the prefix symbol, and the ratio is scaled.
func expandSI(u *Unit, name string, p SIPrefix) *Unit {
	prefix := func(parts []string, pre string) []string {
		out := make([]string, len(parts))
		for i, s := range parts {
			out[i] = pre + s
		}
		return out
	}
	return &Unit{
		Names:      prefix(u.Names, name),
		Symbols:    prefix(u.Symbols, p.Symbol),
		Ratio:      u.Ratio * p.Ratio,
		Difference: u.Difference,
		Quantity:   u.Quantity,
		System:     u.System,
	}
}

func (b *Builder) mergeFractions(f *FractionsFile) {
	if f.All != nil {
		b.fractions.All = f.All
	}
	if f.Metric != nil {
		b.fractions.Metric = f.Metric
	}
	if f.Imperial != nil {
		b.fractions.Imperial = f.Imperial
	}
	if f.Quantity != nil {
		if b.fractions.Quantity == nil {
			b.fractions.Quantity = make(map[PhysicalQuantity]*FractionsEntry)
		}
		for k, v := range f.Quantity {
			b.fractions.Quantity[k] = v
		}
	}
	if f.Unit != nil {
		if b.fractions.Unit == nil {
			b.fractions.Unit = make(map[string]*FractionsEntry)
		}
		for k, v := range f.Unit {
			b.fractions.Unit[k] = v
		}
	}
}

// Build validates the accumulated table and returns an immutable Converter.
func (b *Builder) Build() (*Converter, error) {
	index := make(map[string]*Unit)
	for _, u := range b.units {
		for _, key := range u.Keys() {
			if key == "" {
				return nil, fmt.Errorf("unit %q has an empty key", u.Name())
			}
			if prev, ok := index[key]; ok && prev != u {
				return nil, fmt.Errorf("unit key %q defined twice (%s and %s)", key, prev.Name(), u.Name())
			}
			index[key] = u
		}
	}

	best := make(map[PhysicalQuantity]map[System][]*Unit)
	for quantity, lists := range b.best {
		best[quantity] = make(map[System][]*Unit)
		for _, system := range []System{SystemNone, Metric, Imperial} {
			names := lists.For(system)
			if len(names) == 0 {
				continue
			}
			units := make([]*Unit, 0, len(names))
			for _, name := range names {
				u, ok := index[name]
				if !ok {
					return nil, fmt.Errorf("best list for %s names unknown unit %q", quantity, name)
				}
				if u.Quantity != quantity {
					return nil, fmt.Errorf("best list for %s names %q which measures %s", quantity, name, u.Quantity)
				}
				units = append(units, u)
			}
			// Ascending ratio so selection can scan from the largest down.
			sort.SliceStable(units, func(i, j int) bool { return units[i].Ratio < units[j].Ratio })
			best[quantity][system] = units
		}
	}

	// Every quantity with registered units needs a best list so Fit and
	// BestUnit always have somewhere to land.
	seen := make(map[PhysicalQuantity]bool)
	for _, u := range b.units {
		seen[u.Quantity] = true
	}
	for quantity := range seen {
		if len(best[quantity]) == 0 {
			return nil, fmt.Errorf("no best-unit list configured for %s", quantity)
		}
	}

	defaultSystem := b.defaultSystem
	if defaultSystem == SystemNone {
		defaultSystem = Metric
	}

	units := make([]*Unit, len(b.units))
	copy(units, b.units)

	return &Converter{
		units:         units,
		index:         index,
		best:          best,
		fractions:     b.fractions,
		defaultSystem: defaultSystem,
	}, nil
}

func knownQuantity(q PhysicalQuantity) bool {
	for _, k := range PhysicalQuantities {
		if q == k {
			return true
		}
	}
	return false
}

func firstOf(a, b []string) string {
	if len(a) > 0 {
		return a[0]
	}
	if len(b) > 0 {
		return b[0]
	}
	return ""
}
