package quantity

import (
	"sort"
	"strings"

	"github.com/recipemark/recipemark/unit"
)

// GroupedQuantity accumulates every quantity seen for one ingredient across
// recipes. Quantities with convertible units merge per physical quantity in
// base scale (so accumulation order never changes the total); unknown units
// merge by exact unit text; text values are kept as a set; an empty marker
// records unit-less bare occurrences. Distinct buckets are kept side by
// side, never silently dropped.
//
// The zero value is ready to use.
type GroupedQuantity struct {
	known   map[unit.PhysicalQuantity]Value // base-scale totals
	unknown map[string]Value                // keyed by unit text
	noUnit  Value
	hasBare bool // at least one unit-less numeric value seen
	texts   []string
	empty   bool
}

// Add folds one quantity into the group.
func (g *GroupedQuantity) Add(q Quantity, conv *unit.Converter) {
	switch q.Value.Kind() {
	case KindEmpty:
		g.empty = true
		return
	case KindText:
		g.addText(q.Value.Text())
		return
	case KindByServings:
		s := q.Value.Format()
		if q.Unit != "" {
			s += " " + q.Unit
		}
		g.addText(s)
		return
	}

	if q.Unit == "" {
		g.addBare(q.Value)
		return
	}
	u, err := conv.Lookup(q.Unit)
	if err != nil {
		g.addUnknown(q.Unit, q.Value)
		return
	}
	g.addKnown(u, q.Value)
}

func (g *GroupedQuantity) addKnown(u *unit.Unit, v Value) {
	base := mapNumeric(v, u.ToBase)
	if g.known == nil {
		g.known = make(map[unit.PhysicalQuantity]Value)
	}
	if existing, ok := g.known[u.Quantity]; ok {
		if sum, err := existing.TryAdd(base); err == nil {
			g.known[u.Quantity] = sum
			return
		}
	}
	g.known[u.Quantity] = base
}

func (g *GroupedQuantity) addUnknown(unitText string, v Value) {
	if g.unknown == nil {
		g.unknown = make(map[string]Value)
	}
	if existing, ok := g.unknown[unitText]; ok {
		if sum, err := existing.TryAdd(v); err == nil {
			g.unknown[unitText] = sum
			return
		}
	}
	g.unknown[unitText] = v
}

func (g *GroupedQuantity) addBare(v Value) {
	if g.hasBare {
		if sum, err := g.noUnit.TryAdd(v); err == nil {
			g.noUnit = sum
			return
		}
	}
	g.noUnit = v
	g.hasBare = true
}

func (g *GroupedQuantity) addText(s string) {
	for _, t := range g.texts {
		if t == s {
			return
		}
	}
	g.texts = append(g.texts, s)
}

// Merge folds all of other's buckets into g. Merging is commutative and
// associative up to float rounding.
func (g *GroupedQuantity) Merge(other *GroupedQuantity) {
	if other == nil {
		return
	}
	for q, v := range other.known {
		if g.known == nil {
			g.known = make(map[unit.PhysicalQuantity]Value)
		}
		if existing, ok := g.known[q]; ok {
			if sum, err := existing.TryAdd(v); err == nil {
				g.known[q] = sum
				continue
			}
		}
		g.known[q] = v
	}
	for u, v := range other.unknown {
		g.addUnknown(u, v)
	}
	if other.hasBare {
		g.addBare(other.noUnit)
	}
	for _, t := range other.texts {
		g.addText(t)
	}
	g.empty = g.empty || other.empty
}

// IsEmpty reports whether nothing at all was added, not even a bare marker.
func (g *GroupedQuantity) IsEmpty() bool {
	return len(g.known) == 0 && len(g.unknown) == 0 && !g.hasBare &&
		len(g.texts) == 0 && !g.empty
}

// Total renders the group as a deterministic list of quantities: known
// totals refit to their best display unit, then unknown units sorted by unit
// text, the bare total, and finally text values in first-seen order.
func (g *GroupedQuantity) Total(conv *unit.Converter) []Quantity {
	var out []Quantity

	for _, q := range unit.PhysicalQuantities {
		v, ok := g.known[q]
		if !ok {
			continue
		}
		out = append(out, fromBase(v, q, conv))
	}

	unknownUnits := make([]string, 0, len(g.unknown))
	for u := range g.unknown {
		unknownUnits = append(unknownUnits, u)
	}
	sort.Strings(unknownUnits)
	for _, u := range unknownUnits {
		out = append(out, Quantity{Value: g.unknown[u], Unit: u})
	}

	if g.hasBare {
		out = append(out, Quantity{Value: g.noUnit})
	}
	for _, t := range g.texts {
		out = append(out, Quantity{Value: NewText(t)})
	}
	return out
}

// Display renders the group's totals joined with ", ".
func (g *GroupedQuantity) Display(conv *unit.Converter) string {
	totals := g.Total(conv)
	parts := make([]string, len(totals))
	for i, q := range totals {
		parts[i] = q.Display(conv)
	}
	return strings.Join(parts, ", ")
}

// fromBase turns a base-scale total back into a display quantity via
// best-unit selection.
func fromBase(v Value, q unit.PhysicalQuantity, conv *unit.Converter) Quantity {
	switch v.Kind() {
	case KindNumber:
		if n, best, ok := conv.BestUnitFromBase(v.Number(), q, unit.SystemNone); ok {
			return Quantity{Value: NewNumber(n), Unit: best.Symbol()}
		}
	case KindRange:
		start, end := v.Range()
		if s, best, ok := conv.BestUnitFromBase(start, q, unit.SystemNone); ok {
			return Quantity{Value: NewRange(s, best.FromBase(end)), Unit: best.Symbol()}
		}
	}
	return Quantity{Value: v}
}

// mapNumeric applies f to the numeric parts of v.
func mapNumeric(v Value, f func(float64) float64) Value {
	switch v.Kind() {
	case KindNumber:
		return NewNumber(f(v.Number()))
	case KindRange:
		start, end := v.Range()
		return NewRange(f(start), f(end))
	default:
		return v
	}
}
