package quantity

import (
	"errors"
	"fmt"

	"github.com/recipemark/recipemark/unit"
)

// Quantity is a value plus an optional unit. Locked quantities were written
// with a scaling lock and are skipped by the scaling engine.
type Quantity struct {
	Value  Value  `json:"value"`
	Unit   string `json:"unit,omitempty"`
	Locked bool   `json:"locked,omitempty"`
}

// New returns a quantity with the given value and unit text.
func New(v Value, unitText string) Quantity {
	return Quantity{Value: v, Unit: unitText}
}

// HasUnit reports whether a unit was written.
func (q Quantity) HasUnit() bool { return q.Unit != "" }

// UnitInfo resolves the quantity's unit against the converter.
func (q Quantity) UnitInfo(conv *unit.Converter) (*unit.Unit, error) {
	if q.Unit == "" {
		return nil, unit.UnknownUnitError{Name: ""}
	}
	return conv.Lookup(q.Unit)
}

// Scale multiplies the value by factor unless the quantity is locked.
func (q Quantity) Scale(factor float64) Quantity {
	if q.Locked {
		return q
	}
	q.Value = q.Value.Scale(factor)
	return q
}

// ErrIncompatibleQuantities is returned by TryAdd when two quantities can
// never be combined (clashing or unknown units, text values).
var ErrIncompatibleQuantities = errors.New("quantities are not compatible")

// Compatible reports whether o could be added to q: identical unit text,
// or units the converter can translate between.
func (q Quantity) Compatible(o Quantity, conv *unit.Converter) bool {
	if q.Unit == o.Unit {
		return true
	}
	return conv.Compatible(q.Unit, o.Unit)
}

// TryAdd returns q + o expressed in q's unit. Units that differ are
// converted when the converter knows both; otherwise the add fails with
// ErrIncompatibleQuantities.
func (q Quantity) TryAdd(o Quantity, conv *unit.Converter) (Quantity, error) {
	if q.Unit != o.Unit {
		from, err := o.UnitInfo(conv)
		if err != nil {
			return Quantity{}, ErrIncompatibleQuantities
		}
		to, err := q.UnitInfo(conv)
		if err != nil {
			return Quantity{}, ErrIncompatibleQuantities
		}
		converted, err := convertValue(o.Value, from, to, conv)
		if err != nil {
			return Quantity{}, ErrIncompatibleQuantities
		}
		o = Quantity{Value: converted, Unit: q.Unit}
	}
	sum, err := q.Value.TryAdd(o.Value)
	if err != nil {
		return Quantity{}, fmt.Errorf("%w: %w", ErrIncompatibleQuantities, err)
	}
	return Quantity{Value: sum, Unit: q.Unit, Locked: q.Locked && o.Locked}, nil
}

// Fit rewrites the quantity into the most readable unit of its system. Text
// values, unit-less quantities, and unknown units pass through unchanged.
func (q Quantity) Fit(conv *unit.Converter) Quantity {
	if !q.Value.IsNumeric() {
		return q
	}
	u, err := q.UnitInfo(conv)
	if err != nil {
		return q
	}
	switch q.Value.Kind() {
	case KindNumber:
		v, best, err := conv.BestUnit(q.Value.Number(), u, unit.SystemNone)
		if err != nil {
			return q
		}
		return Quantity{Value: NewNumber(v), Unit: best.Symbol(), Locked: q.Locked}
	case KindRange:
		start, end := q.Value.Range()
		s, best, err := conv.BestUnit(start, u, unit.SystemNone)
		if err != nil {
			return q
		}
		e, err := conv.Convert(end, u, best)
		if err != nil {
			return q
		}
		return Quantity{Value: NewRange(s, e), Unit: best.Symbol(), Locked: q.Locked}
	}
	return q
}

// Display renders "value unit" using the converter's fraction policy for the
// unit. Unknown units render under the default policy.
func (q Quantity) Display(conv *unit.Converter) string {
	policy := unit.DefaultFractions()
	if u, err := q.UnitInfo(conv); err == nil {
		policy = conv.FractionsFor(u)
	}
	text := DisplayValue(q.Value, policy)
	if q.Unit == "" {
		return text
	}
	if text == "" {
		return q.Unit
	}
	return text + " " + q.Unit
}

// convertValue converts the numeric parts of a value between units.
func convertValue(v Value, from, to *unit.Unit, conv *unit.Converter) (Value, error) {
	switch v.Kind() {
	case KindNumber:
		n, err := conv.Convert(v.Number(), from, to)
		if err != nil {
			return Value{}, err
		}
		return NewNumber(n), nil
	case KindRange:
		start, end := v.Range()
		s, err := conv.Convert(start, from, to)
		if err != nil {
			return Value{}, err
		}
		e, err := conv.Convert(end, from, to)
		if err != nil {
			return Value{}, err
		}
		return NewRange(s, e), nil
	default:
		return Value{}, ErrTextValue
	}
}
