package quantity

import (
	"fmt"
	"math"

	"github.com/recipemark/recipemark/unit"
)

// fractionDenominators are the denominators the search considers, in
// preference order. Cooking fractions are halves through sixty-fourths;
// anything else reads worse than a decimal.
var fractionDenominators = []int{2, 3, 4, 5, 8, 10, 16, 32, 64}

// snapEpsilon corrects float noise accumulated by repeated scaling: a value
// within this distance of a three-decimal number is treated as that number.
const snapEpsilon = 1e-6

// Fraction is a non-negative mixed number.
type Fraction struct {
	Whole int
	Num   int
	Den   int
}

// Value returns the fraction as a float.
func (f Fraction) Value() float64 {
	if f.Den == 0 {
		return float64(f.Whole)
	}
	return float64(f.Whole) + float64(f.Num)/float64(f.Den)
}

// String renders "2", "1/2", or "2 1/2".
func (f Fraction) String() string {
	switch {
	case f.Num == 0:
		return fmt.Sprintf("%d", f.Whole)
	case f.Whole == 0:
		return fmt.Sprintf("%d/%d", f.Num, f.Den)
	default:
		return fmt.Sprintf("%d %d/%d", f.Whole, f.Num, f.Den)
	}
}

// Snap rounds away float noise: values within snapEpsilon of a three-decimal
// number become that number.
func Snap(v float64) float64 {
	rounded := math.Round(v*1000) / 1000
	if math.Abs(v-rounded) < snapEpsilon {
		return rounded
	}
	return v
}

// NewFraction searches for a mixed-number rendering of v with denominator at
// most maxDen and whole part at most maxWhole, accepting at most accuracy
// absolute error on the fractional part. Reports false when no acceptable
// fraction exists (including for negative values).
func NewFraction(v, accuracy float64, maxDen, maxWhole int) (Fraction, bool) {
	if v < 0 || maxDen < 1 {
		return Fraction{}, false
	}
	v = Snap(v)

	whole := int(math.Floor(v))
	frac := v - float64(whole)
	if whole > maxWhole {
		return Fraction{}, false
	}

	best := Fraction{}
	bestErr := math.Inf(1)
	for _, den := range fractionDenominators {
		if den > maxDen {
			break
		}
		num := int(math.Round(frac * float64(den)))
		err := math.Abs(frac - float64(num)/float64(den))
		if err < bestErr {
			best = Fraction{Whole: whole, Num: num, Den: den}
			bestErr = err
		}
	}
	if bestErr > accuracy {
		return Fraction{}, false
	}
	if best.Num == best.Den {
		best = Fraction{Whole: best.Whole + 1, Num: 0, Den: best.Den}
		if best.Whole > maxWhole {
			return Fraction{}, false
		}
	}
	if best.Num != 0 {
		g := gcd(best.Num, best.Den)
		best.Num /= g
		best.Den /= g
	}
	return best, true
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// DisplayValue renders a value under a fraction policy: when fractions are
// enabled and a fraction within tolerance exists, numbers (and range bounds)
// render as mixed numbers, otherwise as rounded decimals.
func DisplayValue(v Value, policy unit.Fractions) string {
	if !policy.Enabled || !v.IsNumeric() {
		return v.Format()
	}
	display := func(n float64) string {
		if f, ok := NewFraction(n, policy.Accuracy, policy.MaxDenominator, policy.MaxWhole); ok {
			return f.String()
		}
		return FormatNumber(n)
	}
	if v.Kind() == KindRange {
		start, end := v.Range()
		return display(start) + "-" + display(end)
	}
	return display(v.Number())
}
