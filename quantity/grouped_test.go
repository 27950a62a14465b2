package quantity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipemark/recipemark/quantity"
)

// TestGrouped_SameUnit tests that quantities in the same unit sum.
func TestGrouped_SameUnit(t *testing.T) {
	c := conv(t)

	var g quantity.GroupedQuantity
	g.Add(quantity.New(quantity.NewNumber(200), "g"), c)
	g.Add(quantity.New(quantity.NewNumber(100), "g"), c)

	totals := g.Total(c)
	require.Len(t, totals, 1)
	assert.Equal(t, "g", totals[0].Unit)
	assert.InDelta(t, 300, totals[0].Value.Number(), 1e-9)
}

// TestGrouped_ConvertibleUnits tests merging across convertible units with
// best-unit display.
func TestGrouped_ConvertibleUnits(t *testing.T) {
	c := conv(t)

	var g quantity.GroupedQuantity
	g.Add(quantity.New(quantity.NewNumber(750), "g"), c)
	g.Add(quantity.New(quantity.NewNumber(0.75), "kg"), c)

	totals := g.Total(c)
	require.Len(t, totals, 1)
	assert.Equal(t, "kg", totals[0].Unit)
	assert.InDelta(t, 1.5, totals[0].Value.Number(), 1e-9)
}

// TestGrouped_NoUnit tests the bare-number bucket, matching the behavior of
// "@flour{1} @&flour{2}" grouping to 3 with no unit.
func TestGrouped_NoUnit(t *testing.T) {
	c := conv(t)

	var g quantity.GroupedQuantity
	g.Add(quantity.New(quantity.NewNumber(1), ""), c)
	g.Add(quantity.New(quantity.NewNumber(2), ""), c)

	totals := g.Total(c)
	require.Len(t, totals, 1)
	assert.Equal(t, "", totals[0].Unit)
	assert.InDelta(t, 3, totals[0].Value.Number(), 1e-9)
}

// TestGrouped_DistinctBucketsKept tests that incompatible quantities stay
// side by side instead of being dropped.
func TestGrouped_DistinctBucketsKept(t *testing.T) {
	c := conv(t)

	var g quantity.GroupedQuantity
	g.Add(quantity.New(quantity.NewNumber(200), "g"), c)
	g.Add(quantity.New(quantity.NewNumber(1), "cup"), c)
	g.Add(quantity.New(quantity.NewNumber(2), "handfuls"), c)
	g.Add(quantity.New(quantity.NewText("to taste"), ""), c)
	g.Add(quantity.New(quantity.NewText("to taste"), ""), c)

	totals := g.Total(c)
	require.Len(t, totals, 4) // volume, mass, handfuls, one deduplicated text
	assert.Equal(t, "ml", totals[0].Unit)
	assert.InDelta(t, 236.588, totals[0].Value.Number(), 1e-3)
	assert.Equal(t, "g", totals[1].Unit)
	assert.Equal(t, "handfuls", totals[2].Unit)
	assert.Equal(t, quantity.NewText("to taste"), totals[3].Value)
}

// TestGrouped_Commutative tests that accumulation order does not change the
// totals (grouping must be commutative and associative).
func TestGrouped_Commutative(t *testing.T) {
	c := conv(t)

	quantities := []quantity.Quantity{
		quantity.New(quantity.NewNumber(200), "g"),
		quantity.New(quantity.NewNumber(0.5), "kg"),
		quantity.New(quantity.NewNumber(3), "oz"),
		quantity.New(quantity.NewRange(1, 2), "cup"),
	}

	var forward, backward quantity.GroupedQuantity
	for _, q := range quantities {
		forward.Add(q, c)
	}
	for i := len(quantities) - 1; i >= 0; i-- {
		backward.Add(quantities[i], c)
	}

	ft, bt := forward.Total(c), backward.Total(c)
	require.Equal(t, len(ft), len(bt))
	for i := range ft {
		assert.Equal(t, ft[i].Unit, bt[i].Unit)
		assert.True(t, ft[i].Value.EqualApprox(bt[i].Value, 1e-9),
			"bucket %d: %v vs %v", i, ft[i].Value, bt[i].Value)
	}
}

// TestGrouped_Merge tests that merging two groups equals adding everything
// to one group.
func TestGrouped_Merge(t *testing.T) {
	c := conv(t)

	var a, b, all quantity.GroupedQuantity
	a.Add(quantity.New(quantity.NewNumber(200), "g"), c)
	b.Add(quantity.New(quantity.NewNumber(100), "g"), c)
	b.Add(quantity.New(quantity.NewText("to taste"), ""), c)

	all.Add(quantity.New(quantity.NewNumber(200), "g"), c)
	all.Add(quantity.New(quantity.NewNumber(100), "g"), c)
	all.Add(quantity.New(quantity.NewText("to taste"), ""), c)

	a.Merge(&b)
	assert.Equal(t, all.Display(c), a.Display(c))
}

// TestGrouped_EmptyMarker tests that empty values register presence without
// producing a total line.
func TestGrouped_EmptyMarker(t *testing.T) {
	c := conv(t)

	var g quantity.GroupedQuantity
	assert.True(t, g.IsEmpty())
	g.Add(quantity.New(quantity.Empty(), ""), c)
	assert.False(t, g.IsEmpty())
	assert.Empty(t, g.Total(c))
}

// TestGrouped_Display tests the joined rendering.
func TestGrouped_Display(t *testing.T) {
	c := conv(t)

	var g quantity.GroupedQuantity
	g.Add(quantity.New(quantity.NewNumber(1500), "g"), c)
	g.Add(quantity.New(quantity.NewText("to taste"), ""), c)
	assert.Equal(t, "1.5 kg, to taste", g.Display(c))
}
