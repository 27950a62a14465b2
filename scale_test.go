package recipemark_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	recipemark "github.com/recipemark/recipemark"
	"github.com/recipemark/recipemark/quantity"
)

func parseRecipe(t *testing.T, src string) *recipemark.Recipe {
	t.Helper()
	r, _, err := recipemark.Default().Parse(src)
	require.NoError(t, err)
	require.NotNil(t, r)
	return r
}

// TestScale_Numbers tests plain factor scaling of numbers and ranges.
func TestScale_Numbers(t *testing.T) {
	r := parseRecipe(t, "Mix @flour{200%g} with @water{1-2%cup}.")
	scaled, rep := recipemark.Scale(r, 2)
	assert.True(t, rep.IsEmpty())

	assert.Equal(t, quantity.NewNumber(400), scaled.Ingredients[0].Quantity.Value)
	assert.Equal(t, quantity.NewRange(2, 4), scaled.Ingredients[1].Quantity.Value)

	// The input recipe is untouched.
	assert.Equal(t, quantity.NewNumber(200), r.Ingredients[0].Quantity.Value)
}

// TestScale_Identity tests scale by 1: an identical copy, no diagnostics.
func TestScale_Identity(t *testing.T) {
	r := parseRecipe(t, "Mix @flour{200%g} with @salt{a pinch} for ~{10%min}.")
	scaled, rep := recipemark.Scale(r, 1)
	assert.True(t, rep.IsEmpty())
	assert.Equal(t, r, scaled)
}

// TestScale_RoundTrip tests scale(scale(r, f), 1/f) == r within epsilon for
// numeric quantities.
func TestScale_RoundTrip(t *testing.T) {
	r := parseRecipe(t, "Mix @flour{200%g} with @water{1.5%cup}.")
	up, _ := recipemark.Scale(r, 3)
	down, _ := recipemark.Scale(up, 1.0/3)

	for i := range r.Ingredients {
		want := r.Ingredients[i].Quantity.Value
		got := down.Ingredients[i].Quantity.Value
		assert.True(t, want.EqualApprox(got, 1e-6), "ingredient %d: want %v, got %v", i, want, got)
	}
}

// TestScale_TextWarns tests that text values stay unchanged with a warning.
func TestScale_TextWarns(t *testing.T) {
	r := parseRecipe(t, "Season with @salt{a pinch}.")
	scaled, rep := recipemark.Scale(r, 2)
	assert.True(t, rep.HasWarnings())
	assert.Equal(t, quantity.NewText("a pinch"), scaled.Ingredients[0].Quantity.Value)
}

// TestScale_LockedSkipped tests that "=" locked quantities never scale.
func TestScale_LockedSkipped(t *testing.T) {
	r := parseRecipe(t, "Add @salt{=1%tsp} and @flour{100%g}.")
	scaled, rep := recipemark.Scale(r, 4)
	assert.True(t, rep.IsEmpty())
	assert.Equal(t, quantity.NewNumber(1), scaled.Ingredients[0].Quantity.Value)
	assert.Equal(t, quantity.NewNumber(400), scaled.Ingredients[1].Quantity.Value)
}

// TestScale_Timers tests that timer quantities scale with everything else.
func TestScale_Timers(t *testing.T) {
	r := parseRecipe(t, "Bake ~oven{30%min}.")
	scaled, rep := recipemark.Scale(r, 2)
	assert.True(t, rep.IsEmpty())
	assert.Equal(t, quantity.NewNumber(60), scaled.Timers[0].Quantity.Value)
}

// TestScaleToServings tests serving-based scaling from metadata.
func TestScaleToServings(t *testing.T) {
	r := parseRecipe(t, ">> servings: 2\n\nMix @flour{100%g}.")
	scaled, rep := recipemark.ScaleToServings(r, 6)
	assert.True(t, rep.IsEmpty())
	assert.Equal(t, quantity.NewNumber(300), scaled.Ingredients[0].Quantity.Value)
}

// TestScaleToServings_ByServings tests that per-serving values resolve to
// the figure at the target's position instead of multiplying.
func TestScaleToServings_ByServings(t *testing.T) {
	src := ">> servings: 2|4\n\nMix @flour{100|250%g} with @water{50%ml}."

	r := parseRecipe(t, src)
	scaled, rep := recipemark.ScaleToServings(r, 4)
	assert.True(t, rep.IsEmpty())
	assert.Equal(t, quantity.NewNumber(250), scaled.Ingredients[0].Quantity.Value)
	assert.Equal(t, quantity.NewNumber(100), scaled.Ingredients[1].Quantity.Value)

	// The base figure resolves too, leaving plain values alone.
	scaled, rep = recipemark.ScaleToServings(r, 2)
	assert.True(t, rep.IsEmpty())
	assert.Equal(t, quantity.NewNumber(100), scaled.Ingredients[0].Quantity.Value)
	assert.Equal(t, quantity.NewNumber(50), scaled.Ingredients[1].Quantity.Value)

	// A target outside the declared figures warns and keeps the alternatives.
	scaled, rep = recipemark.ScaleToServings(r, 6)
	assert.True(t, rep.HasWarnings())
	assert.Equal(t, quantity.KindByServings, scaled.Ingredients[0].Quantity.Value.Kind())
	assert.Equal(t, quantity.NewNumber(150), scaled.Ingredients[1].Quantity.Value)
}

// TestScale_ByServingsWarns tests that factor scaling leaves per-serving
// values unchanged with a warning.
func TestScale_ByServingsWarns(t *testing.T) {
	r := parseRecipe(t, ">> servings: 2|4\n\nMix @flour{100|250%g}.")
	scaled, rep := recipemark.Scale(r, 2)
	assert.True(t, rep.HasWarnings())
	assert.Equal(t,
		quantity.NewByServings([]quantity.Value{quantity.NewNumber(100), quantity.NewNumber(250)}),
		scaled.Ingredients[0].Quantity.Value)
}

// TestScaleToServings_NoServings tests the warning fallback without
// servings metadata.
func TestScaleToServings_NoServings(t *testing.T) {
	r := parseRecipe(t, "Mix @flour{100%g}.")
	scaled, rep := recipemark.ScaleToServings(r, 6)
	assert.True(t, rep.HasWarnings())
	assert.Equal(t, quantity.NewNumber(100), scaled.Ingredients[0].Quantity.Value)
}
