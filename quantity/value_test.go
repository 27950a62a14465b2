package quantity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipemark/recipemark/quantity"
)

// TestParseValue tests every value form the grammar accepts.
func TestParseValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want quantity.Value
	}{
		{"integer", "200", quantity.NewNumber(200)},
		{"decimal", "1.5", quantity.NewNumber(1.5)},
		{"fraction", "1/2", quantity.NewNumber(0.5)},
		{"fraction with spaces", "1 / 2", quantity.NewNumber(0.5)},
		{"mixed number", "2 1/2", quantity.NewNumber(2.5)},
		{"range", "2-3", quantity.NewRange(2, 3)},
		{"decimal range", "1.5-2.5", quantity.NewRange(1.5, 2.5)},
		{"degenerate range collapses", "2-2", quantity.NewNumber(2)},
		{"text", "a pinch", quantity.NewText("a pinch")},
		{"empty", "   ", quantity.Empty()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := quantity.ParseValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

// TestParseValue_DivisionByZero tests that a zero denominator reports the
// error and recovers with the value 1.
func TestParseValue_DivisionByZero(t *testing.T) {
	for _, in := range []string{"1/0", "2 3/0"} {
		v, err := quantity.ParseValue(in)
		require.ErrorIs(t, err, quantity.ErrDivisionByZero, in)
		assert.Equal(t, quantity.NewNumber(1), v, in)
	}
}

// TestValue_Scale tests scaling behavior per kind and the factor-1 law.
func TestValue_Scale(t *testing.T) {
	assert.Equal(t, quantity.NewNumber(400), quantity.NewNumber(200).Scale(2))
	assert.Equal(t, quantity.NewRange(4, 6), quantity.NewRange(2, 3).Scale(2))
	assert.Equal(t, quantity.NewText("a pinch"), quantity.NewText("a pinch").Scale(2))
	assert.Equal(t, quantity.Empty(), quantity.Empty().Scale(2))

	for _, v := range []quantity.Value{
		quantity.NewNumber(2.5), quantity.NewRange(1, 2),
		quantity.NewText("x"), quantity.Empty(),
	} {
		assert.Equal(t, v, v.Scale(1.0), "scale by 1 must be the identity")
	}
}

// TestValue_ScaleRoundTrip tests scale(scale(v, f), 1/f) == v within 1e-6.
func TestValue_ScaleRoundTrip(t *testing.T) {
	factors := []float64{0.5, 2, 3, 7.5, 1.0 / 3.0}
	values := []quantity.Value{
		quantity.NewNumber(200), quantity.NewNumber(0.9), quantity.NewRange(2, 3),
	}
	for _, f := range factors {
		for _, v := range values {
			back := v.Scale(f).Scale(1 / f)
			assert.True(t, v.EqualApprox(back, 1e-6), "v=%v f=%v back=%v", v, f, back)
		}
	}
}

// TestValue_TryAdd tests addition across value kinds.
func TestValue_TryAdd(t *testing.T) {
	sum, err := quantity.NewNumber(1).TryAdd(quantity.NewNumber(2))
	require.NoError(t, err)
	assert.Equal(t, quantity.NewNumber(3), sum)

	sum, err = quantity.NewNumber(1).TryAdd(quantity.NewRange(2, 3))
	require.NoError(t, err)
	assert.Equal(t, quantity.NewRange(3, 4), sum)

	sum, err = quantity.NewRange(1, 2).TryAdd(quantity.NewRange(2, 3))
	require.NoError(t, err)
	assert.Equal(t, quantity.NewRange(3, 5), sum)

	_, err = quantity.NewNumber(1).TryAdd(quantity.NewText("some"))
	assert.ErrorIs(t, err, quantity.ErrTextValue)

	_, err = quantity.Empty().TryAdd(quantity.NewNumber(1))
	assert.ErrorIs(t, err, quantity.ErrEmptyValue)

	byServings := quantity.NewByServings([]quantity.Value{quantity.NewNumber(1), quantity.NewNumber(2)})
	_, err = quantity.NewNumber(1).TryAdd(byServings)
	assert.ErrorIs(t, err, quantity.ErrByServingsValue)
}

// TestValue_FormatParseRoundTrip tests that formatting then re-parsing a
// numeric value yields an equal value within epsilon.
func TestValue_FormatParseRoundTrip(t *testing.T) {
	values := []quantity.Value{
		quantity.NewNumber(200),
		quantity.NewNumber(2.5),
		quantity.NewNumber(0.125),
		quantity.NewRange(2, 3),
		quantity.NewRange(1.5, 2.25),
		quantity.NewText("a pinch"),
	}
	for _, v := range values {
		parsed, err := quantity.ParseValue(v.Format())
		require.NoError(t, err, v.Format())
		assert.True(t, v.EqualApprox(parsed, 1e-9), "format %q reparsed to %v", v.Format(), parsed)
	}
}

// TestValue_Format tests display formatting, including the three-decimal
// rounding of float noise.
func TestValue_Format(t *testing.T) {
	assert.Equal(t, "200", quantity.NewNumber(200).Format())
	assert.Equal(t, "2.5", quantity.NewNumber(2.5).Format())
	assert.Equal(t, "0.9", quantity.NewNumber(0.8999999999).Format())
	assert.Equal(t, "2-3", quantity.NewRange(2, 3).Format())
	assert.Equal(t, "a pinch", quantity.NewText("a pinch").Format())
	assert.Equal(t, "", quantity.Empty().Format())
	byServings := quantity.NewByServings([]quantity.Value{quantity.NewNumber(100), quantity.NewNumber(250)})
	assert.Equal(t, "100|250", byServings.Format())
}

// TestValue_ByServings tests the per-serving form: the single-part collapse,
// equality, and the frozen behavior under factor scaling.
func TestValue_ByServings(t *testing.T) {
	parts := []quantity.Value{quantity.NewNumber(100), quantity.NewNumber(250)}
	v := quantity.NewByServings(parts)
	assert.Equal(t, quantity.KindByServings, v.Kind())
	assert.Equal(t, parts, v.ByServings())
	assert.False(t, v.IsNumeric())

	assert.Equal(t, quantity.NewNumber(100), quantity.NewByServings(parts[:1]))

	same := quantity.NewByServings([]quantity.Value{quantity.NewNumber(100), quantity.NewNumber(250)})
	assert.True(t, v.Equal(same))
	assert.True(t, v.EqualApprox(same, 0))
	assert.False(t, v.Equal(quantity.NewByServings(parts[:1])))
	assert.False(t, v.Equal(quantity.NewNumber(100)))

	assert.Equal(t, v, v.Scale(3))
}

// TestValue_MarshalJSON tests the tagged JSON encoding.
func TestValue_MarshalJSON(t *testing.T) {
	tests := []struct {
		v    quantity.Value
		want string
	}{
		{quantity.NewNumber(2), `{"type":"number","value":2}`},
		{quantity.NewRange(2, 3), `{"type":"range","start":2,"end":3}`},
		{quantity.NewText("a pinch"), `{"type":"text","value":"a pinch"}`},
		{quantity.NewByServings([]quantity.Value{quantity.NewNumber(1), quantity.NewNumber(2)}),
			`{"type":"by_servings","values":[{"type":"number","value":1},{"type":"number","value":2}]}`},
		{quantity.Empty(), `{"type":"empty"}`},
	}
	for _, tt := range tests {
		data, err := tt.v.MarshalJSON()
		require.NoError(t, err)
		assert.JSONEq(t, tt.want, string(data))
	}
}
