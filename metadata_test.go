package recipemark_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	recipemark "github.com/recipemark/recipemark"
)

func parseMeta(t *testing.T, src string) (*recipemark.Metadata, bool) {
	t.Helper()
	meta, rep, err := recipemark.Default().ParseMetadata(src)
	require.NoError(t, err)
	return meta, rep.HasWarnings() || rep.HasErrors()
}

// TestMetadata_Canonical tests interpretation of the canonical keys.
func TestMetadata_Canonical(t *testing.T) {
	src := `---
title: Sourdough
description: A weekend project.
tags:
  - bread
  - slow
course: side
cuisine: french
diet: vegan
difficulty: hard
servings: 4
locale: es_ES
---
`
	meta, diags := parseMeta(t, src)
	assert.False(t, diags)
	assert.Equal(t, "Sourdough", meta.Title)
	assert.Equal(t, "A weekend project.", meta.Description)
	assert.Equal(t, []string{"bread", "slow"}, meta.Tags)
	assert.Equal(t, "side", meta.Course)
	assert.Equal(t, "french", meta.Cuisine)
	assert.Equal(t, "vegan", meta.Diet)
	assert.Equal(t, "hard", meta.Difficulty)
	assert.Equal(t, []uint32{4}, meta.Servings)
	require.NotNil(t, meta.Locale)
	assert.Equal(t, language.MustParse("es-ES"), meta.Locale.Tag)
}

// TestMetadata_SourceForms tests the name/URL attribution forms.
func TestMetadata_SourceForms(t *testing.T) {
	tests := []struct {
		value string
		want  recipemark.NameAndURL
	}{
		{"Jane Doe", recipemark.NameAndURL{Name: "Jane Doe"}},
		{"https://example.com/bread", recipemark.NameAndURL{URL: "https://example.com/bread"}},
		{"Jane Doe <https://example.com/bread>",
			recipemark.NameAndURL{Name: "Jane Doe", URL: "https://example.com/bread"}},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			meta, diags := parseMeta(t, ">> source: "+tt.value+"\n")
			assert.False(t, diags)
			require.NotNil(t, meta.Source)
			assert.Equal(t, tt.want, *meta.Source)
		})
	}
}

// TestMetadata_Time tests minute parsing and composed prep/cook times.
func TestMetadata_Time(t *testing.T) {
	meta, diags := parseMeta(t, ">> time: 90\n")
	assert.False(t, diags)
	require.NotNil(t, meta.Time)
	assert.Equal(t, uint32(90), meta.Time.Total())

	meta, diags = parseMeta(t, ">> time: 1h 30min\n")
	assert.False(t, diags)
	require.NotNil(t, meta.Time)
	assert.Equal(t, uint32(90), meta.Time.Total())

	meta, diags = parseMeta(t, ">> prep time: 20 min\n>> cook time: 1h\n")
	assert.False(t, diags)
	require.NotNil(t, meta.Time)
	assert.True(t, meta.Time.Composed)
	assert.Equal(t, uint32(20), meta.Time.Prep)
	assert.Equal(t, uint32(60), meta.Time.Cook)
	assert.Equal(t, uint32(80), meta.Time.Total())
}

// TestMetadata_TimeOverride tests the warning when "time" and prep/cook
// entries collide.
func TestMetadata_TimeOverride(t *testing.T) {
	meta, rep, err := recipemark.Default().ParseMetadata(">> prep time: 20 min\n>> time: 45\n")
	require.NoError(t, err)
	assert.True(t, rep.HasWarnings())
	require.NotNil(t, meta.Time)
	assert.Equal(t, uint32(45), meta.Time.Total())
}

// TestMetadata_Servings tests the multi-target form and the duplicate
// declaration error.
func TestMetadata_Servings(t *testing.T) {
	meta, diags := parseMeta(t, ">> servings: 2|4|8\n")
	assert.False(t, diags)
	assert.Equal(t, []uint32{2, 4, 8}, meta.Servings)

	_, rep, err := recipemark.Default().ParseMetadata(">> servings: 2\n>> servings: 4\n")
	require.NoError(t, err)
	assert.True(t, rep.HasErrors())
}

// TestMetadata_MalformedCanonical tests that a bad canonical value warns,
// leaves the field unset, and keeps the raw entry.
func TestMetadata_MalformedCanonical(t *testing.T) {
	meta, rep, err := recipemark.Default().ParseMetadata(">> servings: a few\n")
	require.NoError(t, err)
	assert.True(t, rep.HasWarnings())
	assert.Empty(t, meta.Servings)

	raw, ok := meta.Get("servings")
	assert.True(t, ok)
	assert.Equal(t, "a few", raw)
}

// TestMetadata_CustomKeys tests that unknown keys land in Custom.
func TestMetadata_CustomKeys(t *testing.T) {
	meta, diags := parseMeta(t, ">> oven: fan assisted\n>> title: Pie\n")
	assert.False(t, diags)

	custom := meta.Custom()
	require.Len(t, custom, 1)
	assert.Equal(t, "oven", custom[0].Key)
	assert.Equal(t, "fan assisted", custom[0].Value)
	assert.Len(t, meta.All(), 2)
}

// TestMetadata_FrontmatterAndLines tests that frontmatter and ">>" lines
// combine in document order.
func TestMetadata_FrontmatterAndLines(t *testing.T) {
	src := "---\ntitle: Bread\n---\n\n>> tags: baking, slow\n\nKnead @flour{}.\n"
	meta, diags := parseMeta(t, src)
	assert.False(t, diags)
	assert.Equal(t, "Bread", meta.Title)
	assert.Equal(t, []string{"baking", "slow"}, meta.Tags)
}
