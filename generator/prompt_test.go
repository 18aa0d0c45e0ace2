package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReplyPrompt(t *testing.T) {
	temp := 0.5
	p := BuildReplyPrompt("Hello there", "- Be brief", &temp)

	assert.True(t, strings.HasPrefix(p.User, "Please generate an appropriate reply"))
	assert.True(t, strings.HasSuffix(p.User, "- Choose appropriate reply style based on text content and context\n- Be brief"))
	assert.Contains(t, p.User, "Original text:\nHello there\n")
	assert.NotEmpty(t, p.System)
	assert.Same(t, &temp, p.Temperature)
}

func TestBuildReplyPrompt_EmptyModifier(t *testing.T) {
	p := BuildReplyPrompt("Hello", "  ", nil)
	assert.True(t, strings.HasSuffix(p.User, "- General and appropriate reply"))
}

func TestCreativityTemperature(t *testing.T) {
	cases := map[string]float64{
		"none":    0,
		"low":     0.5,
		"Medium":  1.0,
		"high":    1.5,
		"maximum": 2.0,
		"":        0.5,
		"bogus":   0.5,
	}
	for name, want := range cases {
		assert.InDelta(t, want, CreativityTemperature(name), 1e-9, name)
	}
}

func TestDefaultVariants(t *testing.T) {
	vs := DefaultVariants()
	require.Len(t, vs, 3)
	assert.Equal(t, []VariantID{VariantShort, VariantMedium, VariantLong}, []VariantID{vs[0].ID, vs[1].ID, vs[2].ID})
	for _, v := range vs {
		assert.NotEmpty(t, v.Title)
		assert.NotEmpty(t, v.Modifier)
	}
	assert.Contains(t, vs[2].Modifier, "5-7 lines")
}

func TestApplyOverrides(t *testing.T) {
	base := DefaultVariants()
	out, err := ApplyOverrides(base, []VariantOverride{{ID: VariantShort, Title: "Tiny", Modifier: "- one word"}})
	require.NoError(t, err)
	assert.Equal(t, "Tiny", out[0].Title)
	assert.Equal(t, "- one word", out[0].Modifier)
	assert.Equal(t, "Concise and focused reply", out[0].Description)
	// input untouched
	assert.Equal(t, "Short", base[0].Title)

	_, err = ApplyOverrides(base, []VariantOverride{{ID: "huge"}})
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestParseVariantID(t *testing.T) {
	id, err := ParseVariantID(DefaultVariants(), "medium")
	require.NoError(t, err)
	assert.Equal(t, VariantMedium, id)

	_, err = ParseVariantID(DefaultVariants(), "MEDIUM")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}
