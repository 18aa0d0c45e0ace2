package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostProcess(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"trims", "  Got it.  \n", "Got it."},
		{"fenced", "```\nSure, will do.\n```", "Sure, will do."},
		{"fenced with tag", "```text\nSure.\nThanks\n```", "Sure.\nThanks"},
		{"inner fence kept", "Use ``` for code", "Use ``` for code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PostProcess(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := PostProcess(" \n\t")
	assert.Error(t, err)
	_, err = PostProcess("``````")
	assert.Error(t, err)
}

func TestLineCount(t *testing.T) {
	assert.Equal(t, 0, LineCount(""))
	assert.Equal(t, 1, LineCount("one"))
	assert.Equal(t, 3, LineCount("a\nb\nc"))
}
