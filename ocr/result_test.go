package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseResult(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Result
	}{
		{
			name:    "plain json",
			content: `{"text": "こんにちは", "confidence": 0.97, "language": "Japanese"}`,
			want:    Result{Text: "こんにちは", Confidence: 0.97, Language: "Japanese"},
		},
		{
			name:    "json wrapped in prose",
			content: "Here you go:\n```json\n{\"text\": \"Hello\", \"confidence\": 0.5, \"language\": \"English\"}\n```",
			want:    Result{Text: "Hello", Confidence: 0.5, Language: "English"},
		},
		{
			name:    "no json",
			content: "just some text",
			want:    Result{Text: "just some text", Confidence: 0.9, Language: "unknown"},
		},
		{
			name:    "broken json",
			content: `{"text": "oops",}`,
			want:    Result{Text: `{"text": "oops",}`, Confidence: 0.8, Language: "unknown"},
		},
		{
			name:    "missing fields",
			content: `{"text": "only text"}`,
			want:    Result{Text: `{"text": "only text"}`, Confidence: 0.8, Language: "unknown"},
		},
		{
			name:    "confidence out of range",
			content: `{"text": "x", "confidence": 7, "language": "English"}`,
			want:    Result{Text: `{"text": "x", "confidence": 7, "language": "English"}`, Confidence: 0.8, Language: "unknown"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseResult(tt.content))
		})
	}
}
