package generator

import (
	"fmt"
	"strings"
)

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	System  string
	User    string
	History []Message
	// Images are attached to the user message (vision models only).
	Images      []Image
	Temperature *float64
	MaxTokens   int
}

// Message 用于少量历史（可选）。
type Message struct {
	Role    string
	Content string
}

// Image is raw image bytes plus their MIME type.
type Image struct {
	MIMEType string
	Data     []byte
}

const replyBase = `Please generate an appropriate reply to the following text.

Original text:
%s

Requirements:
- Reply in the same language as the selected text
- Choose appropriate level of formality based on context
- Generate natural and readable reply text
- Choose appropriate reply style based on text content and context`

// generalModifier is used when a variant carries no instructions of its own.
const generalModifier = "- General and appropriate reply"

// BuildReplyPrompt 拼接基础提示词与变体说明。
func BuildReplyPrompt(source, modifier string, temperature *float64) Prompt {
	modifier = strings.TrimSpace(modifier)
	if modifier == "" {
		modifier = generalModifier
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(replyBase, source))
	sb.WriteString("\n")
	sb.WriteString(modifier)

	return Prompt{
		System:      "Output only the reply text itself, without any preface or explanation.",
		User:        sb.String(),
		Temperature: temperature,
	}
}

// CreativityTemperature maps a creativity name to a sampling temperature.
// Unknown names fall back to "low".
func CreativityTemperature(name string) float64 {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none":
		return 0
	case "medium":
		return 1.0
	case "high":
		return 1.5
	case "maximum":
		return 2.0
	default:
		return 0.5
	}
}
