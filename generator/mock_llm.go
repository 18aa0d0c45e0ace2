package generator

import (
	"context"
	"fmt"
	"strings"
)

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	if len(prompt.Images) > 0 {
		return fmt.Sprintf(`{"text": "mock text from %d image(s)", "confidence": 0.5, "language": "English"}`, len(prompt.Images)), nil
	}
	// 取提示词里最后一条要求，回显成一句回复。
	lines := strings.Split(strings.TrimSpace(prompt.User), "\n")
	last := strings.TrimPrefix(strings.TrimSpace(lines[len(lines)-1]), "- ")
	var sb strings.Builder
	sb.WriteString("Thank you for your message.\n")
	sb.WriteString("(mock reply: ")
	sb.WriteString(last)
	sb.WriteString(")")
	return sb.String(), nil
}
