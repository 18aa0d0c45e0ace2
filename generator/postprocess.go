package generator

import (
	"errors"
	"strings"
)

// PostProcess trims the model output and strips a wrapping code fence.
func PostProcess(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") && len(text) >= 6 {
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimPrefix(text, "```")
		// drop a language tag on the opening fence line
		if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], " \t") {
			text = text[nl+1:]
		}
		text = strings.TrimSpace(text)
	}
	if text == "" {
		return "", errors.New("model returned empty reply")
	}
	return text, nil
}

// LineCount counts the lines of a reply the way the detail view shows them.
func LineCount(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}
