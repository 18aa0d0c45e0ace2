// Package view renders reply slots as markdown for the terminal and HTTP
// front ends.
package view

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ai_quick_actions/generator"
)

// previewLimit is how many characters of the source text the detail shows.
const previewLimit = 100

// StatusLabel is the human label of a slot status.
func StatusLabel(s generator.Status) string {
	switch s {
	case generator.StatusPending:
		return "Generating..."
	case generator.StatusDone:
		return "Generated"
	case generator.StatusFailed:
		return "Failed"
	default:
		return "Waiting to start"
	}
}

// StatusSuffix is appended to a list row title, e.g. " (Generating...)".
func StatusSuffix(s generator.Status) string {
	switch s {
	case generator.StatusPending:
		return " (Generating...)"
	case generator.StatusDone:
		return " (Generated)"
	case generator.StatusFailed:
		return " (Failed)"
	default:
		return ""
	}
}

// DetailMarkdown renders one slot with its metadata.
func DetailMarkdown(source string, sl generator.SlotState) string {
	var sb strings.Builder
	switch sl.Status {
	case generator.StatusDone:
		sb.WriteString("## Suggested Reply\n\n")
		sb.WriteString(sl.Result)
	case generator.StatusPending:
		sb.WriteString("## Generating...\n\nPlease wait a moment.")
	case generator.StatusFailed:
		sb.WriteString("## Generation Failed\n\n")
		sb.WriteString(sl.Error)
	default:
		sb.WriteString("## Waiting for generation...\n\nThe reply is being generated...")
	}
	sb.WriteString("\n\n---\n\n")

	v := sl.Variant
	fmt.Fprintf(&sb, "- **Type:** %s\n", v.Title)
	fmt.Fprintf(&sb, "- **Description:** %s\n", v.Description)
	fmt.Fprintf(&sb, "- **Expected Length:** %s\n", v.Length)
	if sl.Status == generator.StatusDone {
		fmt.Fprintf(&sb, "- **Actual Lines:** %d lines\n", generator.LineCount(sl.Result))
	}
	fmt.Fprintf(&sb, "- **Original Text:** %s\n", Preview(source, previewLimit))
	fmt.Fprintf(&sb, "- **Character Count:** %d characters\n", utf8.RuneCountInString(source))
	fmt.Fprintf(&sb, "- **Generation Status:** %s\n", StatusLabel(sl.Status))
	return sb.String()
}

// Preview cuts s to limit runes on one line, adding "..." when cut.
func Preview(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
