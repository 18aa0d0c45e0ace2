package view

import (
	"bytes"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
)

// ToHTML converts markdown to HTML.
func ToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// NewTerminalRenderer builds a glamour renderer for a standard style
// ("dark", "light", "notty", ...). An empty style detects the terminal
// background, which must not happen while a program owns the screen.
func NewTerminalRenderer(style string, width int) (*glamour.TermRenderer, error) {
	if width <= 0 {
		width = 80
	}
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	return glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
}

// Render renders md with r. A nil renderer or a render error yields the
// raw markdown.
func Render(r *glamour.TermRenderer, md string) string {
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// Terminal renders markdown once with the auto-detected style.
func Terminal(md string, width int) string {
	r, err := NewTerminalRenderer("", width)
	if err != nil {
		return md
	}
	return Render(r, md)
}
