// Package host wraps the desktop capabilities the quick actions rely on:
// clipboard, opening URLs and user notifications.
package host

import (
	"errors"
	"strings"

	"github.com/atotto/clipboard"
)

// Clipboard reads and writes plain text.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// SystemClipboard uses the OS clipboard.
type SystemClipboard struct{}

var (
	clipboardReadAll  = clipboard.ReadAll
	clipboardWriteAll = clipboard.WriteAll
)

func (SystemClipboard) ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", errors.New("clipboard not supported on this system")
	}
	return clipboardReadAll()
}

func (SystemClipboard) WriteText(text string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard not supported on this system")
	}
	return clipboardWriteAll(text)
}

// SelectedText returns the text the user selected. Desktop selections are
// copied to the clipboard before the command runs, so the clipboard is the
// source. Blank selections are an error.
func SelectedText(cb Clipboard) (string, error) {
	text, err := cb.ReadText()
	if err != nil {
		return "", errors.New("could not retrieve selected text")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("no text selected")
	}
	return text, nil
}

// MemoryClipboard keeps text in memory; used by tests and headless runs.
type MemoryClipboard struct {
	Text string
}

func (m *MemoryClipboard) ReadText() (string, error) { return m.Text, nil }

func (m *MemoryClipboard) WriteText(text string) error {
	m.Text = text
	return nil
}
