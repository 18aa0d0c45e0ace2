package generator

import (
	"errors"
	"fmt"
)

var (
	// ErrGeneration marks a failed call to the text generation backend.
	ErrGeneration = errors.New("generation failed")
	// ErrEmptyInput is returned when the source text is blank.
	ErrEmptyInput = errors.New("no text selected")
	// ErrNoInput is returned when a variant is started before any input text.
	ErrNoInput = errors.New("session has no input text")
	// ErrUnknownVariant is returned for ids outside the session's variants.
	ErrUnknownVariant = errors.New("unknown variant")
	// ErrClosed is returned by a Session after Close.
	ErrClosed = errors.New("session closed")
)

// GenerationError wraps a backend failure for one generation request.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("failed to generate reply: %v", e.Err)
}

func (e *GenerationError) Unwrap() []error {
	return []error{ErrGeneration, e.Err}
}
