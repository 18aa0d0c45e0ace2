package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"ai_quick_actions/generator"
	"ai_quick_actions/host"
	"ai_quick_actions/ocr"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr",
	Short: "Capture a screen region and copy its text",
	Long: `Runs the configured capture command (screencapture -i on macOS),
sends the image to the vision model and copies the recognised text to
the clipboard. The text is also printed.`,
	Args: cobra.NoArgs,
	RunE: runOCR,
}

func runOCR(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := newOCRPipeline(host.SystemClipboard{})
	if err != nil {
		return err
	}
	res, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Text)
	return nil
}

// newOCRPipeline builds the pipeline from cfg.OCR. Without an API key the
// model is left unset and the pipeline reports the missing key on Run.
func newOCRPipeline(cb host.Clipboard) (*ocr.Pipeline, error) {
	c := cfg.OCR
	key := c.LLM.Key()
	if strings.EqualFold(c.LLM.Provider, "mock") {
		key = "mock"
	}
	var llm generator.LLMClient
	if key != "" {
		var err error
		if llm, err = buildLLM(c.LLM); err != nil {
			return nil, err
		}
	}
	settings := ocr.Settings{
		Provider:     c.LLM.Provider,
		APIKey:       key,
		MaxDimension: c.MaxDimension,
		MaxTokens:    c.MaxTokens,
		Temperature:  c.Temperature,
	}
	capturer := ocr.CommandCapturer{Command: c.CaptureCommand, Dir: c.TempDir}
	return ocr.NewPipeline(settings, llm, capturer, cb, notifier(), logger), nil
}
