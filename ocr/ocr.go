// Package ocr captures a screen region, reads its text with a vision model
// and copies the text to the clipboard.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"go.uber.org/zap"

	"ai_quick_actions/generator"
	"ai_quick_actions/host"
)

var (
	ErrMissingAPIKey    = errors.New("API key is not set")
	ErrCaptureCancelled = errors.New("screenshot was cancelled")
	ErrNoText           = errors.New("no text was detected in the image")
)

const recognizePrompt = `Extract all text in this image accurately.

Requirements:
- Preserve the layout and structure as much as possible
- Recognise Japanese, English and any other language correctly
- Keep line breaks and spacing where appropriate
- Do not add explanations or commentary

Always return the result in this JSON format:
{"text": "the extracted text", "confidence": 0.95, "language": "the detected language"}`

// Settings are the knobs of one OCR run.
type Settings struct {
	// Provider names the vision backend in messages, e.g. "openai".
	Provider     string
	APIKey       string
	MaxDimension int
	MaxTokens    int
	Temperature  float64
}

// Pipeline 串起截图、识别、写剪贴板和通知。
type Pipeline struct {
	settings  Settings
	llm       generator.LLMClient
	capturer  Capturer
	clipboard host.Clipboard
	notifier  host.Notifier
	logger    *zap.SugaredLogger
}

// NewPipeline wires a pipeline. llm may be nil when no API key is
// configured; Run then fails with ErrMissingAPIKey before capturing.
func NewPipeline(settings Settings, llm generator.LLMClient, capturer Capturer, cb host.Clipboard, notifier host.Notifier, logger *zap.SugaredLogger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Pipeline{
		settings:  settings,
		llm:       llm,
		capturer:  capturer,
		clipboard: cb,
		notifier:  notifier,
		logger:    logger,
	}
}

// Run performs one capture and recognition. The temp screenshot is removed
// whatever the outcome.
func (p *Pipeline) Run(ctx context.Context) (res Result, err error) {
	if strings.TrimSpace(p.settings.APIKey) == "" || p.llm == nil {
		p.notify(ctx, host.StyleFailure, "Error",
			fmt.Sprintf("%s API key is not set. Please configure ocr.llm.api_key or api_key_env.", providerLabel(p.settings.Provider)))
		return Result{}, fmt.Errorf("%s: %w", providerLabel(p.settings.Provider), ErrMissingAPIKey)
	}

	var path string
	defer func() {
		if path != "" {
			p.cleanup(path)
		}
		if err != nil {
			p.notify(ctx, host.StyleFailure, "OCR failed", err.Error())
		}
	}()

	p.notify(ctx, host.StyleAnimated, "Capturing screenshot...", "")
	path, err = p.capturer.Capture(ctx)
	if err != nil {
		return Result{}, err
	}

	p.notify(ctx, host.StyleAnimated, "Running AI OCR...", "")
	res, err = p.recognize(ctx, path)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(res.Text) == "" {
		return Result{}, ErrNoText
	}

	if err = p.clipboard.WriteText(res.Text); err != nil {
		return Result{}, fmt.Errorf("failed to copy text: %w", err)
	}
	p.logger.Infow("ocr complete", "chars", len([]rune(res.Text)), "confidence", res.Confidence, "language", res.Language)
	p.notify(ctx, host.StyleSuccess, "OCR complete",
		fmt.Sprintf("Copied text to clipboard (confidence: %d%%)", int(math.Round(res.Confidence*100))))
	return res, nil
}

func providerLabel(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai":
		return "OpenAI"
	case "gemini":
		return "Gemini"
	case "deepseek":
		return "DeepSeek"
	case "":
		return "OCR model"
	default:
		return provider
	}
}

func (p *Pipeline) recognize(ctx context.Context, path string) (Result, error) {
	img, err := LoadImage(path, p.settings.MaxDimension)
	if err != nil {
		return Result{}, err
	}
	temp := p.settings.Temperature
	prompt := generator.Prompt{
		User:        recognizePrompt,
		Images:      []generator.Image{img},
		Temperature: &temp,
		MaxTokens:   p.settings.MaxTokens,
	}
	raw, err := p.llm.Complete(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("OCR request failed: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return Result{}, errors.New("no response from the OCR model")
	}
	return ParseResult(raw), nil
}

func (p *Pipeline) cleanup(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.logger.Warnw("failed to remove temp screenshot", "path", path, "error", err)
	}
}

func (p *Pipeline) notify(ctx context.Context, style host.Style, title, msg string) {
	if p.notifier == nil {
		return
	}
	p.notifier.Notify(ctx, host.Notification{Style: style, Title: title, Message: msg})
}
