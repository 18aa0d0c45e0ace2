package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai_quick_actions/generator"
	"ai_quick_actions/host"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

type fakeCapturer struct {
	path string
	err  error
}

func (f fakeCapturer) Capture(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.path, nil
}

type fakeLLM struct {
	reply  string
	err    error
	prompt generator.Prompt
}

func (f *fakeLLM) Complete(_ context.Context, p generator.Prompt) (string, error) {
	f.prompt = p
	return f.reply, f.err
}

func newTestPipeline(t *testing.T, llm *fakeLLM, capErr error) (*Pipeline, *host.MemoryClipboard, *host.RecordingNotifier, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), TempFileName)
	if capErr == nil {
		writePNG(t, path, 40, 20)
	}
	cb := &host.MemoryClipboard{}
	rec := &host.RecordingNotifier{}
	p := NewPipeline(Settings{APIKey: "sk-test", MaxDimension: 2048, MaxTokens: 4096, Temperature: 0.1},
		llm, fakeCapturer{path: path, err: capErr}, cb, rec, nil)
	return p, cb, rec, path
}

func titles(ns []host.Notification) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Title)
	}
	return out
}

func TestPipeline_Run_Success(t *testing.T) {
	llm := &fakeLLM{reply: `{"text": "Invoice #42", "confidence": 0.93, "language": "English"}`}
	p, cb, rec, path := newTestPipeline(t, llm, nil)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Invoice #42", res.Text)
	assert.Equal(t, "Invoice #42", cb.Text)

	sent := rec.Sent()
	assert.Equal(t, []string{"Capturing screenshot...", "Running AI OCR...", "OCR complete"}, titles(sent))
	assert.Equal(t, "Copied text to clipboard (confidence: 93%)", sent[2].Message)
	assert.Equal(t, host.StyleSuccess, sent[2].Style)

	require.Len(t, llm.prompt.Images, 1)
	assert.Equal(t, "image/png", llm.prompt.Images[0].MIMEType)
	require.NotNil(t, llm.prompt.Temperature)
	assert.InDelta(t, 0.1, *llm.prompt.Temperature, 1e-9)
	assert.Equal(t, 4096, llm.prompt.MaxTokens)

	assert.NoFileExists(t, path)
}

func TestPipeline_Run_MissingKey(t *testing.T) {
	rec := &host.RecordingNotifier{}
	p := NewPipeline(Settings{}, nil, fakeCapturer{err: errors.New("must not capture")}, &host.MemoryClipboard{}, rec, nil)

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	sent := rec.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, host.StyleFailure, sent[0].Style)
	assert.True(t, strings.HasPrefix(sent[0].Message, "OCR model API key is not set"))
}

func TestPipeline_Run_MissingKeyNamesProvider(t *testing.T) {
	for provider, label := range map[string]string{"gemini": "Gemini", "openai": "OpenAI", "deepseek": "DeepSeek"} {
		rec := &host.RecordingNotifier{}
		p := NewPipeline(Settings{Provider: provider}, nil, fakeCapturer{}, &host.MemoryClipboard{}, rec, nil)

		_, err := p.Run(context.Background())
		assert.ErrorIs(t, err, ErrMissingAPIKey)
		assert.EqualError(t, err, label+": API key is not set")
		sent := rec.Sent()
		require.Len(t, sent, 1)
		assert.True(t, strings.HasPrefix(sent[0].Message, label+" API key is not set"), sent[0].Message)
	}
}

func TestPipeline_Run_Cancelled(t *testing.T) {
	p, cb, rec, _ := newTestPipeline(t, &fakeLLM{}, ErrCaptureCancelled)

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrCaptureCancelled)
	assert.Empty(t, cb.Text)
	sent := rec.Sent()
	assert.Equal(t, "OCR failed", sent[len(sent)-1].Title)
}

func TestPipeline_Run_NoText(t *testing.T) {
	llm := &fakeLLM{reply: `{"text": "  ", "confidence": 0.4, "language": "English"}`}
	p, cb, _, path := newTestPipeline(t, llm, nil)

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoText)
	assert.Empty(t, cb.Text)
	assert.NoFileExists(t, path)
}

func TestPipeline_Run_ModelError(t *testing.T) {
	llm := &fakeLLM{err: errors.New("rate limited")}
	p, _, rec, path := newTestPipeline(t, llm, nil)

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.NoFileExists(t, path)
	sent := rec.Sent()
	assert.Equal(t, "OCR failed", sent[len(sent)-1].Title)
}

func TestPipeline_Run_MockModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), TempFileName)
	writePNG(t, path, 10, 10)
	cb := &host.MemoryClipboard{}
	p := NewPipeline(Settings{APIKey: "mock"}, generator.MockLLM{}, fakeCapturer{path: path}, cb, nil, nil)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mock text from 1 image(s)", cb.Text)
	assert.Equal(t, "English", res.Language)
}

func TestLoadImage_Scales(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.png")
	big := filepath.Join(dir, "big.png")
	writePNG(t, small, 30, 10)
	writePNG(t, big, 400, 100)

	img, err := LoadImage(small, 200)
	require.NoError(t, err)
	raw, _ := os.ReadFile(small)
	assert.Equal(t, raw, img.Data)

	img, err = LoadImage(big, 200)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(img.Data))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 50, cfg.Height)

	_, err = LoadImage(filepath.Join(dir, "missing.png"), 200)
	assert.Error(t, err)
}

func TestCommandCapturer(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses cp and true")
	}
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writePNG(t, src, 5, 5)

	c := CommandCapturer{Command: []string{"cp", src, "{path}"}, Dir: dir}
	path, err := c.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, TempFileName), path)
	assert.FileExists(t, path)

	// the stale file from the previous capture is removed first
	c = CommandCapturer{Command: []string{"true"}, Dir: dir}
	path, err = c.Capture(context.Background())
	assert.ErrorIs(t, err, ErrCaptureCancelled)
	assert.Empty(t, path)

	_, err = CommandCapturer{}.Capture(context.Background())
	assert.Error(t, err)
}
