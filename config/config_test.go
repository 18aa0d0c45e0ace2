package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "low", cfg.Reply.Creativity)
	assert.Equal(t, 60*time.Second, cfg.Reply.Timeout.Std())
	assert.Len(t, cfg.Form.Entries, 2)
	assert.Equal(t, []string{"screencapture", "-i", "{path}"}, cfg.OCR.CaptureCommand)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL.Std())
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
llm:
  provider: openai
  model: gpt-4o-mini
  api_key: sk-test
reply:
  creativity: medium
  timeout: 15s
  variants:
    - id: short
      title: Tiny
ocr:
  llm:
    timeout: 45
form:
  entries:
    - id: 7
      company_name: Acme
      name: Jane
      email: jane@example.com
      address: Somewhere 1
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.Key())
	assert.Equal(t, "medium", cfg.Reply.Creativity)
	assert.Equal(t, 15*time.Second, cfg.Reply.Timeout.Std())
	require.Len(t, cfg.Reply.Variants, 1)
	assert.Equal(t, "Tiny", cfg.Reply.Variants[0].Title)
	assert.Equal(t, 45*time.Second, cfg.OCR.LLM.Timeout.Std())
	// untouched nested defaults survive
	assert.Equal(t, "gpt-4o", cfg.OCR.LLM.Model)
	require.Len(t, cfg.Form.Entries, 1)
	assert.Equal(t, "Acme", cfg.Form.Entries[0].CompanyName)
	assert.Equal(t, "entry.2005620554", cfg.Form.Fields.CompanyName)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown variant", "reply:\n  variants:\n    - id: huge\n"},
		{"duplicate variant", "reply:\n  variants:\n    - id: long\n    - id: long\n"},
		{"bad creativity", "reply:\n  creativity: wild\n"},
		{"bad duration", "reply:\n  timeout: soon\n"},
		{"duplicate entry", "form:\n  entries:\n    - id: 1\n    - id: 1\n"},
		{"temperature", "ocr:\n  temperature: 3\n"},
		{"negative ttl", "session_ttl: -5s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLLMConfig_KeyFromEnv(t *testing.T) {
	t.Setenv("QUICK_ACTIONS_TEST_KEY", "  from-env  ")
	c := LLMConfig{APIKeyEnv: "QUICK_ACTIONS_TEST_KEY"}
	assert.Equal(t, "from-env", c.Key())

	c.APIKey = "inline"
	assert.Equal(t, "inline", c.Key())

	assert.Empty(t, LLMConfig{}.Key())
}
