package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFormURL is the Google Form the sample contacts are submitted to.
const DefaultFormURL = "https://docs.google.com/forms/d/e/1FAIpQLSdZ05WVF7M0316CS5tPsDQZRC1YEEuWggMAq3jDj6RqvS9wEw/viewform"

// Config holds every setting of the three quick actions.
type Config struct {
	LLM        LLMConfig   `yaml:"llm"`
	Reply      ReplyConfig `yaml:"reply"`
	OCR        OCRConfig   `yaml:"ocr"`
	Form       FormConfig  `yaml:"form"`
	ServerAddr string      `yaml:"server_addr,omitempty"`
	// SessionTTL closes HTTP reply sessions left untouched this long; 0 keeps them.
	SessionTTL Duration    `yaml:"session_ttl,omitempty"`
}

// LLMConfig 描述一个模型提供方（provider/model/key）。
type LLMConfig struct {
	Provider  string   `yaml:"provider,omitempty"`
	Model     string   `yaml:"model,omitempty"`
	APIKey    string   `yaml:"api_key,omitempty"`
	APIKeyEnv string   `yaml:"api_key_env,omitempty"`
	BaseURL   string   `yaml:"base_url,omitempty"`
	Timeout   Duration `yaml:"timeout,omitempty"`
}

// Key returns the inline api_key, falling back to the api_key_env variable.
func (c LLMConfig) Key() string {
	if k := strings.TrimSpace(c.APIKey); k != "" {
		return k
	}
	if c.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(c.APIKeyEnv))
}

// ReplyConfig tunes the reply drafts.
type ReplyConfig struct {
	Creativity string          `yaml:"creativity,omitempty"`
	Timeout    Duration        `yaml:"timeout,omitempty"`
	Variants   []VariantConfig `yaml:"variants,omitempty"`
}

// VariantConfig overrides the wording of one built-in reply variant.
type VariantConfig struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
	Length      string `yaml:"length,omitempty"`
	Modifier    string `yaml:"modifier,omitempty"`
}

// OCRConfig configures screen capture and the vision model.
type OCRConfig struct {
	LLM            LLMConfig `yaml:"llm"`
	CaptureCommand []string  `yaml:"capture_command,omitempty"`
	TempDir        string    `yaml:"temp_dir,omitempty"`
	MaxDimension   int       `yaml:"max_dimension,omitempty"`
	MaxTokens      int       `yaml:"max_tokens,omitempty"`
	Temperature    float64   `yaml:"temperature,omitempty"`
}

// FormConfig lists the contacts and the form entry keys they map to.
type FormConfig struct {
	URL     string      `yaml:"url,omitempty"`
	Fields  FormFields  `yaml:"fields,omitempty"`
	Entries []FormEntry `yaml:"entries,omitempty"`
}

// FormFields holds the "entry.<n>" query keys of the target form.
type FormFields struct {
	CompanyName string `yaml:"company_name,omitempty"`
	Name        string `yaml:"name,omitempty"`
	Email       string `yaml:"email,omitempty"`
	Address     string `yaml:"address,omitempty"`
	Phone       string `yaml:"phone,omitempty"`
	Comment     string `yaml:"comment,omitempty"`
}

// FormEntry is one stored contact.
type FormEntry struct {
	ID          int    `yaml:"id"`
	CompanyName string `yaml:"company_name"`
	Name        string `yaml:"name"`
	Email       string `yaml:"email"`
	Address     string `yaml:"address"`
	Phone       string `yaml:"phone,omitempty"`
	Comment     string `yaml:"comment,omitempty"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() Config {
	return Config{
		LLM: LLMConfig{
			Provider:  "gemini",
			Model:     "gemini-2.5-flash",
			APIKeyEnv: "GEMINI_API_KEY",
			Timeout:   Duration(60 * time.Second),
		},
		Reply: ReplyConfig{
			Creativity: "low",
			Timeout:    Duration(60 * time.Second),
		},
		OCR: OCRConfig{
			LLM: LLMConfig{
				Provider:  "openai",
				Model:     "gpt-4o",
				APIKeyEnv: "OPENAI_API_KEY",
				Timeout:   Duration(120 * time.Second),
			},
			CaptureCommand: []string{"screencapture", "-i", "{path}"},
			MaxDimension:   2048,
			MaxTokens:      4096,
			Temperature:    0.1,
		},
		Form: FormConfig{
			URL: DefaultFormURL,
			Fields: FormFields{
				CompanyName: "entry.2005620554",
				Name:        "entry.185333929",
				Email:       "entry.1045781291",
				Address:     "entry.1065046570",
				Phone:       "entry.1166974658",
				Comment:     "entry.839337160",
			},
			Entries: []FormEntry{
				{
					ID:          1,
					CompanyName: "株式会社サンプル1",
					Name:        "山田太郎",
					Email:       "yamada@example.com",
					Address:     "東京都渋谷区渋谷1-1-1",
					Phone:       "03-1234-5678",
					Comment:     "サンプルのお問い合わせです。",
				},
				{
					ID:          2,
					CompanyName: "株式会社サンプル2",
					Name:        "鈴木一郎",
					Email:       "suzuki@example.com",
					Address:     "大阪府大阪市中央区1-1-1",
					Phone:       "06-1234-5678",
				},
			},
		},
		ServerAddr: ":8080",
		SessionTTL: Duration(30 * time.Minute),
	}
}

// LoadConfig reads the YAML config on top of Defaults. A .env file next to
// the working directory is loaded first so api_key_env can point into it.
// A missing config file is not an error.
func LoadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var knownVariants = map[string]bool{"short": true, "medium": true, "long": true}

var knownCreativity = map[string]bool{"": true, "none": true, "low": true, "medium": true, "high": true, "maximum": true}

// Validate checks the fields the commands cannot recover from.
func (c Config) Validate() error {
	if c.LLM.Provider == "" {
		return errors.New("llm.provider is required")
	}
	if !knownCreativity[c.Reply.Creativity] {
		return fmt.Errorf("reply.creativity %q must be one of none, low, medium, high, maximum", c.Reply.Creativity)
	}
	seen := make(map[string]bool)
	for _, v := range c.Reply.Variants {
		if !knownVariants[v.ID] {
			return fmt.Errorf("reply.variants: unknown variant %q", v.ID)
		}
		if seen[v.ID] {
			return fmt.Errorf("reply.variants: duplicate variant %q", v.ID)
		}
		seen[v.ID] = true
	}
	if len(c.OCR.CaptureCommand) == 0 {
		return errors.New("ocr.capture_command must not be empty")
	}
	if c.OCR.Temperature < 0 || c.OCR.Temperature > 2 {
		return fmt.Errorf("ocr.temperature %.2f out of range [0,2]", c.OCR.Temperature)
	}
	if c.SessionTTL < 0 {
		return errors.New("session_ttl must not be negative")
	}
	ids := make(map[int]bool)
	for _, e := range c.Form.Entries {
		if ids[e.ID] {
			return fmt.Errorf("form.entries: duplicate id %d", e.ID)
		}
		ids[e.ID] = true
	}
	return nil
}
