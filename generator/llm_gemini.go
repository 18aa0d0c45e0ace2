package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when the config leaves llm.model empty.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiLLM implements LLMClient on top of google.golang.org/genai.
type GeminiLLM struct {
	Model      string
	// HTTPClient overrides the transport genai uses; nil means its default.
	HTTPClient *http.Client
	settings   LLMSettings

	once   sync.Once
	client *genai.Client
	err    error
}

func NewGeminiLLMFromConfig(cfg *LLMSettings) (*GeminiLLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key missing; provide llm.api_key or llm.api_key_env")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiLLM{Model: model, settings: *cfg}, nil
}

// genaiClient 懒加载，首次调用时才建立客户端。
func (g *GeminiLLM) genaiClient(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		cc := &genai.ClientConfig{
			APIKey:     g.settings.APIKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: g.HTTPClient,
		}
		if g.settings.BaseURL != "" || g.settings.Timeout > 0 {
			cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.settings.BaseURL}
			if g.settings.Timeout > 0 {
				t := g.settings.Timeout
				cc.HTTPOptions.Timeout = &t
			}
		}
		g.client, g.err = genai.NewClient(ctx, cc)
	})
	if g.err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", g.err)
	}
	return g.client, nil
}

func (g *GeminiLLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	client, err := g.genaiClient(ctx)
	if err != nil {
		return "", err
	}

	var contents []*genai.Content
	for _, h := range prompt.History {
		role := genai.Role(genai.RoleUser)
		if h.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(h.Content, role))
	}
	parts := []*genai.Part{genai.NewPartFromText(prompt.User)}
	for _, img := range prompt.Images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIMEType))
	}
	contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))

	gcfg := &genai.GenerateContentConfig{}
	if prompt.System != "" {
		gcfg.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}
	if prompt.Temperature != nil {
		temp := float32(*prompt.Temperature)
		gcfg.Temperature = &temp
	}
	if prompt.MaxTokens > 0 {
		gcfg.MaxOutputTokens = int32(prompt.MaxTokens)
	}

	resp, err := client.Models.GenerateContent(ctx, g.Model, contents, gcfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: no candidates returned")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}
