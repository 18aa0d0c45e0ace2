package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ai_quick_actions/config"
	"ai_quick_actions/generator"
	"ai_quick_actions/host"
)

var (
	configPath string
	verbose    bool
	logFile    string

	cfg    config.Config
	logger = zap.NewNop().Sugar()
)

var rootCmd = &cobra.Command{
	Use:   "ai_quick_actions",
	Short: "AI quick actions: reply drafts, screen OCR and form autofill",
	Long: `ai_quick_actions bundles three desktop quick actions:

  reply  drafts short, medium and long replies to the selected text
  ocr    captures a screen region and copies the text a vision model reads
  form   opens a Google Form prefilled with a stored contact

serve exposes reply sessions over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := buildLogger()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l.Sugar()

		c, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = c
		logger.Debugw("config loaded", "path", configPath, "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable info and debug logs")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(replyCmd)
	rootCmd.AddCommand(ocrCmd)
	rootCmd.AddCommand(formCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildLogger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if logFile != "" {
		zc.OutputPaths = []string{logFile}
		zc.ErrorOutputPaths = []string{logFile}
	}
	return zc.Build()
}

func notifier() host.Notifier {
	return host.DesktopNotifier{Log: host.LogNotifier{Logger: logger}}
}

func buildLLM(c config.LLMConfig) (generator.LLMClient, error) {
	if c.Provider == "" {
		return nil, fmt.Errorf("llm config missing; please set llm.provider/model/api_key_env in config")
	}
	settings := &generator.LLMSettings{
		Provider: c.Provider,
		Model:    c.Model,
		APIKey:   c.Key(),
		BaseURL:  c.BaseURL,
		Timeout:  c.Timeout.Std(),
	}
	switch strings.ToLower(c.Provider) {
	case "openai":
		return generator.NewOpenAILLMFromConfig(settings)
	case "deepseek":
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url（例如官方/网关地址）。
		if c.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAILLMFromConfig(settings)
	case "gemini":
		return generator.NewGeminiLLMFromConfig(settings)
	case "mock":
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", c.Provider)
	}
}

// replyVariants applies the configured wording overrides to the built-ins.
func replyVariants(c config.ReplyConfig) ([]generator.Variant, error) {
	overrides := make([]generator.VariantOverride, 0, len(c.Variants))
	for _, v := range c.Variants {
		overrides = append(overrides, generator.VariantOverride{
			ID:          generator.VariantID(v.ID),
			Title:       v.Title,
			Description: v.Description,
			Length:      v.Length,
			Modifier:    v.Modifier,
		})
	}
	return generator.ApplyOverrides(generator.DefaultVariants(), overrides)
}

// newReplyAgent builds the Agent every reply front end shares.
func newReplyAgent(creativity string) (*generator.Agent, []generator.Variant, error) {
	llm, err := buildLLM(cfg.LLM)
	if err != nil {
		return nil, nil, err
	}
	variants, err := replyVariants(cfg.Reply)
	if err != nil {
		return nil, nil, err
	}
	if creativity == "" {
		creativity = cfg.Reply.Creativity
	}
	agent, err := generator.NewAgent(llm,
		generator.WithTemperature(generator.CreativityTemperature(creativity)),
		generator.WithTimeout(cfg.Reply.Timeout.Std()),
		generator.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	return agent, variants, nil
}
