package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/geulmoi/geulssaem/internal/config"
	"github.com/geulmoi/geulssaem/internal/llm"
	"github.com/geulmoi/geulssaem/internal/tutor"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

var (
	// Global flags.
	flagProvider string
	flagModel    string
	flagBaseURL  string
	flagAPIKey   string
	flagGrade    string
	flagSubject  string
	flagType     string
)

var rootCmd = &cobra.Command{
	Use:   "geulssaem",
	Short: "AI writing tutor for Korean elementary school students",
	Long: `geulssaem evaluates student writing with an LLM and talks with students
about how to write better.

Submitted text is scored 0-100 against a grade-appropriate rubric with
Korean feedback. The tutor never fails outright: replies the model
garbles and transport errors degrade to fixed fallback scores, so a
student always gets an answer.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", envOrDefault("GEULSSAEM_PROVIDER", ""), "LLM provider: gemini, anthropic, openai (default: gemini)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", envOrDefault("GEULSSAEM_MODEL", ""), "LLM model name (default: the provider's default)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", envOrDefault("GEULSSAEM_BASE_URL", ""), "override LLM API base URL")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", envOrDefault("GEULSSAEM_API_KEY", ""), "override LLM API key")
	rootCmd.PersistentFlags().StringVar(&flagGrade, "grade", envOrDefault("GEULSSAEM_GRADE", ""), "grade band, e.g. 3-4학년군")
	rootCmd.PersistentFlags().StringVar(&flagSubject, "subject", envOrDefault("GEULSSAEM_SUBJECT", ""), "school subject, e.g. 국어")
	rootCmd.PersistentFlags().StringVar(&flagType, "type", envOrDefault("GEULSSAEM_WRITING_TYPE", ""), "writing type, e.g. 일기")
}

// loadConfig loads the layered configuration and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if flagProvider != "" {
		cfg.Provider = flagProvider
	}
	if flagModel != "" {
		cfg.Model = flagModel
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}
	if flagGrade != "" {
		cfg.Grade = flagGrade
	}
	if flagSubject != "" {
		cfg.Subject = flagSubject
	}
	if flagType != "" {
		cfg.WritingType = flagType
	}
	return cfg, nil
}

// settingsFromConfig builds the study settings the tutor prompts use.
func settingsFromConfig(cfg *config.Config) tutor.Settings {
	return tutor.Settings{
		Grade:       cfg.Grade,
		Subject:     cfg.Subject,
		WritingType: cfg.WritingType,
	}
}

// newGenerator builds the configured LLM client.
func newGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	switch cfg.Provider {
	case "gemini":
		return newGeminiGenerator(ctx, cfg)
	case "anthropic":
		return newAnthropicGenerator(cfg)
	case "openai":
		return newOpenAIGenerator(cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: gemini, anthropic, openai)", cfg.Provider)
	}
}

func newGeminiGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	modelName := cfg.Model
	if modelName == "" {
		modelName = llm.DefaultGeminiModel
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key found. Set GEULSSAEM_API_KEY, GOOGLE_API_KEY, or GEMINI_API_KEY")
	}
	return llm.NewGeminiGenerator(ctx, llm.GeminiConfig{
		APIKey:  cfg.APIKey,
		Model:   modelName,
		BaseURL: cfg.BaseURL,
	})
}

func newAnthropicGenerator(cfg *config.Config) (llm.Generator, error) {
	modelName := cfg.Model
	if modelName == "" {
		modelName = llm.DefaultAnthropicModel
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key found. Set GEULSSAEM_API_KEY, AZURE_OPENAI_API_KEY, or ANTHROPIC_API_KEY")
	}

	// Azure AI Foundry needs both "api-key" (Azure) and "x-api-key"
	// (Anthropic SDK default) headers.
	extraHeaders := map[string]string{}
	if os.Getenv("AZURE_RESOURCE_NAME") != "" || config.IsAzureEndpoint(cfg.BaseURL) {
		extraHeaders["api-key"] = cfg.APIKey
	}

	return llm.NewAnthropicGenerator(llm.AnthropicConfig{
		BaseURL:      cfg.BaseURL,
		APIKey:       cfg.APIKey,
		Model:        modelName,
		ExtraHeaders: extraHeaders,
	}), nil
}

func newOpenAIGenerator(cfg *config.Config) (llm.Generator, error) {
	modelName := cfg.Model
	if modelName == "" {
		modelName = llm.DefaultOpenAIModel
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key found. Set GEULSSAEM_API_KEY, AZURE_OPENAI_API_KEY, or OPENAI_API_KEY")
	}

	extraHeaders := map[string]string{}
	if os.Getenv("AZURE_RESOURCE_NAME") != "" || config.IsAzureEndpoint(cfg.BaseURL) {
		extraHeaders["api-key"] = cfg.APIKey
	}

	return llm.NewOpenAIGenerator(llm.OpenAIConfig{
		BaseURL:      cfg.BaseURL,
		APIKey:       cfg.APIKey,
		Model:        modelName,
		ExtraHeaders: extraHeaders,
	}), nil
}

// closeGenerator releases the client when the provider holds a connection.
func closeGenerator(gen llm.Generator) {
	if closer, ok := gen.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
