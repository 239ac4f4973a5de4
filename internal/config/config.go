// Package config loads geulssaem configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (GEULSSAEM_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. .geulssaem.yaml in current directory
//  2. ~/.config/geulssaem/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/geulmoi/geulssaem/internal/model"
)

// Config holds all geulssaem configuration.
type Config struct {
	// LLM settings
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"` // empty means the provider's default
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`

	// Study settings used when a surface does not pick its own
	Grade       string `yaml:"grade"`
	Subject     string `yaml:"subject"`
	WritingType string `yaml:"writing_type"`

	// Evaluation
	AttemptTimeout string `yaml:"attempt_timeout"` // per model call, Go duration string, e.g. "60s"
	Parallel       int    `yaml:"parallel"`        // batch evaluation concurrency

	// Sessions
	SessionTTL string `yaml:"session_ttl"` // idle session eviction, e.g. "2h"; "0" disables

	// Server
	ListenAddr     string   `yaml:"listen_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"` // empty means allow all (development)

	// TUI
	Theme string `yaml:"theme"` // "dark" or "light"

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs, e.g. "Authorization=Basic abc123"

	// Parsed durations (not from YAML, set after loading)
	AttemptTimeoutDuration time.Duration `yaml:"-"`
	SessionTTLDuration     time.Duration `yaml:"-"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		Provider:       "gemini",
		Grade:          model.DefaultGrade,
		Subject:        model.DefaultSubject,
		WritingType:    model.DefaultWritingType,
		AttemptTimeout: "60s",
		Parallel:       4,
		SessionTTL:     "2h",
		ListenAddr:     ":8080",
		Theme:          "dark",
	}
}

// Load reads configuration from file and environment variables.
// Environment variables always override file values.
func Load() (*Config, error) {
	cfg := Defaults()

	// Try to load config file
	if path, data, err := findConfigFile(); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		mergeFile(cfg, &fileCfg)
	}

	// Environment variables override everything
	mergeEnv(cfg)

	// Parse durations
	var err error
	cfg.AttemptTimeoutDuration, err = parseDurationOrDisable(cfg.AttemptTimeout, 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid attempt timeout %q: %w", cfg.AttemptTimeout, err)
	}
	cfg.SessionTTLDuration, err = parseDurationOrDisable(cfg.SessionTTL, 2*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid session TTL %q: %w", cfg.SessionTTL, err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile() (string, []byte, error) {
	// 1. Current directory
	if data, err := os.ReadFile(".geulssaem.yaml"); err == nil {
		return ".geulssaem.yaml", data, nil
	}

	// 2. XDG config dir / ~/.config
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "geulssaem", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.Provider != "" {
		cfg.Provider = file.Provider
	}
	if file.Model != "" {
		cfg.Model = file.Model
	}
	if file.BaseURL != "" {
		cfg.BaseURL = file.BaseURL
	}
	if file.APIKey != "" {
		cfg.APIKey = file.APIKey
	}
	if file.Grade != "" {
		cfg.Grade = file.Grade
	}
	if file.Subject != "" {
		cfg.Subject = file.Subject
	}
	if file.WritingType != "" {
		cfg.WritingType = file.WritingType
	}
	if file.AttemptTimeout != "" {
		cfg.AttemptTimeout = file.AttemptTimeout
	}
	if file.Parallel > 0 {
		cfg.Parallel = file.Parallel
	}
	if file.SessionTTL != "" {
		cfg.SessionTTL = file.SessionTTL
	}
	if file.ListenAddr != "" {
		cfg.ListenAddr = file.ListenAddr
	}
	if len(file.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = file.AllowedOrigins
	}
	if file.Theme != "" {
		cfg.Theme = file.Theme
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("GEULSSAEM_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("GEULSSAEM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("GEULSSAEM_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("GEULSSAEM_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("GEULSSAEM_GRADE"); v != "" {
		cfg.Grade = v
	}
	if v := os.Getenv("GEULSSAEM_SUBJECT"); v != "" {
		cfg.Subject = v
	}
	if v := os.Getenv("GEULSSAEM_WRITING_TYPE"); v != "" {
		cfg.WritingType = v
	}
	if v := os.Getenv("GEULSSAEM_ATTEMPT_TIMEOUT"); v != "" {
		cfg.AttemptTimeout = v
	}
	if v := os.Getenv("GEULSSAEM_SESSION_TTL"); v != "" {
		cfg.SessionTTL = v
	}
	if v := os.Getenv("GEULSSAEM_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("GEULSSAEM_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("GEULSSAEM_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}

	// API key fallbacks, default provider first
	if cfg.APIKey == "" {
		if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}
	if cfg.APIKey == "" {
		if v := os.Getenv("GEMINI_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}
	if cfg.APIKey == "" {
		if v := os.Getenv("AZURE_OPENAI_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}
	if cfg.APIKey == "" {
		if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}
	if cfg.APIKey == "" {
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}

	// Azure base URL fallback
	if cfg.BaseURL == "" {
		if rn := os.Getenv("AZURE_RESOURCE_NAME"); rn != "" {
			switch cfg.Provider {
			case "anthropic":
				cfg.BaseURL = fmt.Sprintf("https://%s.services.ai.azure.com/anthropic/", rn)
			case "openai":
				cfg.BaseURL = fmt.Sprintf("https://%s.openai.azure.com/openai/v1", rn)
			}
		}
	}
}

// splitAndTrim splits a comma-separated list, dropping empty entries.
func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseDurationOrDisable parses a duration string. "0", "off", "disable" return 0.
// Empty string returns the fallback value.
func parseDurationOrDisable(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	if s == "0" || s == "off" || s == "disable" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// IsAzureEndpoint returns true if the URL is an Azure endpoint.
func IsAzureEndpoint(url string) bool {
	return url != "" && (strings.Contains(url, ".azure.com") || strings.Contains(url, ".azure.us"))
}
