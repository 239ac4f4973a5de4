package config

import (
	"os"
	"path/filepath"
	"testing"
)

// clearConfigEnv blanks every env var Load consults so tests see only
// what they set themselves.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEULSSAEM_PROVIDER", "GEULSSAEM_MODEL", "GEULSSAEM_BASE_URL", "GEULSSAEM_API_KEY",
		"GEULSSAEM_GRADE", "GEULSSAEM_SUBJECT", "GEULSSAEM_WRITING_TYPE",
		"GEULSSAEM_ATTEMPT_TIMEOUT", "GEULSSAEM_SESSION_TTL",
		"GEULSSAEM_LISTEN_ADDR", "GEULSSAEM_ALLOWED_ORIGINS", "GEULSSAEM_THEME",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_HEADERS",
		"GOOGLE_API_KEY", "GEMINI_API_KEY",
		"AZURE_OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_API_KEY",
		"AZURE_RESOURCE_NAME",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Provider != "gemini" {
		t.Errorf("Provider: got %q, want %q", cfg.Provider, "gemini")
	}
	if cfg.Grade != "3-4학년군" {
		t.Errorf("Grade: got %q, want %q", cfg.Grade, "3-4학년군")
	}
	if cfg.Subject != "국어" {
		t.Errorf("Subject: got %q, want %q", cfg.Subject, "국어")
	}
	if cfg.WritingType != "일기" {
		t.Errorf("WritingType: got %q, want %q", cfg.WritingType, "일기")
	}
	if cfg.AttemptTimeout != "60s" {
		t.Errorf("AttemptTimeout: got %q, want %q", cfg.AttemptTimeout, "60s")
	}
	if cfg.Parallel != 4 {
		t.Errorf("Parallel: got %d, want %d", cfg.Parallel, 4)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr: got %q, want %q", cfg.ListenAddr, ":8080")
	}
	if cfg.Theme != "dark" {
		t.Errorf("Theme: got %q, want %q", cfg.Theme, "dark")
	}
}

func TestIsAzureEndpoint(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://myresource.openai.azure.com/openai/v1", true},
		{"https://myresource.services.ai.azure.com/anthropic/", true},
		{"https://myresource.azure.us/foo", true},
		{"https://api.anthropic.com/", false},
		{"https://generativelanguage.googleapis.com/", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got := IsAzureEndpoint(tt.url)
			if got != tt.want {
				t.Errorf("IsAzureEndpoint(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestParseDurationOrDisable(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMs  int64
		wantErr bool
	}{
		{"empty returns fallback", "", 5000, false},
		{"zero disables", "0", 0, false},
		{"off disables", "off", 0, false},
		{"disable disables", "disable", 0, false},
		{"valid duration", "30s", 30000, false},
		{"valid short duration", "500ms", 500, false},
		{"invalid", "not-a-duration", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDurationOrDisable(tt.input, 5000*1e6) // 5s fallback in ns
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDurationOrDisable(%q): error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got.Milliseconds() != tt.wantMs {
				t.Errorf("parseDurationOrDisable(%q) = %v, want %dms", tt.input, got, tt.wantMs)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single", "http://localhost:3000", []string{"http://localhost:3000"}},
		{"multiple with spaces", "a, b ,c", []string{"a", "b", "c"}},
		{"empty entries dropped", "a,,b,", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitAndTrim(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitAndTrim(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create a temp directory with a config file
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ".geulssaem.yaml")
	content := `provider: openai
model: gpt-4o-mini
api_key: test-key-123
grade: 5-6학년군
writing_type: 독후감
attempt_timeout: "30s"
parallel: 8
session_ttl: "1h"
listen_addr: ":9090"
allowed_origins:
  - "https://tutor.example.org"
  - "http://localhost:5173"
theme: light
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	// Change to temp dir so Load() finds the config
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(dir)

	clearConfigEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Provider != "openai" {
		t.Errorf("Provider: got %q, want %q", cfg.Provider, "openai")
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("Model: got %q, want %q", cfg.Model, "gpt-4o-mini")
	}
	if cfg.APIKey != "test-key-123" {
		t.Errorf("APIKey: got %q, want %q", cfg.APIKey, "test-key-123")
	}
	if cfg.Grade != "5-6학년군" {
		t.Errorf("Grade: got %q, want %q", cfg.Grade, "5-6학년군")
	}
	// Unset file fields keep their defaults
	if cfg.Subject != "국어" {
		t.Errorf("Subject: got %q, want default 국어", cfg.Subject)
	}
	if cfg.WritingType != "독후감" {
		t.Errorf("WritingType: got %q, want %q", cfg.WritingType, "독후감")
	}
	if cfg.Parallel != 8 {
		t.Errorf("Parallel: got %d, want %d", cfg.Parallel, 8)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr: got %q, want %q", cfg.ListenAddr, ":9090")
	}
	if cfg.Theme != "light" {
		t.Errorf("Theme: got %q, want %q", cfg.Theme, "light")
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("AllowedOrigins: got %d entries, want 2", len(cfg.AllowedOrigins))
	}
	if cfg.AllowedOrigins[0] != "https://tutor.example.org" {
		t.Errorf("AllowedOrigins[0]: got %q", cfg.AllowedOrigins[0])
	}
	if cfg.AttemptTimeoutDuration.Seconds() != 30 {
		t.Errorf("AttemptTimeoutDuration: got %v, want 30s", cfg.AttemptTimeoutDuration)
	}
	if cfg.SessionTTLDuration.Minutes() != 60 {
		t.Errorf("SessionTTLDuration: got %v, want 1h", cfg.SessionTTLDuration)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	// Create a temp directory with a config file
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ".geulssaem.yaml")
	content := `provider: openai
model: gpt-4o-mini
api_key: file-key
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(dir)

	clearConfigEnv(t)

	// Env should override file
	t.Setenv("GEULSSAEM_PROVIDER", "gemini")
	t.Setenv("GEULSSAEM_MODEL", "gemini-1.5-pro-latest")
	t.Setenv("GEULSSAEM_API_KEY", "env-key")
	t.Setenv("GEULSSAEM_ALLOWED_ORIGINS", "http://localhost:3000, http://localhost:5173")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Provider != "gemini" {
		t.Errorf("Provider: got %q, want %q (env should override file)", cfg.Provider, "gemini")
	}
	if cfg.Model != "gemini-1.5-pro-latest" {
		t.Errorf("Model: got %q, want %q (env should override file)", cfg.Model, "gemini-1.5-pro-latest")
	}
	if cfg.APIKey != "env-key" {
		t.Errorf("APIKey: got %q, want %q (env should override file)", cfg.APIKey, "env-key")
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://localhost:5173" {
		t.Errorf("AllowedOrigins: got %v", cfg.AllowedOrigins)
	}
}

func TestAPIKeyFallbackOrder(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(dir)

	clearConfigEnv(t)

	// GOOGLE_API_KEY wins over the other provider keys when no explicit key is set.
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIKey != "google-key" {
		t.Errorf("APIKey: got %q, want google-key", cfg.APIKey)
	}
}
