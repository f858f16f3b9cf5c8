package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "providers.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadProvidersConfig_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
providers:
  mistral:
    model: mixtral-8x7b-32768
  meta:
    model: llama-3.1-8b-instant
completion:
  temperature: 0.2
  timeout_seconds: 30
evaluator:
  provider: meta
  threshold: 70
  max_tokens: 128
`)
	t.Setenv("PROVIDERS_CONFIG_PATH", path)

	cfg, err := LoadProvidersConfig()
	if err != nil {
		t.Fatalf("LoadProvidersConfig failed: %v", err)
	}

	if model, ok := cfg.ModelFor("mistral"); !ok || model != "mixtral-8x7b-32768" {
		t.Errorf("Expected mistral model mixtral-8x7b-32768, got %q (ok=%v)", model, ok)
	}
	if cfg.Completion.Temperature != 0.2 {
		t.Errorf("Expected temperature 0.2, got %f", cfg.Completion.Temperature)
	}
	if cfg.Completion.TimeoutSeconds != 30 {
		t.Errorf("Expected timeout 30s, got %d", cfg.Completion.TimeoutSeconds)
	}
	if cfg.Evaluator.Provider != "meta" || cfg.Evaluator.Threshold != 70 {
		t.Errorf("Unexpected evaluator config: %+v", cfg.Evaluator)
	}
}

func TestLoadProvidersConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PROVIDERS_CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	cfg, err := LoadProvidersConfig()
	if err != nil {
		t.Fatalf("LoadProvidersConfig failed: %v", err)
	}

	if len(cfg.Providers) != 3 {
		t.Errorf("Expected 3 default providers, got %d", len(cfg.Providers))
	}
	if cfg.Completion.Temperature != 0.7 {
		t.Errorf("Expected default temperature 0.7, got %f", cfg.Completion.Temperature)
	}
	if cfg.Evaluator.Provider != "mistral" {
		t.Errorf("Expected default evaluator mistral, got %q", cfg.Evaluator.Provider)
	}
	if cfg.Evaluator.Threshold != 50 {
		t.Errorf("Expected default threshold 50, got %f", cfg.Evaluator.Threshold)
	}
}

func TestLoadProvidersConfig_DefaultsFillPartialFile(t *testing.T) {
	path := writeConfigFile(t, `
providers:
  google:
    model: gemma2-9b-it
evaluator:
  provider: google
`)
	t.Setenv("PROVIDERS_CONFIG_PATH", path)

	cfg, err := LoadProvidersConfig()
	if err != nil {
		t.Fatalf("LoadProvidersConfig failed: %v", err)
	}

	if cfg.Completion.Temperature != 0.7 {
		t.Errorf("Expected default temperature 0.7, got %f", cfg.Completion.Temperature)
	}
	if cfg.Evaluator.Threshold != 50 {
		t.Errorf("Expected default threshold 50, got %f", cfg.Evaluator.Threshold)
	}
	if cfg.Evaluator.MaxTokens != 256 {
		t.Errorf("Expected default max tokens 256, got %d", cfg.Evaluator.MaxTokens)
	}
}

func TestLoadProvidersConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			"unknown provider",
			"providers:\n  openai:\n    model: gpt-4o\n",
		},
		{
			"missing model",
			"providers:\n  mistral:\n    model: \"\"\n",
		},
		{
			"evaluator not configured",
			"providers:\n  meta:\n    model: llama-3.1-8b-instant\nevaluator:\n  provider: mistral\n",
		},
		{
			"threshold out of range",
			"providers:\n  mistral:\n    model: m\nevaluator:\n  provider: mistral\n  threshold: 150\n",
		},
		{
			"malformed yaml",
			"providers: [not a map\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PROVIDERS_CONFIG_PATH", writeConfigFile(t, tt.content))

			if _, err := LoadProvidersConfig(); err == nil {
				t.Error("Expected an error, got nil")
			}
		})
	}
}
