package config

import (
	"fmt"
	"os"

	"github.com/promptops/experiment-hub/internal/models"
	"gopkg.in/yaml.v3"
)

// DefaultProvidersConfig returns the built-in provider/model mapping used
// when no config file is present.
func DefaultProvidersConfig() *ProvidersConfig {
	cfg := &ProvidersConfig{
		Providers: map[string]ProviderConfig{
			string(models.ProviderMistral): {Model: "mixtral-8x7b-32768"},
			string(models.ProviderMeta):    {Model: "llama-3.1-8b-instant"},
			string(models.ProviderGoogle):  {Model: "gemma2-9b-it"},
		},
	}
	applyDefaults(cfg)
	return cfg
}

// LoadProvidersConfig reads the providers config from
// PROVIDERS_CONFIG_PATH (default configs/providers.yaml). A missing file
// falls back to the built-in defaults; a malformed file is an error.
func LoadProvidersConfig() (*ProvidersConfig, error) {

	path := os.Getenv("PROVIDERS_CONFIG_PATH")
	if path == "" {
		path = "configs/providers.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultProvidersConfig(), nil
		}
		return nil, err
	}

	var cfg ProvidersConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *ProvidersConfig) {
	if cfg.Completion.Temperature == 0 {
		cfg.Completion.Temperature = 0.7
	}
	if cfg.Completion.TimeoutSeconds == 0 {
		cfg.Completion.TimeoutSeconds = 60
	}
	if cfg.Evaluator.Provider == "" {
		cfg.Evaluator.Provider = string(models.ProviderMistral)
	}
	if cfg.Evaluator.Threshold == 0 {
		cfg.Evaluator.Threshold = 50
	}
	if cfg.Evaluator.MaxTokens == 0 {
		cfg.Evaluator.MaxTokens = 256
	}
}

func (c *ProvidersConfig) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("providers config has no providers")
	}

	for id, provider := range c.Providers {
		if !models.IsKnownProvider(models.Provider(id)) {
			return fmt.Errorf("unknown provider %q in providers config", id)
		}
		if provider.Model == "" {
			return fmt.Errorf("provider %q has no model configured", id)
		}
	}

	if _, ok := c.Providers[c.Evaluator.Provider]; !ok {
		return fmt.Errorf("evaluator provider %q is not a configured provider", c.Evaluator.Provider)
	}

	if c.Evaluator.Threshold < 0 || c.Evaluator.Threshold > 100 {
		return fmt.Errorf("evaluator threshold %f out of range [0, 100]", c.Evaluator.Threshold)
	}

	return nil
}

// ModelFor resolves a provider identifier to its backing model name.
func (c *ProvidersConfig) ModelFor(provider models.Provider) (string, bool) {
	p, ok := c.Providers[string(provider)]
	if !ok {
		return "", false
	}
	return p.Model, true
}
