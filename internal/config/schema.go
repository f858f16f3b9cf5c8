package config

// ProvidersConfig maps the fixed provider identifiers onto backing model
// names and configures the evaluator used for judgment calls.
type ProvidersConfig struct {
	Providers  map[string]ProviderConfig `yaml:"providers"`
	Completion CompletionConfig          `yaml:"completion"`
	Evaluator  EvaluatorConfig           `yaml:"evaluator"`
}

// ProviderConfig holds the backing model for one provider identifier.
type ProviderConfig struct {
	Model string `yaml:"model"`
}

// CompletionConfig holds the sampling parameters applied to every
// experiment completion call.
type CompletionConfig struct {
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// EvaluatorConfig designates the single provider used for every judgment
// call, regardless of which provider produced the candidate output.
type EvaluatorConfig struct {
	Provider    string  `yaml:"provider"`
	Threshold   float64 `yaml:"threshold"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}
