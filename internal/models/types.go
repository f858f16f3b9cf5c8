package models

import (
	"fmt"
	"strings"
	"time"
)

// Provider identifies one of the hosted model backends an experiment can
// evaluate against.
type Provider string

const (
	ProviderMistral Provider = "mistral"
	ProviderMeta    Provider = "meta"
	ProviderGoogle  Provider = "google"
)

// KnownProviders returns the fixed provider set in a stable order.
func KnownProviders() []Provider {
	return []Provider{ProviderMistral, ProviderMeta, ProviderGoogle}
}

// IsKnownProvider reports whether p is one of the fixed provider identifiers.
func IsKnownProvider(p Provider) bool {
	switch p {
	case ProviderMistral, ProviderMeta, ProviderGoogle:
		return true
	}
	return false
}

// Experiment is a named evaluation setup: a system prompt plus the set of
// providers its test cases are run against.
type Experiment struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	SystemPrompt     string     `json:"system_prompt"`
	EnabledProviders []Provider `json:"enabled_providers"`
	CreatedAt        time.Time  `json:"created_at"`
}

// ExperimentRef is the joined subset of an experiment exposed on test case
// listings.
type ExperimentRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProviderResult is one provider's output for a test case together with the
// evaluator's verdict on it. Output and verdict are always persisted together.
type ProviderResult struct {
	Output  string `json:"output"`
	Verdict bool   `json:"verdict"`
}

type TestCase struct {
	ID             int64                       `json:"id"`
	ExperimentID   int64                       `json:"experiment_id"`
	Input          string                      `json:"input"`
	ExpectedOutput string                      `json:"expected_output"`
	Results        map[Provider]ProviderResult `json:"results,omitempty"`
	CreatedAt      time.Time                   `json:"created_at"`
	Experiment     *ExperimentRef              `json:"experiment,omitempty"`
}

// RunReport is the aggregate outcome of a single experiment run.
type RunReport struct {
	TestCasesProcessed int     `json:"test_cases_processed"`
	Failures           []int64 `json:"failures,omitempty"`
}

// ExperimentFields is the full field set accepted on experiment creation.
type ExperimentFields struct {
	Name             string     `json:"name"`
	SystemPrompt     string     `json:"system_prompt"`
	EnabledProviders []Provider `json:"enabled_providers"`
}

// ExperimentPatch is the allow-list of fields an experiment update may touch.
// A nil field is left unchanged.
type ExperimentPatch struct {
	Name             *string     `json:"name,omitempty"`
	SystemPrompt     *string     `json:"system_prompt,omitempty"`
	EnabledProviders *[]Provider `json:"enabled_providers,omitempty"`
}

// TestCaseFields is the full field set accepted on test case creation.
type TestCaseFields struct {
	ExperimentID   int64  `json:"experiment_id"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

// ResultPatch edits one provider's stored result. An output edit without an
// explicit verdict triggers re-evaluation at the API layer before anything
// is persisted.
type ResultPatch struct {
	Output  *string `json:"output,omitempty"`
	Verdict *bool   `json:"verdict,omitempty"`
}

// TestCasePatch is the allow-list of fields a test case update may touch.
type TestCasePatch struct {
	Input          *string                  `json:"input,omitempty"`
	ExpectedOutput *string                  `json:"expected_output,omitempty"`
	Results        map[Provider]ResultPatch `json:"results,omitempty"`
}

func (f ExperimentFields) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("experiment name must not be empty")
	}
	if strings.TrimSpace(f.SystemPrompt) == "" {
		return fmt.Errorf("experiment system prompt must not be empty")
	}
	return validateProviders(f.EnabledProviders)
}

func (p ExperimentPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("experiment name must not be empty")
	}
	if p.SystemPrompt != nil && strings.TrimSpace(*p.SystemPrompt) == "" {
		return fmt.Errorf("experiment system prompt must not be empty")
	}
	if p.EnabledProviders != nil {
		return validateProviders(*p.EnabledProviders)
	}
	return nil
}

func (f TestCaseFields) Validate() error {
	if f.ExperimentID == 0 {
		return fmt.Errorf("test case experiment_id is required")
	}
	if strings.TrimSpace(f.Input) == "" {
		return fmt.Errorf("test case input must not be empty")
	}
	if strings.TrimSpace(f.ExpectedOutput) == "" {
		return fmt.Errorf("test case expected output must not be empty")
	}
	return nil
}

func (p TestCasePatch) Validate() error {
	if p.Input != nil && strings.TrimSpace(*p.Input) == "" {
		return fmt.Errorf("test case input must not be empty")
	}
	if p.ExpectedOutput != nil && strings.TrimSpace(*p.ExpectedOutput) == "" {
		return fmt.Errorf("test case expected output must not be empty")
	}
	for provider := range p.Results {
		if !IsKnownProvider(provider) {
			return fmt.Errorf("unknown provider %q in results patch", provider)
		}
	}
	return nil
}

func validateProviders(providers []Provider) error {
	for _, p := range providers {
		if !IsKnownProvider(p) {
			return fmt.Errorf("unknown provider %q", p)
		}
	}
	return nil
}
