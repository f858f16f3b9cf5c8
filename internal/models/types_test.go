package models

import "testing"

func TestExperimentFieldsValidate(t *testing.T) {
	tests := []struct {
		name    string
		fields  ExperimentFields
		wantErr bool
	}{
		{"valid", ExperimentFields{Name: "E", SystemPrompt: "sp"}, false},
		{"valid with providers", ExperimentFields{
			Name: "E", SystemPrompt: "sp",
			EnabledProviders: []Provider{ProviderMistral, ProviderGoogle},
		}, false},
		{"blank name", ExperimentFields{Name: "  ", SystemPrompt: "sp"}, true},
		{"blank system prompt", ExperimentFields{Name: "E", SystemPrompt: ""}, true},
		{"unknown provider", ExperimentFields{
			Name: "E", SystemPrompt: "sp",
			EnabledProviders: []Provider{"anthropic"},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fields.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTestCasePatchValidate(t *testing.T) {
	empty := ""
	output := "4"

	tests := []struct {
		name    string
		patch   TestCasePatch
		wantErr bool
	}{
		{"empty patch", TestCasePatch{}, false},
		{"result for known provider", TestCasePatch{
			Results: map[Provider]ResultPatch{ProviderMeta: {Output: &output}},
		}, false},
		{"blank input", TestCasePatch{Input: &empty}, true},
		{"blank expected output", TestCasePatch{ExpectedOutput: &empty}, true},
		{"unknown provider in results", TestCasePatch{
			Results: map[Provider]ResultPatch{"openai": {Output: &output}},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsKnownProvider(t *testing.T) {
	for _, p := range KnownProviders() {
		if !IsKnownProvider(p) {
			t.Errorf("Expected %q to be known", p)
		}
	}
	if IsKnownProvider("openai") {
		t.Error("Expected openai to be unknown")
	}
}
