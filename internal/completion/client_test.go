package completion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/promptops/experiment-hub/internal/config"
	"github.com/promptops/experiment-hub/internal/llm"
	"github.com/promptops/experiment-hub/internal/models"
	"github.com/rs/zerolog"
)

type fakeModelClient struct {
	response *llm.ModelResponse
	err      error
	requests []llm.ModelRequest
}

func (f *fakeModelClient) InvokeModel(ctx context.Context, request llm.ModelRequest) (*llm.ModelResponse, error) {
	f.requests = append(f.requests, request)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func newTestClient(invoker llm.ModelClient) *Client {
	logger := zerolog.Nop()
	return NewClient(invoker, config.DefaultProvidersConfig(), &logger)
}

func TestComplete_Success(t *testing.T) {
	fake := &fakeModelClient{response: &llm.ModelResponse{Content: "Paris"}}
	client := newTestClient(fake)

	result := client.Complete(context.Background(), "Answer briefly.", "Capital of France?", models.ProviderMistral)

	if result.Output != "Paris" {
		t.Errorf("Expected output 'Paris', got %q", result.Output)
	}
	if result.Degraded {
		t.Error("Expected non-degraded result")
	}

	if len(fake.requests) != 1 {
		t.Fatalf("Expected 1 model call, got %d", len(fake.requests))
	}
	request := fake.requests[0]
	if request.Model != "mixtral-8x7b-32768" {
		t.Errorf("Expected mistral's backing model, got %q", request.Model)
	}
	if request.Temperature != 0.7 {
		t.Errorf("Expected temperature 0.7, got %f", request.Temperature)
	}
	if request.SystemPrompt != "Answer briefly." || request.UserInput != "Capital of France?" {
		t.Errorf("Unexpected request: %+v", request)
	}
}

// Complete never propagates a transport failure: it resolves to a degraded
// result whose output is a synthesized error string.
func TestComplete_TransportFailureNeverPropagates(t *testing.T) {
	fake := &fakeModelClient{err: errors.New("connection refused")}
	client := newTestClient(fake)

	result := client.Complete(context.Background(), "sp", "input", models.ProviderMeta)

	if !result.Degraded {
		t.Error("Expected degraded result on transport failure")
	}
	if !strings.HasPrefix(result.Output, "Error: ") {
		t.Errorf("Expected synthesized error output, got %q", result.Output)
	}
}

func TestComplete_UnknownProviderDegraded(t *testing.T) {
	fake := &fakeModelClient{response: &llm.ModelResponse{Content: "x"}}
	client := newTestClient(fake)

	result := client.Complete(context.Background(), "sp", "input", models.Provider("openai"))

	if !result.Degraded {
		t.Error("Expected degraded result for unknown provider")
	}
	if len(fake.requests) != 0 {
		t.Errorf("Expected no model calls, got %d", len(fake.requests))
	}
}

func TestComplete_DegradedHeuristic(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		degraded bool
	}{
		{"plain answer", "The answer is 4.", false},
		{"empty output", "", true},
		{"error text", "An ERROR occurred while processing", true},
		{"refusal text", "I am unable to answer that", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeModelClient{response: &llm.ModelResponse{Content: tt.output}}
			client := newTestClient(fake)

			result := client.Complete(context.Background(), "sp", "input", models.ProviderGoogle)
			if result.Degraded != tt.degraded {
				t.Errorf("Expected degraded=%v for %q, got %v", tt.degraded, tt.output, result.Degraded)
			}
			if result.Output != tt.output {
				t.Errorf("Expected output preserved, got %q", result.Output)
			}
		})
	}
}

func TestCompleteWith_OverridesSampling(t *testing.T) {
	fake := &fakeModelClient{response: &llm.ModelResponse{Content: "{}"}}
	client := newTestClient(fake)

	client.CompleteWith(context.Background(), "prompt", "", models.ProviderMistral, 256, 0.0)

	if len(fake.requests) != 1 {
		t.Fatalf("Expected 1 model call, got %d", len(fake.requests))
	}
	request := fake.requests[0]
	if request.MaxTokens != 256 {
		t.Errorf("Expected max tokens 256, got %d", request.MaxTokens)
	}
	if request.Temperature != 0.0 {
		t.Errorf("Expected temperature 0.0, got %f", request.Temperature)
	}
}
