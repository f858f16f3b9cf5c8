package judge

import (
	"context"
	"strings"
	"testing"

	"github.com/promptops/experiment-hub/internal/completion"
	"github.com/promptops/experiment-hub/internal/config"
	"github.com/promptops/experiment-hub/internal/models"
	"github.com/rs/zerolog"
)

type fakeCompleter struct {
	result    completion.Result
	calls     int
	prompts   []string
	providers []models.Provider
}

func (f *fakeCompleter) CompleteWith(ctx context.Context, systemPrompt, userInput string, provider models.Provider, maxTokens int, temperature float64) completion.Result {
	f.calls++
	f.prompts = append(f.prompts, systemPrompt)
	f.providers = append(f.providers, provider)
	return f.result
}

func evaluatorConfig() config.EvaluatorConfig {
	return config.EvaluatorConfig{
		Provider:    string(models.ProviderMistral),
		Threshold:   50,
		MaxTokens:   256,
		Temperature: 0.0,
	}
}

func newTestJudge(t *testing.T, completer Completer) *FactualityJudge {
	t.Helper()
	logger := zerolog.Nop()
	j, err := NewFactualityJudge(completer, evaluatorConfig(), &logger)
	if err != nil {
		t.Fatalf("NewFactualityJudge failed: %v", err)
	}
	return j
}

func testInput() Input {
	return Input{
		SystemPrompt:    "Answer the question.",
		UserInput:       "2+2?",
		ExpectedOutput:  "4",
		CandidateOutput: "4",
	}
}

func TestEvaluate_ScoreAboveThreshold(t *testing.T) {
	completer := &fakeCompleter{result: completion.Result{Output: `{"factuality_score": 85}`}}
	j := newTestJudge(t, completer)

	if !j.Evaluate(context.Background(), testInput()) {
		t.Error("Expected true verdict for score 85")
	}

	if completer.calls != 1 {
		t.Errorf("Expected 1 evaluator call, got %d", completer.calls)
	}
	if completer.providers[0] != models.ProviderMistral {
		t.Errorf("Expected fixed evaluator provider, got %s", completer.providers[0])
	}
}

func TestEvaluate_ScoreAtThreshold(t *testing.T) {
	completer := &fakeCompleter{result: completion.Result{Output: `{"factuality_score": 50}`}}
	j := newTestJudge(t, completer)

	if !j.Evaluate(context.Background(), testInput()) {
		t.Error("Expected true verdict for score 50")
	}
}

func TestEvaluate_ScoreBelowThreshold(t *testing.T) {
	completer := &fakeCompleter{result: completion.Result{Output: `{"factuality_score": 25}`}}
	j := newTestJudge(t, completer)

	if j.Evaluate(context.Background(), testInput()) {
		t.Error("Expected false verdict for score 25")
	}
}

func TestEvaluate_MarkdownFencedResponse(t *testing.T) {
	completer := &fakeCompleter{result: completion.Result{
		Output: "```json\n{\"factuality_score\": 90}\n```",
	}}
	j := newTestJudge(t, completer)

	if !j.Evaluate(context.Background(), testInput()) {
		t.Error("Expected true verdict for fenced JSON")
	}
}

// Any failure resolves to false, never to an error.
func TestEvaluate_DefaultsClosedOnFailure(t *testing.T) {
	tests := []struct {
		name   string
		result completion.Result
	}{
		{"degraded completion", completion.Result{Output: "Error: connection refused", Degraded: true}},
		{"unparseable body", completion.Result{Output: "I think it looks correct."}},
		// A bare-keyword reply from the evaluator must not be read as a
		// pass; only the scored-JSON shape counts.
		{"bare keyword reply", completion.Result{Output: "Not Factual"}},
		{"keyword pass reply", completion.Result{Output: "Factual"}},
		{"empty body", completion.Result{Output: "", Degraded: true}},
		{"score above range", completion.Result{Output: `{"factuality_score": 150}`}},
		{"score below range", completion.Result{Output: `{"factuality_score": -5}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{result: tt.result}
			j := newTestJudge(t, completer)

			if j.Evaluate(context.Background(), testInput()) {
				t.Errorf("Expected false verdict for %q", tt.result.Output)
			}
		})
	}
}

func TestEvaluate_PromptEmbedsAllInputs(t *testing.T) {
	completer := &fakeCompleter{result: completion.Result{Output: `{"factuality_score": 100}`}}
	j := newTestJudge(t, completer)

	input := Input{
		SystemPrompt:    "Translate to French.",
		UserInput:       "hello",
		ExpectedOutput:  "bonjour",
		CandidateOutput: "salut",
	}
	j.Evaluate(context.Background(), input)

	prompt := completer.prompts[0]
	for _, want := range []string{"Translate to French.", "hello", "bonjour", "salut"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected evaluation prompt to contain %q", want)
		}
	}
}
