package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/promptops/experiment-hub/internal/completion"
	"github.com/promptops/experiment-hub/internal/config"
	"github.com/promptops/experiment-hub/internal/models"
	"github.com/rs/zerolog"
)

// Completer is the slice of the completion client the judge needs.
type Completer interface {
	CompleteWith(ctx context.Context, systemPrompt, userInput string, provider models.Provider, maxTokens int, temperature float64) completion.Result
}

const evaluationPromptTemplate = `You are a strict evaluator of LLM responses. Your task is to evaluate if the LLM response matches the expected output, considering the original system prompt and user input.

System Prompt:
{{.SystemPrompt}}

User Input:
{{.UserInput}}

Expected Output:
{{.ExpectedOutput}}

LLM Response:
{{.CandidateOutput}}

Task: Evaluate if the LLM response is factually accurate compared to the expected output.
Consider:
1. Does it directly answer the task specified in the system prompt?
2. Does it match the expected output format?
3. Is the information correct when compared to the expected output?

Return only a JSON object with this format:
{
  "factuality_score": number (0-100)
}

Example:
{"factuality_score": 85}

Note: Score should be:
- 100: Perfect match with expected output
- 75: Minor differences but factually correct
- 50: Partially correct with some errors
- 25: Major errors but some correct elements
- 0: Completely incorrect or irrelevant`

type evaluatorResponse struct {
	FactualityScore float64 `json:"factuality_score"`
}

// FactualityJudge asks one fixed evaluator provider to score a candidate
// output between 0 and 100 and converts the score to a verdict. Every
// candidate is judged by the same evaluator regardless of which provider
// produced it.
type FactualityJudge struct {
	completer      Completer
	promptTemplate *template.Template
	evaluator      models.Provider
	threshold      float64
	maxTokens      int
	temperature    float64
	logger         *zerolog.Logger
}

func NewFactualityJudge(completer Completer, cfg config.EvaluatorConfig, logger *zerolog.Logger) (*FactualityJudge, error) {
	tmpl, err := template.New("factuality").Parse(evaluationPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse evaluation prompt template: %w", err)
	}

	return &FactualityJudge{
		completer:      completer,
		promptTemplate: tmpl,
		evaluator:      models.Provider(cfg.Provider),
		threshold:      cfg.Threshold,
		maxTokens:      cfg.MaxTokens,
		temperature:    cfg.Temperature,
		logger:         logger,
	}, nil
}

// Evaluate resolves to false on any failure: degraded evaluator output,
// unparseable JSON, or an out-of-range score.
func (j *FactualityJudge) Evaluate(ctx context.Context, input Input) bool {
	prompt, err := j.buildPrompt(input)
	if err != nil {
		j.logger.Error().Err(err).Msg("failed to build evaluation prompt")
		return false
	}

	result := j.completer.CompleteWith(ctx, prompt, "", j.evaluator, j.maxTokens, j.temperature)
	if result.Degraded {
		j.logger.Warn().
			Str("evaluator", string(j.evaluator)).
			Msg("evaluator returned degraded output, verdict false")
		return false
	}

	content := stripMarkdownCodeBlock(result.Output)
	var response evaluatorResponse
	if err := json.Unmarshal([]byte(content), &response); err != nil {
		j.logger.Warn().
			Err(err).
			Str("content", result.Output).
			Msg("failed to deserialize evaluator response, verdict false")
		return false
	}

	if response.FactualityScore < 0 || response.FactualityScore > 100 {
		j.logger.Warn().
			Float64("score", response.FactualityScore).
			Msg("evaluator score out of range, verdict false")
		return false
	}

	verdict := response.FactualityScore >= j.threshold

	j.logger.Debug().
		Float64("score", response.FactualityScore).
		Bool("verdict", verdict).
		Msg("judgment complete")

	return verdict
}

func (j *FactualityJudge) buildPrompt(input Input) (string, error) {
	var buf bytes.Buffer
	if err := j.promptTemplate.Execute(&buf, input); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}
	return buf.String(), nil
}

// stripMarkdownCodeBlock removes markdown code fence formatting if present.
func stripMarkdownCodeBlock(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		firstNewline := strings.Index(content, "\n")
		if firstNewline == -1 {
			return content
		}

		closingBackticks := strings.LastIndex(content, "```")
		if closingBackticks == -1 || closingBackticks <= firstNewline {
			return content
		}

		content = content[firstNewline+1 : closingBackticks]
		content = strings.TrimSpace(content)
	}

	return content
}
