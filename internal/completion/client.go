package completion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/promptops/experiment-hub/internal/config"
	"github.com/promptops/experiment-hub/internal/llm"
	"github.com/promptops/experiment-hub/internal/models"
	"github.com/rs/zerolog"
)

// Result is the outcome of one provider invocation. Degraded marks outputs
// that look like failures (synthesized error strings, empty or
// error-flavored text) so a provider outage shows up as a visible row
// instead of sinking the run.
type Result struct {
	Output   string
	Degraded bool
}

// Client invokes a provider's backing model with an experiment's system
// prompt and a test case input. Complete never returns an error: every
// failure is folded into a degraded Result.
type Client struct {
	invoker     llm.ModelClient
	cfg         *config.ProvidersConfig
	timeout     time.Duration
	temperature float64
	logger      *zerolog.Logger
}

func NewClient(invoker llm.ModelClient, cfg *config.ProvidersConfig, logger *zerolog.Logger) *Client {
	return &Client{
		invoker:     invoker,
		cfg:         cfg,
		timeout:     time.Duration(cfg.Completion.TimeoutSeconds) * time.Second,
		temperature: cfg.Completion.Temperature,
		logger:      logger,
	}
}

// Complete issues a single chat completion for the given provider.
func (c *Client) Complete(ctx context.Context, systemPrompt, userInput string, provider models.Provider) Result {
	model, ok := c.cfg.ModelFor(provider)
	if !ok {
		return errorResult(fmt.Errorf("no model configured for provider %q", provider))
	}

	return c.invoke(ctx, llm.ModelRequest{
		Model:        model,
		SystemPrompt: systemPrompt,
		UserInput:    userInput,
		Temperature:  c.temperature,
	}, provider)
}

// CompleteWith issues a completion with explicit sampling parameters. The
// judge uses this to run the evaluator model deterministically.
func (c *Client) CompleteWith(ctx context.Context, systemPrompt, userInput string, provider models.Provider, maxTokens int, temperature float64) Result {
	model, ok := c.cfg.ModelFor(provider)
	if !ok {
		return errorResult(fmt.Errorf("no model configured for provider %q", provider))
	}

	return c.invoke(ctx, llm.ModelRequest{
		Model:        model,
		SystemPrompt: systemPrompt,
		UserInput:    userInput,
		MaxTokens:    maxTokens,
		Temperature:  temperature,
	}, provider)
}

func (c *Client) invoke(ctx context.Context, request llm.ModelRequest, provider models.Provider) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.invoker.InvokeModel(ctx, request)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("provider", string(provider)).
			Str("model", request.Model).
			Msg("completion call failed, returning degraded result")
		return errorResult(err)
	}

	return Result{
		Output:   resp.Content,
		Degraded: isDegraded(resp.Content),
	}
}

func errorResult(err error) Result {
	return Result{
		Output:   fmt.Sprintf("Error: %v", err),
		Degraded: true,
	}
}

// isDegraded is a coarse low-confidence heuristic: empty outputs and
// outputs that read like refusals or error messages.
func isDegraded(output string) bool {
	if len(output) == 0 {
		return true
	}
	lowered := strings.ToLower(output)
	return strings.Contains(lowered, "error") || strings.Contains(lowered, "unable to")
}
