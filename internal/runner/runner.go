package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/promptops/experiment-hub/internal/completion"
	"github.com/promptops/experiment-hub/internal/judge"
	"github.com/promptops/experiment-hub/internal/models"
	"github.com/rs/zerolog"
)

// CompletionClient invokes one provider for one test case input.
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userInput string, provider models.Provider) completion.Result
}

// Judge renders a verdict for one provider output.
type Judge interface {
	Evaluate(ctx context.Context, input judge.Input) bool
}

// Store is the slice of the experiment store the runner needs.
type Store interface {
	GetExperiment(ctx context.Context, id int64) (*models.Experiment, error)
	ListTestCases(ctx context.Context, experimentID *int64) ([]models.TestCase, error)
	UpdateTestCaseResults(ctx context.Context, id int64, results map[models.Provider]models.ProviderResult) error
}

// Runner drives every test case of an experiment through the completion
// client and the judge, and persists each test case's results in a single
// write.
type Runner struct {
	store      Store
	completion CompletionClient
	judge      Judge
	logger     *zerolog.Logger
}

func NewRunner(store Store, completionClient CompletionClient, j Judge, logger *zerolog.Logger) *Runner {
	return &Runner{
		store:      store,
		completion: completionClient,
		judge:      j,
		logger:     logger,
	}
}

// RunExperiment processes the experiment's test cases sequentially, fanning
// out across providers within each test case. Completion and judgment calls
// cannot fail, so the only failure surface inside the loop is the results
// write; a failed write lands the test case id in Failures and processing
// continues.
func (r *Runner) RunExperiment(ctx context.Context, experimentID int64) (models.RunReport, error) {
	report := models.RunReport{}

	experiment, err := r.store.GetExperiment(ctx, experimentID)
	if err != nil {
		return report, fmt.Errorf("failed to load experiment %d: %w", experimentID, err)
	}

	testCases, err := r.store.ListTestCases(ctx, &experimentID)
	if err != nil {
		return report, fmt.Errorf("failed to load test cases for experiment %d: %w", experimentID, err)
	}

	if len(testCases) == 0 {
		r.logger.Info().Int64("experiment_id", experimentID).Msg("no test cases, nothing to run")
		return report, nil
	}

	providers := experiment.EnabledProviders
	if len(providers) == 0 {
		// An experiment that does not restrict providers runs all of them.
		providers = models.KnownProviders()
	}

	r.logger.Info().
		Int64("experiment_id", experimentID).
		Int("test_cases", len(testCases)).
		Int("providers", len(providers)).
		Msg("starting experiment run")

	for _, testCase := range testCases {
		results := r.evaluateTestCase(ctx, experiment, testCase, providers)

		if err := r.store.UpdateTestCaseResults(ctx, testCase.ID, results); err != nil {
			r.logger.Error().
				Err(err).
				Int64("test_case_id", testCase.ID).
				Msg("failed to persist test case results")
			report.Failures = append(report.Failures, testCase.ID)
		}

		report.TestCasesProcessed++
	}

	r.logger.Info().
		Int64("experiment_id", experimentID).
		Int("processed", report.TestCasesProcessed).
		Int("failures", len(report.Failures)).
		Msg("experiment run complete")

	return report, nil
}

type providerOutput struct {
	provider models.Provider
	result   completion.Result
}

type providerVerdict struct {
	provider models.Provider
	verdict  bool
}

// evaluateTestCase fans out completions across providers, waits for all of
// them to settle, then fans out judgments over the settled outputs. All
// provider completions are requested before any judgment.
func (r *Runner) evaluateTestCase(ctx context.Context, experiment *models.Experiment, testCase models.TestCase, providers []models.Provider) map[models.Provider]models.ProviderResult {
	outputs := make(chan providerOutput, len(providers))
	var wg sync.WaitGroup

	for _, provider := range providers {
		wg.Add(1)
		go func(p models.Provider) {
			defer wg.Done()
			outputs <- providerOutput{
				provider: p,
				result:   r.completion.Complete(ctx, experiment.SystemPrompt, testCase.Input, p),
			}
		}(provider)
	}

	wg.Wait()
	close(outputs)

	completions := make(map[models.Provider]completion.Result, len(providers))
	for out := range outputs {
		completions[out.provider] = out.result
	}

	verdicts := make(chan providerVerdict, len(completions))
	for provider, result := range completions {
		wg.Add(1)
		go func(p models.Provider, output string) {
			defer wg.Done()
			verdicts <- providerVerdict{
				provider: p,
				verdict: r.judge.Evaluate(ctx, judge.Input{
					SystemPrompt:    experiment.SystemPrompt,
					UserInput:       testCase.Input,
					ExpectedOutput:  testCase.ExpectedOutput,
					CandidateOutput: output,
				}),
			}
		}(provider, result.Output)
	}

	wg.Wait()
	close(verdicts)

	results := make(map[models.Provider]models.ProviderResult, len(completions))
	for v := range verdicts {
		results[v.provider] = models.ProviderResult{
			Output:  completions[v.provider].Output,
			Verdict: v.verdict,
		}
	}

	return results
}
