package summary

import (
	"github.com/promptops/experiment-hub/internal/models"
	"github.com/rs/zerolog"
)

// ProviderStats counts verdicts for one provider across test cases.
type ProviderStats struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// RunSummary is the per-provider pass/fail rollup shown after a run.
type RunSummary struct {
	TestCases int                               `json:"test_cases"`
	Providers map[models.Provider]ProviderStats `json:"providers"`
}

type Aggregator struct {
	logger *zerolog.Logger
}

func NewAggregator(logger *zerolog.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate rolls persisted results up into pass/fail counts per provider.
// Test cases that have never been run contribute nothing.
func (a *Aggregator) Aggregate(testCases []models.TestCase) RunSummary {
	result := RunSummary{
		TestCases: len(testCases),
		Providers: map[models.Provider]ProviderStats{},
	}

	for _, testCase := range testCases {
		for provider, providerResult := range testCase.Results {
			stats := result.Providers[provider]
			if providerResult.Verdict {
				stats.Passed++
			} else {
				stats.Failed++
			}
			result.Providers[provider] = stats
		}
	}

	a.logger.Debug().
		Int("test_cases", result.TestCases).
		Int("providers", len(result.Providers)).
		Msg("aggregation complete")

	return result
}
