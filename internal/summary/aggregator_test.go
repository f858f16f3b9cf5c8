package summary

import (
	"testing"

	"github.com/promptops/experiment-hub/internal/models"
	"github.com/rs/zerolog"
)

func TestAggregate(t *testing.T) {
	logger := zerolog.Nop()
	aggregator := NewAggregator(&logger)

	testCases := []models.TestCase{
		{
			ID: 1,
			Results: map[models.Provider]models.ProviderResult{
				models.ProviderMistral: {Output: "4", Verdict: true},
				models.ProviderMeta:    {Output: "five", Verdict: false},
			},
		},
		{
			ID: 2,
			Results: map[models.Provider]models.ProviderResult{
				models.ProviderMistral: {Output: "Paris", Verdict: true},
				models.ProviderGoogle:  {Output: "Error: timeout", Verdict: false},
			},
		},
		{ID: 3}, // never run
	}

	result := aggregator.Aggregate(testCases)

	if result.TestCases != 3 {
		t.Errorf("Expected 3 test cases, got %d", result.TestCases)
	}
	if len(result.Providers) != 3 {
		t.Errorf("Expected 3 providers, got %d", len(result.Providers))
	}

	if stats := result.Providers[models.ProviderMistral]; stats.Passed != 2 || stats.Failed != 0 {
		t.Errorf("Unexpected mistral stats: %+v", stats)
	}
	if stats := result.Providers[models.ProviderMeta]; stats.Passed != 0 || stats.Failed != 1 {
		t.Errorf("Unexpected meta stats: %+v", stats)
	}
	if stats := result.Providers[models.ProviderGoogle]; stats.Passed != 0 || stats.Failed != 1 {
		t.Errorf("Unexpected google stats: %+v", stats)
	}
}

func TestAggregate_Empty(t *testing.T) {
	logger := zerolog.Nop()
	aggregator := NewAggregator(&logger)

	result := aggregator.Aggregate(nil)

	if result.TestCases != 0 {
		t.Errorf("Expected 0 test cases, got %d", result.TestCases)
	}
	if len(result.Providers) != 0 {
		t.Errorf("Expected no provider stats, got %+v", result.Providers)
	}
}
