package store

import (
	"context"
	"errors"

	"github.com/promptops/experiment-hub/internal/models"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// Store is filtered CRUD access to the experiments and test_cases
// collections. Every operation is a point operation that can fail
// independently; callers must not assume cross-operation atomicity.
type Store interface {
	ListExperiments(ctx context.Context) ([]models.Experiment, error)
	GetExperiment(ctx context.Context, id int64) (*models.Experiment, error)
	CreateExperiment(ctx context.Context, fields models.ExperimentFields) (*models.Experiment, error)
	UpdateExperiment(ctx context.Context, id int64, patch models.ExperimentPatch) (*models.Experiment, error)
	// DeleteExperiment deletes the experiment's test cases first and the
	// experiment only after every child is gone. A failed child delete
	// aborts the whole operation.
	DeleteExperiment(ctx context.Context, id int64) error

	// ListTestCases returns all test cases, joined with the owning
	// experiment's id and name. A non-nil experimentID restricts the
	// listing to one experiment.
	ListTestCases(ctx context.Context, experimentID *int64) ([]models.TestCase, error)
	GetTestCase(ctx context.Context, id int64) (*models.TestCase, error)
	CreateTestCase(ctx context.Context, fields models.TestCaseFields) (*models.TestCase, error)
	UpdateTestCase(ctx context.Context, id int64, patch models.TestCasePatch) (*models.TestCase, error)
	// UpdateTestCaseResults merges the given per-provider entries into
	// the stored results map in one write. Providers absent from the
	// argument are left untouched. This is the orchestrator's
	// persistence point; a reader never observes a half-updated results
	// map for a test case.
	UpdateTestCaseResults(ctx context.Context, id int64, results map[models.Provider]models.ProviderResult) error
	DeleteTestCase(ctx context.Context, id int64) error
}
