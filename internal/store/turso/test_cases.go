package turso

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/promptops/experiment-hub/internal/models"
	"github.com/promptops/experiment-hub/internal/store"
)

const testCaseColumns = `t.id, t.experiment_id, t.input, t.expected_output, t.results, t.created_at, e.id, e.name`

func (s *Store) ListTestCases(ctx context.Context, experimentID *int64) ([]models.TestCase, error) {
	query := `SELECT ` + testCaseColumns + `
		 FROM test_cases t
		 JOIN experiments e ON e.id = t.experiment_id`
	args := []any{}
	if experimentID != nil {
		query += ` WHERE t.experiment_id = ?`
		args = append(args, *experimentID)
	}
	query += ` ORDER BY t.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list test cases: %w", err)
	}
	defer rows.Close()

	testCases := []models.TestCase{}
	for rows.Next() {
		testCase, err := scanTestCase(rows)
		if err != nil {
			return nil, err
		}
		testCases = append(testCases, *testCase)
	}

	return testCases, rows.Err()
}

func (s *Store) GetTestCase(ctx context.Context, id int64) (*models.TestCase, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+testCaseColumns+`
		 FROM test_cases t
		 JOIN experiments e ON e.id = t.experiment_id
		 WHERE t.id = ?`, id)

	testCase, err := scanTestCase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return testCase, nil
}

func (s *Store) CreateTestCase(ctx context.Context, fields models.TestCaseFields) (*models.TestCase, error) {
	if _, err := s.GetExperiment(ctx, fields.ExperimentID); err != nil {
		return nil, err
	}

	createdAt := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO test_cases (experiment_id, input, expected_output, results, created_at)
		 VALUES (?, ?, ?, '{}', ?)`,
		fields.ExperimentID, fields.Input, fields.ExpectedOutput, createdAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to create test case: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read created test case id: %w", err)
	}

	return s.GetTestCase(ctx, id)
}

// UpdateTestCase applies an allow-listed patch. Result edits merge per
// provider into the stored results map; the whole row updates in one write.
func (s *Store) UpdateTestCase(ctx context.Context, id int64, patch models.TestCasePatch) (*models.TestCase, error) {
	testCase, err := s.GetTestCase(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Input != nil {
		testCase.Input = *patch.Input
	}
	if patch.ExpectedOutput != nil {
		testCase.ExpectedOutput = *patch.ExpectedOutput
	}
	if len(patch.Results) > 0 {
		if testCase.Results == nil {
			testCase.Results = map[models.Provider]models.ProviderResult{}
		}
		for provider, resultPatch := range patch.Results {
			entry := testCase.Results[provider]
			if resultPatch.Output != nil {
				entry.Output = *resultPatch.Output
			}
			if resultPatch.Verdict != nil {
				entry.Verdict = *resultPatch.Verdict
			}
			testCase.Results[provider] = entry
		}
	}

	results, err := marshalResults(testCase.Results)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE test_cases SET input = ?, expected_output = ?, results = ? WHERE id = ?`,
		testCase.Input, testCase.ExpectedOutput, results, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update test case: %w", err)
	}

	return testCase, nil
}

// UpdateTestCaseResults merges the given per-provider entries into the
// stored results map. Providers absent from the argument keep whatever
// was persisted before, so a run gated to a provider subset never erases
// other providers' results. The merged map lands in one row write.
func (s *Store) UpdateTestCaseResults(ctx context.Context, id int64, results map[models.Provider]models.ProviderResult) error {
	testCase, err := s.GetTestCase(ctx, id)
	if err != nil {
		return err
	}

	merged := testCase.Results
	if merged == nil {
		merged = map[models.Provider]models.ProviderResult{}
	}
	for provider, result := range results {
		merged[provider] = result
	}

	raw, err := marshalResults(merged)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE test_cases SET results = ? WHERE id = ?`, raw, id); err != nil {
		return fmt.Errorf("failed to update test case results: %w", err)
	}

	return nil
}

func (s *Store) DeleteTestCase(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM test_cases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete test case: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	return nil
}

func scanTestCase(row rowScanner) (*models.TestCase, error) {
	var (
		testCase     models.TestCase
		rawResults   string
		rawCreatedAt string
		ref          models.ExperimentRef
	)

	if err := row.Scan(&testCase.ID, &testCase.ExperimentID, &testCase.Input, &testCase.ExpectedOutput,
		&rawResults, &rawCreatedAt, &ref.ID, &ref.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan test case: %w", err)
	}

	results, err := unmarshalResults(rawResults)
	if err != nil {
		return nil, err
	}

	testCase.Results = results
	testCase.CreatedAt = parseTime(rawCreatedAt)
	testCase.Experiment = &ref
	return &testCase, nil
}
