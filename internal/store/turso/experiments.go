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

func (s *Store) ListExperiments(ctx context.Context) ([]models.Experiment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, system_prompt, enabled_providers, created_at
		 FROM experiments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}
	defer rows.Close()

	experiments := []models.Experiment{}
	for rows.Next() {
		experiment, err := scanExperiment(rows)
		if err != nil {
			return nil, err
		}
		experiments = append(experiments, *experiment)
	}

	return experiments, rows.Err()
}

func (s *Store) GetExperiment(ctx context.Context, id int64) (*models.Experiment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, system_prompt, enabled_providers, created_at
		 FROM experiments WHERE id = ?`, id)

	experiment, err := scanExperiment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return experiment, nil
}

func (s *Store) CreateExperiment(ctx context.Context, fields models.ExperimentFields) (*models.Experiment, error) {
	providers, err := marshalProviders(fields.EnabledProviders)
	if err != nil {
		return nil, err
	}

	createdAt := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO experiments (name, system_prompt, enabled_providers, created_at)
		 VALUES (?, ?, ?, ?)`,
		fields.Name, fields.SystemPrompt, providers, createdAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to create experiment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read created experiment id: %w", err)
	}

	return s.GetExperiment(ctx, id)
}

func (s *Store) UpdateExperiment(ctx context.Context, id int64, patch models.ExperimentPatch) (*models.Experiment, error) {
	experiment, err := s.GetExperiment(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		experiment.Name = *patch.Name
	}
	if patch.SystemPrompt != nil {
		experiment.SystemPrompt = *patch.SystemPrompt
	}
	if patch.EnabledProviders != nil {
		experiment.EnabledProviders = *patch.EnabledProviders
	}

	providers, err := marshalProviders(experiment.EnabledProviders)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE experiments SET name = ?, system_prompt = ?, enabled_providers = ? WHERE id = ?`,
		experiment.Name, experiment.SystemPrompt, providers, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update experiment: %w", err)
	}

	return experiment, nil
}

// DeleteExperiment removes the experiment's test cases first; the
// experiment row is only deleted once every child is gone.
func (s *Store) DeleteExperiment(ctx context.Context, id int64) error {
	if _, err := s.GetExperiment(ctx, id); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM test_cases WHERE experiment_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete test cases for experiment %d: %w", id, err)
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM experiments WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete experiment %d: %w", id, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExperiment(row rowScanner) (*models.Experiment, error) {
	var (
		experiment   models.Experiment
		rawProviders string
		rawCreatedAt string
	)

	if err := row.Scan(&experiment.ID, &experiment.Name, &experiment.SystemPrompt, &rawProviders, &rawCreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan experiment: %w", err)
	}

	providers, err := unmarshalProviders(rawProviders)
	if err != nil {
		return nil, err
	}

	experiment.EnabledProviders = providers
	experiment.CreatedAt = parseTime(rawCreatedAt)
	return &experiment, nil
}
