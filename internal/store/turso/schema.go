package turso

import (
	"context"
	"database/sql"
	"fmt"
)

// The driver prepares one statement per Exec call, so each DDL statement
// runs on its own.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS experiments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	system_prompt TEXT NOT NULL,
	enabled_providers TEXT NOT NULL DEFAULT '[]',
	created_at TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS test_cases (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	experiment_id INTEGER NOT NULL,
	input TEXT NOT NULL,
	expected_output TEXT NOT NULL,
	results TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_test_cases_experiment_id ON test_cases(experiment_id)`,
}

// EnsureSchema creates the experiments and test_cases tables if missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
