package turso

import (
	"database/sql"
	"fmt"

	_ "github.com/tursodatabase/go-libsql"
)

// NewDB opens the hosted libsql database. Both the URL and the auth token
// are required; their absence is a startup error, not a retryable
// condition.
func NewDB(databaseURL, authToken string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}
	if authToken == "" {
		return nil, fmt.Errorf("database auth token is required")
	}

	connStr := fmt.Sprintf("%s?authToken=%s", databaseURL, authToken)
	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
