package turso

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/promptops/experiment-hub/internal/models"
)

// Store implements store.Store on a libsql database. Provider sets and
// results maps persist as JSON TEXT columns so every update is a single
// row write.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func marshalProviders(providers []models.Provider) (string, error) {
	if providers == nil {
		providers = []models.Provider{}
	}
	data, err := json.Marshal(providers)
	if err != nil {
		return "", fmt.Errorf("failed to marshal enabled providers: %w", err)
	}
	return string(data), nil
}

func unmarshalProviders(raw string) ([]models.Provider, error) {
	if raw == "" {
		return []models.Provider{}, nil
	}
	var providers []models.Provider
	if err := json.Unmarshal([]byte(raw), &providers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal enabled providers: %w", err)
	}
	return providers, nil
}

func marshalResults(results map[models.Provider]models.ProviderResult) (string, error) {
	if results == nil {
		results = map[models.Provider]models.ProviderResult{}
	}
	data, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %w", err)
	}
	return string(data), nil
}

func unmarshalResults(raw string) (map[models.Provider]models.ProviderResult, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	var results map[models.Provider]models.ProviderResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal results: %w", err)
	}
	return results, nil
}

func parseTime(raw string) time.Time {
	t, _ := time.Parse(time.RFC3339, raw)
	return t
}
