package scenario

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/metrorail-ops/fleetsim-core/pkg/models"
	_ "modernc.org/sqlite"
)

// StoreKey is the fixed key under which the saved-scenario list persists.
const StoreKey = "whatif_scenarios"

const storeSchema = `
CREATE TABLE IF NOT EXISTS kv (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// Store persists user-saved scenarios as a JSON array under a single
// key-value row. Save reads the array, appends, and rewrites it wholesale;
// the store is a single-writer resource, so a process-level mutex is all
// the coordination it needs.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens (or creates) the database at the given path and applies
// the schema.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("scenario.NewStore: open %q: %w", path, err)
	}
	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("scenario.NewStore: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save appends the scenario to the persisted list and rewrites the whole
// array under StoreKey.
func (s *Store) Save(ctx context.Context, sc models.Scenario) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.loadAllLocked(ctx)
	if err != nil {
		return err
	}
	saved = append(saved, sc)

	data, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("scenario.Save: marshal: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, StoreKey, string(data)); err != nil {
		return fmt.Errorf("scenario.Save: upsert: %w", err)
	}
	return nil
}

// LoadAll returns every saved scenario, oldest first. A missing row means
// nothing has been saved yet and yields an empty slice.
func (s *Store) LoadAll(ctx context.Context) ([]models.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadAllLocked(ctx)
}

func (s *Store) loadAllLocked(ctx context.Context) ([]models.Scenario, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, StoreKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []models.Scenario{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scenario.LoadAll: query: %w", err)
	}

	var saved []models.Scenario
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		return nil, fmt.Errorf("scenario.LoadAll: unmarshal: %w", err)
	}
	return saved, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
