// Package configstore persists the selected route in a single-row SQLite
// table. SQLite gives the config API and the poll loop safe shared access to
// the one durable setting without hand-rolled file locking.
package configstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"headsign.transitboard.org/internal/models"
)

const defaultRouteID = "Red"

const schema = `
CREATE TABLE IF NOT EXISTS route_config (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    route_id TEXT NOT NULL
);
`

// Store holds the route selection database handle.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the route config database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open config db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create config schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the current route selection, seeding the default route on
// first use so a fresh install starts displaying something.
func (s *Store) Load(ctx context.Context) (models.RouteConfig, error) {
	var cfg models.RouteConfig
	row := s.db.QueryRowContext(ctx, `SELECT route_id FROM route_config WHERE id = 1`)
	err := row.Scan(&cfg.RouteID)
	if errors.Is(err, sql.ErrNoRows) {
		cfg = models.RouteConfig{RouteID: defaultRouteID}
		if err := s.Save(ctx, cfg); err != nil {
			return models.RouteConfig{}, err
		}
		return cfg, nil
	}
	if err != nil {
		return models.RouteConfig{}, fmt.Errorf("load route config: %w", err)
	}
	return cfg, nil
}

// Save validates and persists the route selection.
func (s *Store) Save(ctx context.Context, cfg models.RouteConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO route_config (id, route_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET route_id = excluded.route_id`,
		cfg.RouteID)
	if err != nil {
		return fmt.Errorf("save route config: %w", err)
	}
	return nil
}
