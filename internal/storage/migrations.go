package storage

import "fmt"

// migrate creates the schema if it doesn't exist.
func (db *DB) migrate() error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	db.logger.Debug("database migrations applied")
	return nil
}

var migrations = []string{
	// Stops (stations and their directional platforms)
	`CREATE TABLE IF NOT EXISTS stops (
		stop_id        TEXT PRIMARY KEY,
		stop_name      TEXT NOT NULL,
		stop_lat       REAL,
		stop_lon       REAL,
		location_type  INTEGER DEFAULT 0,
		parent_station TEXT
	)`,

	// Feed metadata (last_modified, etag, imported_at, etc.)
	`CREATE TABLE IF NOT EXISTS feed_metadata (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_stops_parent ON stops(parent_station)`,
}
