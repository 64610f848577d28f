package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetMetadata retrieves a value from the feed_metadata table.
func (db *DB) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM feed_metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetMetadata stores a key-value pair in the feed_metadata table.
func (db *DB) SetMetadata(ctx context.Context, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO feed_metadata (key, value) VALUES (?, ?)`,
		key, value)
	return err
}

// HasData returns true if static stops have been imported.
func (db *DB) HasData(ctx context.Context) bool {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stops`).Scan(&count)
	return err == nil && count > 0
}

// StopName returns the name of a stop, or "" when the stop is unknown.
func (db *DB) StopName(ctx context.Context, stopID string) (string, error) {
	var name string
	err := db.QueryRowContext(ctx, `SELECT stop_name FROM stops WHERE stop_id = ?`, stopID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("stop name %s: %w", stopID, err)
	}
	return name, nil
}

// PlatformIDs returns the child stop ids of a station, sorted.
func (db *DB) PlatformIDs(ctx context.Context, stationID string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT stop_id FROM stops WHERE parent_station = ? ORDER BY stop_id`, stationID)
	if err != nil {
		return nil, fmt.Errorf("platforms for %s: %w", stationID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
