package gtfs

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"subwayboard/internal/storage"
)

// Importer loads parsed GTFS data into SQLite.
type Importer struct {
	db     *storage.DB
	logger *slog.Logger
}

// NewImporter creates an Importer.
func NewImporter(db *storage.DB, logger *slog.Logger) *Importer {
	return &Importer{db: db, logger: logger}
}

// Import replaces the stored stops with feed's in a single transaction.
func (imp *Importer) Import(ctx context.Context, feed *Feed) error {
	start := time.Now()

	tx, err := imp.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"stops", "feed_metadata"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := imp.importStops(ctx, tx, feed.Stops); err != nil {
		return err
	}

	meta := map[string]string{
		"imported_at":   time.Now().UTC().Format(time.RFC3339),
		"last_modified": feed.LastModified,
		"etag":          feed.ETag,
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO feed_metadata (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	imp.logger.Info("GTFS import complete", "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

func (imp *Importer) importStops(ctx context.Context, tx *sql.Tx, stops []Stop) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO stops (stop_id, stop_name, stop_lat, stop_lon, location_type, parent_station)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare stops: %w", err)
	}
	defer stmt.Close()

	for _, s := range stops {
		if s.StopID == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx,
			s.StopID, s.StopName, parseFloat(s.StopLat), parseFloat(s.StopLon),
			parseInt(s.LocationType), s.ParentStation,
		); err != nil {
			return fmt.Errorf("insert stop %s: %w", s.StopID, err)
		}
	}
	imp.logger.Info("imported stops", "count", len(stops))
	return nil
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
