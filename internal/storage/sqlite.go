package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

// DB holds the static stops table and its feed metadata. It is written once
// per import and read a handful of times at startup.
type DB struct {
	*sql.DB
	logger *slog.Logger
}

// Open creates or opens the stops database at path and applies migrations.
func Open(path string, logger *slog.Logger) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open stops db %s: %w", path, err)
	}
	// Import runs in a single transaction and nothing reads concurrently.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping stops db %s: %w", path, err)
	}

	db := &DB{DB: sqlDB, logger: logger}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate stops db: %w", err)
	}

	logger.Debug("stops database ready", "path", path)
	return db, nil
}

// dsn builds the go-sqlite3 connection string. There are no foreign keys,
// and the import transaction takes the write lock up front.
func dsn(path string) string {
	q := url.Values{}
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "NORMAL")
	q.Set("_busy_timeout", "5000")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}
