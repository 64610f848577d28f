package gtfs

import (
	"context"
	"log/slog"
	"os"

	"subwayboard/internal/storage"
)

// Scheduler keeps the static stops table current.
type Scheduler struct {
	downloader *Downloader
	importer   *Importer
	db         *storage.DB
	logger     *slog.Logger
}

// NewScheduler creates a Scheduler.
func NewScheduler(downloader *Downloader, db *storage.DB, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		downloader: downloader,
		importer:   NewImporter(db, logger),
		db:         db,
		logger:     logger,
	}
}

// EnsureData downloads and imports stops if the database is empty.
func (s *Scheduler) EnsureData(ctx context.Context) error {
	if s.db.HasData(ctx) {
		s.logger.Info("GTFS stops already present")
		return nil
	}
	s.logger.Info("no GTFS stops found, performing initial import")
	return s.Update(ctx)
}

// CheckAndUpdate re-imports when the feed changed since the last import.
func (s *Scheduler) CheckAndUpdate(ctx context.Context) error {
	lastModified, _ := s.db.GetMetadata(ctx, "last_modified")
	etag, _ := s.db.GetMetadata(ctx, "etag")

	changed, err := s.downloader.Changed(ctx, lastModified, etag)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.Update(ctx)
}

// Update performs a full download-parse-import cycle.
func (s *Scheduler) Update(ctx context.Context) error {
	archive, err := s.downloader.Download(ctx)
	if err != nil {
		return err
	}
	defer os.Remove(archive.Path)

	feed, err := ParseZip(archive.Path, s.logger)
	if err != nil {
		return err
	}
	feed.LastModified = archive.LastModified
	feed.ETag = archive.ETag

	return s.importer.Import(ctx, feed)
}
