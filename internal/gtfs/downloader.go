package gtfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Downloader fetches the static GTFS zip, using conditional requests to skip
// unchanged feeds.
type Downloader struct {
	client *http.Client
	url    string
	dir    string // where downloaded zips are written
	logger *slog.Logger
}

// NewDownloader creates a Downloader for the given GTFS URL.
func NewDownloader(url, dir string, logger *slog.Logger) *Downloader {
	return &Downloader{
		client: &http.Client{Timeout: 5 * time.Minute},
		url:    url,
		dir:    dir,
		logger: logger,
	}
}

// Archive is a downloaded zip plus the validators needed for the next check.
type Archive struct {
	Path         string
	LastModified string
	ETag         string
}

// Changed sends a HEAD request with If-Modified-Since / If-None-Match and
// reports whether the feed differs from the stored validators.
func (d *Downloader) Changed(ctx context.Context, lastModified, etag string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, "HEAD", d.url, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("HEAD request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		d.logger.Info("GTFS feed not modified")
		return false, nil
	}
	return true, nil
}

// Download fetches the GTFS zip into a temp file under the download dir.
// The caller removes the file.
func (d *Downloader) Download(ctx context.Context) (*Archive, error) {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return nil, fmt.Errorf("create dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", d.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	d.logger.Info("downloading GTFS feed", "url", d.url)
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp(d.dir, "gtfs-*.zip")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer tmpFile.Close()

	written, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		os.Remove(tmpFile.Name())
		return nil, fmt.Errorf("write file: %w", err)
	}

	d.logger.Info("GTFS feed downloaded",
		"path", filepath.Base(tmpFile.Name()),
		"size_mb", fmt.Sprintf("%.1f", float64(written)/(1024*1024)),
	)
	return &Archive{
		Path:         tmpFile.Name(),
		LastModified: resp.Header.Get("Last-Modified"),
		ETag:         resp.Header.Get("ETag"),
	}, nil
}
