package realtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// LineG is the only line with a realtime endpoint.
const LineG = "G"

// DefaultGFeedURL is the MTA GTFS-RT endpoint carrying the G line.
const DefaultGFeedURL = "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-g"

// Fetcher downloads raw GTFS-RT payloads for a subway line.
type Fetcher struct {
	endpoints map[string]string // line -> feed URL
	apiKey    string
	client    *http.Client
	logger    *slog.Logger
}

// NewFetcher creates a fetcher that serves the G line from feedURL.
// An empty feedURL selects DefaultGFeedURL.
func NewFetcher(feedURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Fetcher {
	if feedURL == "" {
		feedURL = DefaultGFeedURL
	}
	return &Fetcher{
		endpoints: map[string]string{LineG: feedURL},
		apiKey:    apiKey,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// Supports reports whether line has a feed endpoint.
func (f *Fetcher) Supports(line string) bool {
	_, ok := f.endpoints[line]
	return ok
}

// Fetch issues one GET for the line's feed and returns the response body.
// Redirects are followed. Failures are not retried.
func (f *Fetcher) Fetch(ctx context.Context, line string) ([]byte, error) {
	url, ok := f.endpoints[line]
	if !ok {
		return nil, &UnsupportedLineError{Line: line}
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}
	req.Header.Set("x-api-key", f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}

	f.logger.Debug("feed fetched", "line", line, "bytes", len(body))
	return body, nil
}
