// Package board runs the fetch, decode, extract and format pipeline on a
// schedule and keeps the last good result for renderers.
package board

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"subwayboard/internal/arrivals"
	"subwayboard/internal/realtime"
)

// Board is the display state produced by one poll.
type Board struct {
	PollID     string
	Station    string
	NorthLabel string
	SouthLabel string
	North      string // e.g. "3 min, 7 min"
	South      string
	Countdowns arrivals.Countdowns
	UpdatedAt  time.Time
}

// Source returns raw GTFS-RT bytes for a line.
type Source interface {
	Fetch(ctx context.Context, line string) ([]byte, error)
}

// Labels names the station and the two directions on the display.
type Labels struct {
	Station string
	North   string
	South   string
}

// Pipeline turns one feed download into a Board.
type Pipeline struct {
	source    Source
	line      string
	stop      string
	formatter arrivals.Formatter
	labels    Labels
	now       func() time.Time
}

// NewPipeline creates a pipeline for one line and station code.
func NewPipeline(source Source, line, stop string, formatter arrivals.Formatter, labels Labels) *Pipeline {
	return &Pipeline{
		source:    source,
		line:      line,
		stop:      stop,
		formatter: formatter,
		labels:    labels,
		now:       time.Now,
	}
}

// Poll fetches the feed once and builds a Board. Fetcher and decoder errors
// are wrapped, so callers can still match them with errors.As.
func (p *Pipeline) Poll(ctx context.Context) (Board, error) {
	data, err := p.source.Fetch(ctx, p.line)
	if err != nil {
		return Board{}, fmt.Errorf("poll %s/%s: %w", p.line, p.stop, err)
	}

	feed, err := realtime.Decode(data)
	if err != nil {
		return Board{}, fmt.Errorf("poll %s/%s: %w", p.line, p.stop, err)
	}

	now := p.now()
	c := arrivals.Extract(feed, p.stop, now)

	return Board{
		PollID:     uuid.NewString(),
		Station:    p.labels.Station,
		NorthLabel: p.labels.North,
		SouthLabel: p.labels.South,
		North:      p.formatter.Format(c.North),
		South:      p.formatter.Format(c.South),
		Countdowns: c,
		UpdatedAt:  now,
	}, nil
}
