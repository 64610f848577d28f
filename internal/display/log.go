// Package display renders boards for people: log lines, a text panel laid
// out like the LED matrix, and HTML for the web board.
package display

import (
	"context"
	"log/slog"

	"subwayboard/internal/board"
)

// LogRenderer writes each board as a structured log line.
type LogRenderer struct {
	logger *slog.Logger
}

// NewLogRenderer creates a LogRenderer.
func NewLogRenderer(logger *slog.Logger) *LogRenderer {
	return &LogRenderer{logger: logger}
}

// Render implements board.Renderer.
func (r *LogRenderer) Render(_ context.Context, b board.Board) error {
	r.logger.Info("arrivals",
		"poll_id", b.PollID,
		"station", b.Station,
		"north", b.North,
		"south", b.South,
	)
	return nil
}
