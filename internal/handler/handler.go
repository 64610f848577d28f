package handler

import (
	"log/slog"
	"time"

	"subwayboard/internal/board"
)

// Handler holds shared dependencies for all HTTP handlers.
type Handler struct {
	store    *board.Store
	interval time.Duration // SSE push cadence, matches the poll interval
	logger   *slog.Logger
}

// New creates a Handler.
func New(store *board.Store, interval time.Duration, logger *slog.Logger) *Handler {
	if interval <= 0 {
		interval = board.DefaultInterval
	}
	return &Handler{store: store, interval: interval, logger: logger}
}
