package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"subwayboard/internal/display"
)

// SSEBoard streams the board fragment via Server-Sent Events.
// The page's EventSource listens for "board" events and swaps the HTML.
func (h *Handler) SSEBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	h.sendBoardEvent(ctx, w, flusher)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.sendBoardEvent(ctx, w, flusher)
		case <-ctx.Done():
			return
		}
	}
}

// sendBoardEvent renders the current board fragment and sends it as an SSE event.
func (h *Handler) sendBoardEvent(ctx context.Context, w http.ResponseWriter, flusher http.Flusher) {
	b, ok := h.store.Board()

	var buf bytes.Buffer
	if err := display.BoardFragment(b, ok).Render(ctx, &buf); err != nil {
		h.logger.Error("rendering SSE board", "error", err)
		return
	}

	// SSE format: event name, then data lines (each line prefixed with "data: ")
	fmt.Fprintf(w, "event: board\n")
	for _, line := range bytes.Split(buf.Bytes(), []byte("\n")) {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprintf(w, "\n")
	flusher.Flush()
}
