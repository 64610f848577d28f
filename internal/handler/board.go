package handler

import (
	"net/http"

	"subwayboard/internal/display"
)

// Board renders the full board page.
func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	b, ok := h.store.Board()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := display.BoardPage(b, ok, "/sse/board").Render(r.Context(), w); err != nil {
		h.logger.Error("rendering board page", "error", err)
	}
}
