package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

type healthResponse struct {
	Status              string     `json:"status"`
	PollID              string     `json:"poll_id,omitempty"`
	LastSuccess         *time.Time `json:"last_success,omitempty"`
	LastError           string     `json:"last_error,omitempty"`
	LastErrorAt         *time.Time `json:"last_error_at,omitempty"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	Polls               int        `json:"polls"`
}

// Health reports the polling loop state. It answers 503 until the first
// good board arrives.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	b, ok := h.store.Board()
	st := h.store.Status()

	resp := healthResponse{
		Status:              "ok",
		PollID:              b.PollID,
		LastError:           st.LastError,
		ConsecutiveFailures: st.ConsecutiveFailures,
		Polls:               st.Polls,
	}
	if !st.LastSuccess.IsZero() {
		resp.LastSuccess = &st.LastSuccess
	}
	if !st.LastErrorAt.IsZero() {
		resp.LastErrorAt = &st.LastErrorAt
	}

	code := http.StatusOK
	switch {
	case !ok:
		resp.Status = "starting"
		code = http.StatusServiceUnavailable
	case st.ConsecutiveFailures > 0:
		resp.Status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("encoding health", "error", err)
	}
}
