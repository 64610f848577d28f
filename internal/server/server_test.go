package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"subwayboard/internal/board"
	"subwayboard/internal/config"
)

func newTestServer(t *testing.T, store *board.Store) *httptest.Server {
	t.Helper()
	cfg := &config.Config{PollInterval: 20 * time.Millisecond}
	s := New(cfg, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func readyStore() *board.Store {
	store := board.NewStore()
	store.Render(context.Background(), board.Board{
		PollID:     "p1",
		Station:    "Greenpoint Av",
		NorthLabel: "Court Sq.",
		SouthLabel: "Church Av.",
		North:      "3 min, 7 min",
		South:      "<1 min",
		UpdatedAt:  time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC),
	})
	return store
}

func TestBoardPage(t *testing.T) {
	ts := newTestServer(t, readyStore())

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(string(body), "3 min, 7 min") {
		t.Errorf("page missing north times: %s", body)
	}
	if resp.Header.Get("X-Frame-Options") != "DENY" {
		t.Error("security headers missing")
	}
}

func TestUnknownPath(t *testing.T) {
	ts := newTestServer(t, readyStore())

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		store      func() *board.Store
		wantCode   int
		wantStatus string
	}{
		{"starting", board.NewStore, http.StatusServiceUnavailable, "starting"},
		{"ok", readyStore, http.StatusOK, "ok"},
		{"degraded", func() *board.Store {
			s := readyStore()
			s.RecordError(io.ErrUnexpectedEOF, time.Now())
			return s
		}, http.StatusOK, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.store())

			resp, err := http.Get(ts.URL + "/healthz")
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantCode {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantCode)
			}
			var body struct {
				Status string `json:"status"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("status field = %q, want %q", body.Status, tt.wantStatus)
			}
		})
	}
}

func TestSSEBoard(t *testing.T) {
	ts := newTestServer(t, readyStore())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, "GET", ts.URL+"/sse/board", nil)
	req.Header.Set("Accept", "text/event-stream")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	// Two events prove the ticker keeps pushing.
	sc := bufio.NewScanner(resp.Body)
	events := 0
	for sc.Scan() && events < 2 {
		line := sc.Text()
		if line == "event: board" {
			events++
			continue
		}
		if strings.HasPrefix(line, "data: ") && !strings.Contains(line, "Court Sq.") {
			t.Errorf("data line missing board content: %q", line)
		}
	}
	if events < 2 {
		t.Errorf("received %d events, want 2", events)
	}
}
