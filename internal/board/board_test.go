package board

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subwayboard/internal/arrivals"
	"subwayboard/internal/feedtest"
	"subwayboard/internal/realtime"
)

var testNow = time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource replays a fixed sequence of responses; the last one repeats.
type fakeSource struct {
	mu        sync.Mutex
	responses []response
	calls     int
	lines     []string
}

type response struct {
	data []byte
	err  error
}

func (f *fakeSource) Fetch(_ context.Context, line string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, line)
	r := f.responses[min(f.calls, len(f.responses)-1)]
	f.calls++
	return r.data, r.err
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingRenderer struct {
	mu     sync.Mutex
	boards []Board
	err    error
}

func (r *recordingRenderer) Render(_ context.Context, b Board) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boards = append(r.boards, b)
	return r.err
}

func (r *recordingRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}

func goodFeed(t *testing.T) []byte {
	at := func(d time.Duration) time.Time { return testNow.Add(d) }
	return feedtest.Marshal(t, feedtest.Feed(
		feedtest.Trip("t1", feedtest.StopTime{StopID: "G26N", Arrival: at(7 * time.Minute)}),
		feedtest.Trip("t2", feedtest.StopTime{StopID: "G26N", Arrival: at(45 * time.Second)}),
		feedtest.Trip("t3", feedtest.StopTime{StopID: "G26N", Arrival: at(12 * time.Minute)}),
		feedtest.Trip("t4", feedtest.StopTime{StopID: "G26S", Arrival: at(-1 * time.Minute)}),
		feedtest.Trip("t5", feedtest.StopTime{StopID: "G26S", Arrival: at(4*time.Minute + 59*time.Second)}),
	))
}

func newTestPipeline(src Source) *Pipeline {
	p := NewPipeline(src, realtime.LineG, "G26", arrivals.NewFormatter(2, "<1"), Labels{
		Station: "Greenpoint Av",
		North:   "Court Sq.",
		South:   "Church Av.",
	})
	p.now = func() time.Time { return testNow }
	return p
}

func TestPipeline_Poll(t *testing.T) {
	src := &fakeSource{responses: []response{{data: goodFeed(t)}}}
	p := newTestPipeline(src)

	b, err := p.Poll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "<1 min, 7 min", b.North)
	assert.Equal(t, "4 min", b.South)
	assert.Equal(t, "Greenpoint Av", b.Station)
	assert.Equal(t, "Court Sq.", b.NorthLabel)
	assert.Equal(t, "Church Av.", b.SouthLabel)
	assert.Equal(t, testNow, b.UpdatedAt)
	assert.NotEmpty(t, b.PollID)
	assert.Len(t, b.Countdowns.North, 3)
	assert.Equal(t, []string{realtime.LineG}, src.lines)
}

func TestPipeline_Poll_FeedError(t *testing.T) {
	src := &fakeSource{responses: []response{{data: []byte{0xff, 0xff, 0xff}}}}

	_, err := newTestPipeline(src).Poll(context.Background())

	var parseErr *realtime.FeedParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestPipeline_Poll_NetworkError(t *testing.T) {
	src := &fakeSource{responses: []response{{err: &realtime.NetworkError{URL: "u", StatusCode: 500}}}}

	_, err := newTestPipeline(src).Poll(context.Background())

	var netErr *realtime.NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestRunner_StopsAfterMaxPolls(t *testing.T) {
	src := &fakeSource{responses: []response{{data: goodFeed(t)}}}
	rec := &recordingRenderer{}
	store := NewStore()

	r := NewRunner(newTestPipeline(src), store, Schedule{Interval: time.Millisecond, MaxPolls: 3}, testLogger(), rec)
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, 3, src.callCount())
	assert.Equal(t, 3, rec.count())
	assert.Equal(t, 3, store.Status().Polls)
}

func TestRunner_KeepsLastGoodBoard(t *testing.T) {
	src := &fakeSource{responses: []response{
		{data: goodFeed(t)},
		{err: &realtime.NetworkError{URL: "u", StatusCode: 503}},
		{data: []byte{0xff, 0xff}},
	}}
	rec := &recordingRenderer{}
	store := NewStore()

	r := NewRunner(newTestPipeline(src), store, Schedule{Interval: time.Millisecond, MaxPolls: 3}, testLogger(), rec)
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, 1, rec.count())

	b, ok := store.Board()
	require.True(t, ok)
	assert.Equal(t, "<1 min, 7 min", b.North)

	st := store.Status()
	assert.Equal(t, 2, st.ConsecutiveFailures)
	assert.Contains(t, st.LastError, "malformed feed")
	assert.Equal(t, testNow, st.LastSuccess)
}

func TestRunner_RecoversAfterFailure(t *testing.T) {
	src := &fakeSource{responses: []response{
		{err: &realtime.NetworkError{URL: "u", Err: errors.New("connection refused")}},
		{data: goodFeed(t)},
	}}
	store := NewStore()

	r := NewRunner(newTestPipeline(src), store, Schedule{Interval: time.Millisecond, MaxPolls: 2}, testLogger())
	require.NoError(t, r.Run(context.Background()))

	_, ok := store.Board()
	assert.True(t, ok)
	assert.Zero(t, store.Status().ConsecutiveFailures)
}

func TestRunner_UnsupportedLineIsFatal(t *testing.T) {
	fetcher := realtime.NewFetcher("http://127.0.0.1:1", "key", time.Second, testLogger())
	p := NewPipeline(fetcher, "A", "A27", arrivals.NewFormatter(0, ""), Labels{})

	r := NewRunner(p, NewStore(), Schedule{Interval: time.Millisecond}, testLogger())
	err := r.Run(context.Background())

	var lineErr *realtime.UnsupportedLineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, "A", lineErr.Line)
}

func TestRunner_StopsAtDeadline(t *testing.T) {
	src := &fakeSource{responses: []response{{data: goodFeed(t)}}}

	r := NewRunner(newTestPipeline(src), NewStore(), Schedule{Interval: 10 * time.Millisecond, RunFor: 55 * time.Millisecond}, testLogger())

	start := time.Now()
	require.NoError(t, r.Run(context.Background()))

	assert.Less(t, time.Since(start), time.Second)
	assert.GreaterOrEqual(t, src.callCount(), 2)
}

func TestRunner_StopsOnCancel(t *testing.T) {
	src := &fakeSource{responses: []response{{data: goodFeed(t)}}}
	ctx, cancel := context.WithCancel(context.Background())

	r := NewRunner(newTestPipeline(src), NewStore(), Schedule{Interval: time.Hour}, testLogger())

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancel")
	}
}

func TestRunner_RendererErrorDoesNotStop(t *testing.T) {
	src := &fakeSource{responses: []response{{data: goodFeed(t)}}}
	bad := &recordingRenderer{err: errors.New("panel unplugged")}
	good := &recordingRenderer{}

	r := NewRunner(newTestPipeline(src), NewStore(), Schedule{Interval: time.Millisecond, MaxPolls: 2}, testLogger(), bad, good)
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, 2, bad.count())
	assert.Equal(t, 2, good.count())
}

func TestNewRunner_DefaultInterval(t *testing.T) {
	r := NewRunner(nil, NewStore(), Schedule{}, testLogger())
	assert.Equal(t, DefaultInterval, r.schedule.Interval)
}
