package arrivals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subwayboard/internal/feedtest"
)

var now = time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

func at(d time.Duration) time.Time { return now.Add(d) }

func TestExtract_SplitsAndSortsByDirection(t *testing.T) {
	feed := feedtest.Feed(
		feedtest.Trip("t1",
			feedtest.StopTime{StopID: "G24N", Arrival: at(1 * time.Minute)},
			feedtest.StopTime{StopID: "G26N", Arrival: at(7 * time.Minute)},
		),
		feedtest.Trip("t2", feedtest.StopTime{StopID: "G26N", Arrival: at(3 * time.Minute)}),
		feedtest.Trip("t3",
			feedtest.StopTime{StopID: "G26S", Arrival: at(9 * time.Minute)},
			feedtest.StopTime{StopID: "G28S", Arrival: at(11 * time.Minute)},
		),
		feedtest.Trip("t4", feedtest.StopTime{StopID: "G26S", Arrival: at(-2 * time.Minute)}),
		feedtest.Alert("alert"),
	)

	c := Extract(feed, "G26", now)

	assert.Equal(t, []time.Duration{3 * time.Minute, 7 * time.Minute}, c.North)
	assert.Equal(t, []time.Duration{-2 * time.Minute, 9 * time.Minute}, c.South)
}

func TestExtract_NoMatches(t *testing.T) {
	feed := feedtest.Feed(feedtest.Trip("t1", feedtest.StopTime{StopID: "G22N", Arrival: at(time.Minute)}))

	c := Extract(feed, "G26", now)
	assert.Empty(t, c.North)
	assert.Empty(t, c.South)

	f := NewFormatter(0, "")
	assert.Equal(t, "", f.Format(c.North))
	assert.Equal(t, "", f.Format(c.South))
}

func TestExtract_EmptyFeed(t *testing.T) {
	c := Extract(feedtest.Feed(), "G26", now)
	assert.Empty(t, c.North)
	assert.Empty(t, c.South)
}

func TestPredictions_BothMarkersIsNorthbound(t *testing.T) {
	// "N" is checked before "S", so an id carrying both lands northbound.
	feed := feedtest.Feed(feedtest.Trip("t1", feedtest.StopTime{StopID: "G26NS", Arrival: at(time.Minute)}))

	preds := Predictions(feed, "G26")
	require.Len(t, preds, 1)
	assert.Equal(t, Northbound, preds[0].Direction)

	c := Extract(feed, "G26", now)
	assert.Len(t, c.North, 1)
	assert.Empty(t, c.South)
}

func TestPredictions_NoMarkerDropped(t *testing.T) {
	feed := feedtest.Feed(feedtest.Trip("t1",
		feedtest.StopTime{StopID: "G26", Arrival: at(time.Minute)},
		feedtest.StopTime{StopID: "G26X", Arrival: at(time.Minute)},
	))
	assert.Empty(t, Predictions(feed, "G26"))
}

func TestPredictions_MissingArrivalSkipped(t *testing.T) {
	feed := feedtest.Feed(feedtest.Trip("t1",
		feedtest.StopTime{StopID: "G26N"},
		feedtest.StopTime{StopID: "G26S", Arrival: at(4 * time.Minute)},
	))

	preds := Predictions(feed, "G26")
	require.Len(t, preds, 1)
	assert.Equal(t, "G26S", preds[0].StopID)
	assert.Equal(t, Southbound, preds[0].Direction)
	assert.True(t, preds[0].Arrival.Equal(at(4*time.Minute)))
}

func TestPredictions_ShortStopID(t *testing.T) {
	feed := feedtest.Feed(feedtest.Trip("t1", feedtest.StopTime{StopID: "G2", Arrival: at(time.Minute)}))
	assert.Empty(t, Predictions(feed, "G26"))
}

func TestMissingDirections(t *testing.T) {
	tests := []struct {
		name      string
		platforms []string
		want      []Direction
	}{
		{"both platforms", []string{"G26N", "G26S"}, nil},
		{"south only", []string{"G26S"}, []Direction{Northbound}},
		{"north only", []string{"G26N"}, []Direction{Southbound}},
		{"none", nil, []Direction{Northbound, Southbound}},
		{"other station ignored", []string{"G28N", "G28S", "G26N"}, []Direction{Southbound}},
		{"unmarked platform ignored", []string{"G26", "G26S"}, []Direction{Northbound}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MissingDirections("G26", tt.platforms))
		})
	}
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "northbound", Northbound.String())
	assert.Equal(t, "southbound", Southbound.String())
	assert.Equal(t, "unknown", Direction(7).String())
}

func TestFormattedOutput_NeverShowsDeparted(t *testing.T) {
	feed := feedtest.Feed(
		feedtest.Trip("t1", feedtest.StopTime{StopID: "G26N", Arrival: at(-30 * time.Second)}),
		feedtest.Trip("t2", feedtest.StopTime{StopID: "G26N", Arrival: at(0)}),
		feedtest.Trip("t3", feedtest.StopTime{StopID: "G26N", Arrival: at(45 * time.Second)}),
		feedtest.Trip("t4", feedtest.StopTime{StopID: "G26N", Arrival: at(5 * time.Minute)}),
	)

	c := Extract(feed, "G26", now)
	assert.Equal(t, "<1 min, 5 min", NewFormatter(0, "").Format(c.North))
}
