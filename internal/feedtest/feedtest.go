// Package feedtest builds GTFS-Realtime fixtures for tests.
package feedtest

import (
	"testing"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

// StopTime is one predicted arrival within a trip. A zero Arrival leaves the
// arrival event unset.
type StopTime struct {
	StopID  string
	Arrival time.Time
}

// Trip returns a trip-update entity for the G line.
func Trip(id string, stops ...StopTime) *gtfs.FeedEntity {
	tu := &gtfs.TripUpdate{
		Trip: &gtfs.TripDescriptor{
			TripId:  proto.String(id),
			RouteId: proto.String("G"),
		},
	}
	for _, st := range stops {
		stu := &gtfs.TripUpdate_StopTimeUpdate{StopId: proto.String(st.StopID)}
		if !st.Arrival.IsZero() {
			stu.Arrival = &gtfs.TripUpdate_StopTimeEvent{Time: proto.Int64(st.Arrival.Unix())}
		}
		tu.StopTimeUpdate = append(tu.StopTimeUpdate, stu)
	}
	return &gtfs.FeedEntity{Id: proto.String(id), TripUpdate: tu}
}

// Alert returns an entity without a trip update.
func Alert(id string) *gtfs.FeedEntity {
	return &gtfs.FeedEntity{
		Id:    proto.String(id),
		Alert: &gtfs.Alert{},
	}
}

// Feed wraps entities in a FeedMessage with a valid header.
func Feed(entities ...*gtfs.FeedEntity) *gtfs.FeedMessage {
	return &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Timestamp:           proto.Uint64(uint64(time.Now().Unix())),
		},
		Entity: entities,
	}
}

// Marshal serializes feed, failing the test on error.
func Marshal(t testing.TB, feed *gtfs.FeedMessage) []byte {
	t.Helper()
	data, err := proto.Marshal(feed)
	require.NoError(t, err)
	return data
}
