// Package arrivals turns GTFS-Realtime trip updates into per-direction
// countdowns and display strings for a single station.
package arrivals

import (
	"sort"
	"strings"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
)

// stopCodeLen is the length of the station part of an NYCT stop id ("G26" in "G26N").
const stopCodeLen = 3

// Direction of travel through a station.
type Direction int

const (
	Northbound Direction = iota
	Southbound
)

func (d Direction) String() string {
	switch d {
	case Northbound:
		return "northbound"
	case Southbound:
		return "southbound"
	default:
		return "unknown"
	}
}

// Prediction is a predicted arrival of one train at the target station.
type Prediction struct {
	StopID    string
	Direction Direction
	Arrival   time.Time
}

// Countdowns holds time-until-arrival per direction, soonest first.
type Countdowns struct {
	North []time.Duration
	South []time.Duration
}

// Predictions collects the arrivals in feed whose stop id starts with the
// station code stop. Updates without an arrival time and stop ids without a
// direction marker are skipped.
func Predictions(feed *gtfs.FeedMessage, stop string) []Prediction {
	var out []Prediction
	for _, entity := range feed.GetEntity() {
		tu := entity.GetTripUpdate()
		if tu == nil {
			continue
		}
		for _, stu := range tu.GetStopTimeUpdate() {
			id := stu.GetStopId()
			if stopCode(id) != stop {
				continue
			}
			ts := stu.GetArrival().GetTime()
			if ts == 0 {
				continue
			}
			dir, ok := directionOf(id)
			if !ok {
				continue
			}
			out = append(out, Prediction{
				StopID:    id,
				Direction: dir,
				Arrival:   time.Unix(ts, 0),
			})
		}
	}
	return out
}

// Extract computes sorted countdowns for the station relative to now.
func Extract(feed *gtfs.FeedMessage, stop string, now time.Time) Countdowns {
	var c Countdowns
	for _, p := range Predictions(feed, stop) {
		d := p.Arrival.Sub(now)
		switch p.Direction {
		case Northbound:
			c.North = append(c.North, d)
		case Southbound:
			c.South = append(c.South, d)
		}
	}
	sort.Slice(c.North, func(i, j int) bool { return c.North[i] < c.North[j] })
	sort.Slice(c.South, func(i, j int) bool { return c.South[i] < c.South[j] })
	return c
}

// MissingDirections reports which directions have no platform among
// platformIDs for stop, classified the same way as feed stop ids.
func MissingDirections(stop string, platformIDs []string) []Direction {
	var north, south bool
	for _, id := range platformIDs {
		if stopCode(id) != stop {
			continue
		}
		dir, ok := directionOf(id)
		if !ok {
			continue
		}
		if dir == Northbound {
			north = true
		} else {
			south = true
		}
	}
	var missing []Direction
	if !north {
		missing = append(missing, Northbound)
	}
	if !south {
		missing = append(missing, Southbound)
	}
	return missing
}

func stopCode(id string) string {
	if len(id) < stopCodeLen {
		return id
	}
	return id[:stopCodeLen]
}

// directionOf looks for the marker anywhere in the id. "N" is checked first,
// so an id carrying both markers counts as northbound.
func directionOf(id string) (Direction, bool) {
	if strings.Contains(id, "N") {
		return Northbound, true
	}
	if strings.Contains(id, "S") {
		return Southbound, true
	}
	return 0, false
}
