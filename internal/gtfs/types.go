package gtfs

// Feed holds the parts of a static GTFS zip the board uses.
type Feed struct {
	Stops        []Stop
	LastModified string // From HTTP response header
	ETag         string // From HTTP response header
}

type Stop struct {
	StopID        string `csv:"stop_id"`
	StopName      string `csv:"stop_name"`
	StopLat       string `csv:"stop_lat"`
	StopLon       string `csv:"stop_lon"`
	LocationType  string `csv:"location_type"`
	ParentStation string `csv:"parent_station"`
}
