package realtime

import "fmt"

// UnsupportedLineError is returned when a line has no configured feed endpoint.
type UnsupportedLineError struct {
	Line string
}

func (e *UnsupportedLineError) Error() string {
	return fmt.Sprintf("unsupported line %q", e.Line)
}

// NetworkError is returned when the feed request fails or the feed answers
// with a non-200 status. StatusCode is zero for transport failures.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// FeedParseError is returned when a payload is not a GTFS-Realtime FeedMessage.
type FeedParseError struct {
	Err error
}

func (e *FeedParseError) Error() string {
	return fmt.Sprintf("malformed feed: %v", e.Err)
}

func (e *FeedParseError) Unwrap() error { return e.Err }
