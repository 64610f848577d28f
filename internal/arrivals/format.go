package arrivals

import (
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultMaxTimes is the number of arrivals shown per direction.
	DefaultMaxTimes = 2
	// DefaultImminent replaces the minute count for trains due within a minute.
	DefaultImminent = "<1"
)

// Formatter renders countdowns as a short display line such as "3 min, 7 min".
type Formatter struct {
	MaxTimes int
	Imminent string
}

// NewFormatter returns a Formatter, substituting defaults for zero values.
func NewFormatter(maxTimes int, imminent string) Formatter {
	if maxTimes == 0 {
		maxTimes = DefaultMaxTimes
	}
	if imminent == "" {
		imminent = DefaultImminent
	}
	return Formatter{MaxTimes: maxTimes, Imminent: imminent}
}

// Format drops departed trains, renders the rest and keeps the first
// MaxTimes entries. countdowns must already be sorted ascending.
func (f Formatter) Format(countdowns []time.Duration) string {
	if f.MaxTimes <= 0 {
		return ""
	}
	var parts []string
	for _, d := range countdowns {
		if d <= 0 {
			continue
		}
		if len(parts) == f.MaxTimes {
			break
		}
		parts = append(parts, f.entry(d)+" min")
	}
	return strings.Join(parts, ", ")
}

func (f Formatter) entry(d time.Duration) string {
	if d > time.Minute {
		return strconv.Itoa(int(d / time.Minute))
	}
	return f.Imminent
}
