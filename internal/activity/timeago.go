package activity

import (
	"fmt"
	"time"
)

const (
	JustNow     = "Just now"
	UnknownTime = "Unknown time"
)

// layouts without a zone are read in local time, matching how a browser parses them.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses an ISO-8601 timestamp.
func ParseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err == nil {
		return t, nil
	}
	for _, layout := range zonelessLayouts {
		if t, lerr := time.ParseInLocation(layout, ts, time.Local); lerr == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", ts, err)
}

// TimeAgo formats ts relative to now. Unparseable input yields UnknownTime.
func TimeAgo(ts string, now time.Time) string {
	at, err := ParseTimestamp(ts)
	if err != nil {
		return UnknownTime
	}
	return Since(at, now)
}

// Since formats the whole-unit distance between at and now.
// Timestamps in the future count as JustNow.
func Since(at, now time.Time) string {
	secs := int64(now.Sub(at) / time.Second)

	switch {
	case secs < 60:
		return JustNow
	case secs < 3600:
		return ago(secs/60, "minute")
	case secs < 86400:
		return ago(secs/3600, "hour")
	default:
		return ago(secs/86400, "day")
	}
}

func ago(n int64, unit string) string {
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}
