package models

import (
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the ISO-8601 form used for every persisted timestamp
// (millisecond precision, always UTC).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// now returns the current time truncated to the precision that survives a
// TimestampLayout round trip.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// FormatTimestamp renders t with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts TimestampLayout as well as any RFC 3339 value and
// normalizes the result to UTC with millisecond precision.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, err
		}
	}
	return normalize(t), nil
}

func normalize(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC().Truncate(time.Millisecond)
}

func newID() string {
	return uuid.NewString()
}
