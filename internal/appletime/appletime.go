// Package appletime converts the Messages store's raw date column into
// canonical local-time instants.
//
// The store encodes dates as an integer offset from 2001-01-01T00:00:00Z,
// but the unit changed across OS releases: older rows hold whole seconds,
// newer rows hold nanoseconds. No schema field records which unit a row
// uses; the only available signal is magnitude. Values whose absolute value
// exceeds NanosThreshold are treated as nanoseconds. If the encoding
// changes again in a future OS revision this heuristic will misclassify
// silently. Known limitation, pinned by the boundary tests.
package appletime

import (
	"strconv"
	"time"
)

// Epoch is the store's reference instant.
var Epoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// NanosThreshold separates the two encodings: raw magnitudes strictly above
// it are nanoseconds past Epoch, at or below it are whole seconds.
const NanosThreshold = 1_000_000_000_000

var epochUnix = Epoch.Unix()

// Decode converts a raw date value into a local-time instant truncated to
// one-second resolution. It accepts the dynamic types a SQLite date column
// can yield (INTEGER, REAL, TEXT, NULL); ok is false when the value is
// absent or non-numeric. Decode never panics.
func Decode(raw any) (t time.Time, ok bool) {
	var v int64
	switch x := raw.(type) {
	case nil:
		return time.Time{}, false
	case int64:
		v = x
	case int:
		v = int64(x)
	case float64:
		v = int64(x)
	case []byte:
		n, err := strconv.ParseInt(string(x), 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		v = n
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		v = n
	default:
		return time.Time{}, false
	}

	sec := v
	if abs(v) > NanosThreshold {
		sec = v / int64(time.Second)
	}
	return time.Unix(epochUnix+sec, 0).In(time.Local), true
}

// FormatISO renders an instant as ISO-8601 with an explicit offset, the
// form used in snapshots, CSV rows, and state files.
func FormatISO(t time.Time) string {
	return t.Format(time.RFC3339)
}

// NowISO returns the current instant in FormatISO form.
func NowISO() string {
	return FormatISO(time.Now().Truncate(time.Second))
}

// DayKey returns the calendar-day rollup key (YYYY-MM-DD) for an ISO
// timestamp, or "" if the string is too short to carry a date.
func DayKey(iso string) string {
	if len(iso) < 10 {
		return ""
	}
	return iso[:10]
}

// EncodeSeconds converts an instant back into the store's whole-second
// encoding. Used to build time-bounded fetch filters.
func EncodeSeconds(t time.Time) int64 {
	return t.Unix() - epochUnix
}

// EncodeNanos converts an instant back into the store's nanosecond encoding.
func EncodeNanos(t time.Time) int64 {
	return (t.Unix() - epochUnix) * int64(time.Second)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
