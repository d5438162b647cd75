package models

import (
	"fmt"
	"time"
)

// DisplayTime is the layout every normalized timestamp is rendered in.
const DisplayTime = "2006-01-02 15:04"

// NormalizeError wraps a payload the backend sent that does not fit the
// documented schema. A list fetch that hits one of these fails as a whole;
// corrupt rows are never partially rendered.
type NormalizeError struct {
	Entity string
	Err    error
}

func (e *NormalizeError) Error() string {
	return fmt.Sprintf("cannot normalize %s: %v", e.Entity, e.Err)
}

func (e *NormalizeError) Unwrap() error {
	return e.Err
}

// backend timestamp layouts, longest first. The backend emits naive
// timestamps that are UTC; some fields are date-only.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// localizeTimestamp converts a naive-UTC backend timestamp into the display
// zone, exactly once. The missing-UTC-marker correction happens here and
// nowhere else: a raw value already carrying a zone suffix is honored, and
// downstream code only ever sees the formatted result, so the offset can
// be neither skipped nor applied twice. Date-only values are passed through
// unchanged, since shifting a bare date by the local offset would move it
// to the wrong day.
func localizeTimestamp(raw string, loc *time.Location) (string, error) {
	if raw == "" {
		return "", nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc).Format(DisplayTime), nil
	}
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, raw, time.UTC)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" {
			return raw, nil
		}
		return t.In(loc).Format(DisplayTime), nil
	}
	return "", fmt.Errorf("unrecognized timestamp %q", raw)
}
