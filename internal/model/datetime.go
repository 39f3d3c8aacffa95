package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateTimeLayout is the backend's datetime format: UTC, space instead of "T", milliseconds.
const DateTimeLayout = "2006-01-02 15:04:05.000Z"

// DateTime is a record timestamp as the backend sends it. An unset date arrives as ""
// and decodes to the zero time.
type DateTime struct {
	time.Time
}

func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t.UTC()}
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.UTC().Format(DateTimeLayout))
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("datetime: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	for _, layout := range []string{DateTimeLayout, "2006-01-02 15:04:05Z07:00", time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("datetime: unsupported format %q", s)
}
