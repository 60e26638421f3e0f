package models

import (
	"encoding/json"
	"fmt"
	"time"
)

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DateTime decodes the timestamp shapes the web client sends: RFC 3339,
// datetime-local inputs without a zone, and plain dates.
type DateTime struct {
	time.Time
}

// DateTimeError reports a timestamp that matched none of the accepted layouts.
type DateTimeError struct {
	Value string
}

func (e *DateTimeError) Error() string {
	return fmt.Sprintf("data inválida: %q", e.Value)
}

func ParseDateTime(s string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &DateTimeError{Value: s}
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &DateTimeError{Value: string(b)}
	}
	t, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Ptr returns nil for a nil DateTime, otherwise a pointer to its time.
func (d *DateTime) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}
