package utils

import (
	"fmt"
	"time"
)

const (
	// ISOMillisLayout is the backend's canonical timestamp format.
	ISOMillisLayout = "2006-01-02T15:04:05.000Z"
	// ISOSecondsLayout is accepted when the millisecond form fails to parse.
	ISOSecondsLayout = "2006-01-02T15:04:05Z"
)

// FormatISO formats t in UTC using the backend's layout.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOMillisLayout)
}

// ParseISO parses the backend layout, falling back to seconds precision.
func ParseISO(value string) (time.Time, error) {
	t, err := time.Parse(ISOMillisLayout, value)
	if err == nil {
		return t, nil
	}

	t, fallbackErr := time.Parse(ISOSecondsLayout, value)
	if fallbackErr == nil {
		return t, nil
	}

	// offsets other than Z
	t, fallbackErr = time.Parse(time.RFC3339Nano, value)
	if fallbackErr == nil {
		return t.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
}

// ParseOptionalISO returns zero time for an empty value.
func ParseOptionalISO(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return ParseISO(value)
}
