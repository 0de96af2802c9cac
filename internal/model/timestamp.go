package model

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// Timestamp decodes the ISO-8601 values the job store emits. Library entries
// carry naive local times without an offset, which time.Time rejects, so the
// offset-less layouts are accepted and read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func ParseTimestamp(raw string) (Timestamp, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Timestamp{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", raw)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid timestamp %s", string(data))
	}
	parsed, err := ParseTimestamp(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}
