package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// TelemetryRecord is a single device reading returned by the telemetry
// endpoint. Field order mirrors the backend response and is significant for
// search (see aggregate.SearchText).
type TelemetryRecord struct {
	DeviceName        string    `json:"device_name"`
	IPAddress         string    `json:"ip_address"`
	Location          *string   `json:"location"`
	MetricValue       Metric    `json:"metric_value"`
	IsAnomaly         bool      `json:"is_anomaly"`
	ActionDescription *string   `json:"action_description"`
	RecordedAt        Timestamp `json:"recorded_at"`
}

// LocationText returns the location or "" when the backend sent null.
func (r TelemetryRecord) LocationText() string {
	if r.Location == nil {
		return ""
	}
	return *r.Location
}

// ActionText returns the action description or "" when absent.
func (r TelemetryRecord) ActionText() string {
	if r.ActionDescription == nil {
		return ""
	}
	return *r.ActionDescription
}

// Metric is a metric_value that tolerates malformed input. Valid is false for
// null, missing, non-numeric, NaN and infinite values. Raw keeps the text of
// any non-numeric token (strings unquoted, untrimmed); it is empty for JSON
// numbers and null.
type Metric struct {
	Value float64
	Valid bool
	Raw   string
}

// NewMetric returns a valid Metric holding v.
func NewMetric(v float64) Metric {
	return Metric{Value: v, Valid: true}
}

// UnmarshalJSON accepts numbers and numeric strings. Anything else decodes to
// an invalid Metric rather than an error so one bad reading never rejects a
// whole snapshot.
func (m *Metric) UnmarshalJSON(data []byte) error {
	*m = Metric{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			m.Raw = string(data)
			return nil
		}
		m.Raw = raw
		raw = strings.TrimSpace(raw)
	} else {
		raw = string(data)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		if m.Raw == "" {
			m.Raw = raw
		}
		return nil
	}
	m.Value = v
	m.Valid = true
	return nil
}

// MarshalJSON writes the number, or null for an invalid Metric.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(m.Value, 'f', -1, 64)), nil
}

// String renders the value in shortest decimal form, or "" when invalid.
func (m Metric) String() string {
	if !m.Valid {
		return ""
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

// Text is the value as the backend sent it: Raw when the token was a string
// or otherwise non-numeric, the shortest decimal form for numbers.
func (m Metric) Text() string {
	if m.Raw != "" {
		return m.Raw
	}
	return m.String()
}

// timestampLayouts are tried in order. The backend serialises naive
// timestamps without a zone; RFC 3339 is accepted for other producers.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp is a recorded_at value. Raw keeps the original text for search
// and display; Valid reports whether Time could be parsed.
type Timestamp struct {
	Raw   string
	Time  time.Time
	Valid bool
}

// ParseTimestamp parses s using the accepted layouts. Zoned values are
// converted to loc; naive values keep their wall clock.
func ParseTimestamp(s string, loc *time.Location) Timestamp {
	ts := Timestamp{Raw: s}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ts
	}
	if loc == nil {
		loc = time.Local
	}

	if t, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		ts.Time = t.In(loc)
		ts.Valid = true
		return ts
	}
	for _, layout := range timestampLayouts[1:] {
		if t, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			ts.Time = t
			ts.Valid = true
			return ts
		}
	}
	return ts
}

// UnmarshalJSON accepts a string or null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		t.Raw = string(data)
		return nil
	}
	*t = ParseTimestamp(s, time.Local)
	return nil
}

// MarshalJSON writes the raw text back out, or null when empty.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(t.Raw)
}

// ClockKey is the bucket key for t: the time of day as HH:MM:SS.
func (t Timestamp) ClockKey() (string, bool) {
	if !t.Valid {
		return "", false
	}
	return t.Time.Format("15:04:05"), true
}
