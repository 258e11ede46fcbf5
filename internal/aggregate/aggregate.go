// Package aggregate turns a telemetry snapshot into what the dashboard shows:
// the rows matching a search term and three per-second series (status
// average, anomaly count, performance max).
//
// Everything here is a pure function of its inputs. Records are grouped by
// the HH:MM:SS clock of recorded_at, in the order each key is first seen,
// and every series keeps only the last MaxPoints buckets of that order. The
// order is arrival order, not chronological order: a snapshot delivered
// newest-first produces a series that runs backwards in time. Records with
// an invalid metric_value or recorded_at stay in the table but do not
// contribute to any series.
package aggregate

import (
	"math"
	"strconv"
	"strings"

	"netmonlabs/netmon/internal/domain"
)

// Thresholds and limits.
const (
	// WarningThreshold: values strictly above it are labelled "warning".
	WarningThreshold = 80.0

	// AnomalyThreshold: values strictly above it are anomalous.
	AnomalyThreshold = 90.0

	// MaxPoints caps the length of every series.
	MaxPoints = 50
)

// Status is the row label shown in the table.
type Status string

const (
	StatusActive  Status = "active"
	StatusWarning Status = "warning"
)

// Classify labels a metric. Invalid metrics are "active".
func Classify(m domain.Metric) Status {
	if m.Valid && m.Value > WarningThreshold {
		return StatusWarning
	}
	return StatusActive
}

// IsAnomaly reports whether m is above the anomaly threshold. It is
// independent of Classify: every anomaly is also a warning, but values in
// (80, 90] are warnings only.
func IsAnomaly(m domain.Metric) bool {
	return m.Valid && m.Value > AnomalyThreshold
}

// Point is one bucket of a series.
type Point struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// Series is an ordered list of points.
type Series []Point

// Values returns just the y values, in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Result is everything the presentation layer needs for one render.
type Result struct {
	Rows        []domain.TelemetryRecord `json:"rows"`
	Status      Series                   `json:"status"`
	Anomalies   Series                   `json:"anomalies"`
	Performance Series                   `json:"performance"`
}

// Compute filters records by term and derives the three series. The series
// are built from the whole snapshot; the search term narrows the table only.
func Compute(records []domain.TelemetryRecord, term string) Result {
	buckets := Bucketize(records)
	return Result{
		Rows:        Filter(records, term),
		Status:      StatusSeries(buckets),
		Anomalies:   AnomalySeries(buckets),
		Performance: PerformanceSeries(buckets),
	}
}

// Filter returns the records whose SearchText contains term,
// case-insensitively. An empty term returns every record.
func Filter(records []domain.TelemetryRecord, term string) []domain.TelemetryRecord {
	needle := strings.ToLower(term)
	out := make([]domain.TelemetryRecord, 0, len(records))
	for _, r := range records {
		if needle == "" || strings.Contains(strings.ToLower(SearchText(r)), needle) {
			out = append(out, r)
		}
	}
	return out
}

// SearchText joins every field value of r with single spaces, in field
// order. Null fields contribute an empty string, numbers their shortest
// decimal form, and string-valued metrics and recorded_at their text as
// received.
func SearchText(r domain.TelemetryRecord) string {
	fields := []string{
		r.DeviceName,
		r.IPAddress,
		r.LocationText(),
		r.MetricValue.Text(),
		strconv.FormatBool(r.IsAnomaly),
		r.ActionText(),
		r.RecordedAt.Raw,
	}
	return strings.Join(fields, " ")
}

// Bucket collects the valid metric values that share a clock key.
type Bucket struct {
	Key    string
	Values []float64
}

// Bucketize groups records by clock key in first-seen order. Records without
// a usable timestamp or metric are skipped.
func Bucketize(records []domain.TelemetryRecord) []Bucket {
	index := make(map[string]int)
	var buckets []Bucket
	for _, r := range records {
		if !r.MetricValue.Valid {
			continue
		}
		key, ok := r.RecordedAt.ClockKey()
		if !ok {
			continue
		}
		i, seen := index[key]
		if !seen {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key})
		}
		buckets[i].Values = append(buckets[i].Values, r.MetricValue.Value)
	}
	return buckets
}

// StatusSeries is the rounded mean of each bucket.
func StatusSeries(buckets []Bucket) Series {
	return reduce(buckets, func(values []float64) float64 {
		var sum float64
		for _, v := range values {
			sum += v
		}
		return roundHalfUp(sum / float64(len(values)))
	})
}

// AnomalySeries is the number of anomalous values in each bucket.
func AnomalySeries(buckets []Bucket) Series {
	return reduce(buckets, func(values []float64) float64 {
		n := 0
		for _, v := range values {
			if v > AnomalyThreshold {
				n++
			}
		}
		return float64(n)
	})
}

// PerformanceSeries is the maximum of each bucket.
func PerformanceSeries(buckets []Bucket) Series {
	return reduce(buckets, func(values []float64) float64 {
		max := values[0]
		for _, v := range values[1:] {
			if v > max {
				max = v
			}
		}
		return max
	})
}

// reduce applies fn to the last MaxPoints buckets. Buckets are never empty.
func reduce(buckets []Bucket, fn func([]float64) float64) Series {
	if len(buckets) > MaxPoints {
		buckets = buckets[len(buckets)-MaxPoints:]
	}
	out := make(Series, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, Point{Time: b.Key, Value: fn(b.Values)})
	}
	return out
}

// roundHalfUp rounds to the nearest integer with ties toward +Inf.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
