package aggregate

import "netmonlabs/netmon/internal/domain"

// DefaultAction is shown in place of a missing action description.
const DefaultAction = "Loading"

// ActionLabel returns the action description, or DefaultAction.
func ActionLabel(r domain.TelemetryRecord) string {
	if a := r.ActionText(); a != "" {
		return a
	}
	return DefaultAction
}

// AnomalyLabel renders the anomaly column: "yes" above the threshold, an
// em dash otherwise.
func AnomalyLabel(m domain.Metric) string {
	if IsAnomaly(m) {
		return "yes"
	}
	return "—"
}

// Last returns the newest point of s.
func (s Series) Last() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[len(s)-1], true
}
