package simulator

import (
	"math/rand/v2"
)

// Event is one synthetic reading, shaped like the body of
// POST /operator/telemetry.
type Event struct {
	DeviceName        string  `json:"device_name"`
	IPAddress         string  `json:"ip_address"`
	Location          *string `json:"location"`
	MetricTypeID      int     `json:"metric_type_id"`
	MetricValue       float64 `json:"metric_value"`
	ActionDescription *string `json:"action_description"`
}

var (
	devices = []string{
		"Router-01", "Router-05", "Router-22",
		"Switch-02", "Switch-10", "Switch-50",
		"Firewall-03", "Firewall-09", "Firewall-15",
	}
	addresses = []string{
		"192.168.1.1", "192.168.1.2", "192.168.2.10", "192.168.77.1",
		"172.16.0.1", "172.18.5.1", "10.0.0.1", "10.10.10.9", "10.1.15.1",
	}
	locations = []string{
		"Moscow, DC-1", "St. Petersburg, Office", "Kazan, Node A",
		"Yekaterinburg, DC", "Novosibirsk, DC", "Omsk, Node-7",
		"Moscow, Sormovo Office",
	}
	// metricTypes are indexed by metric_type_id - 1.
	metricTypes = []string{
		"cpu_usage", "memory_usage", "latency_ms", "packet_loss", "bandwidth_usage",
	}
	actions = []string{
		"CPU usage spike", "Memory usage high", "Bandwidth usage normal",
		"High latency detected", "Connection reset", "Packet loss detected",
	}
)

// Default metric value range for generated events.
const (
	DefaultMinValue = 0.0
	DefaultMaxValue = 100.0
)

// Generator produces random events from fixed pools of devices, addresses,
// locations and actions. Values are uniform in [minValue, maxValue).
type Generator struct {
	rng      *rand.Rand
	minValue float64
	maxValue float64
}

// NewGenerator returns a Generator over the default value range. A nil rng
// uses a randomly seeded source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng, minValue: DefaultMinValue, maxValue: DefaultMaxValue}
}

// WithRange sets the value range. An empty or inverted range is ignored.
func (g *Generator) WithRange(minValue, maxValue float64) *Generator {
	if maxValue > minValue {
		g.minValue = minValue
		g.maxValue = maxValue
	}
	return g
}

// Event returns one random event.
func (g *Generator) Event() Event {
	loc := pick(g.rng, locations)
	action := pick(g.rng, actions)
	return Event{
		DeviceName:        pick(g.rng, devices),
		IPAddress:         pick(g.rng, addresses),
		Location:          &loc,
		MetricTypeID:      g.rng.IntN(len(metricTypes)) + 1,
		MetricValue:       g.value(),
		ActionDescription: &action,
	}
}

// Batch returns n random events.
func (g *Generator) Batch(n int) []Event {
	out := make([]Event, 0, n)
	for range n {
		out = append(out, g.Event())
	}
	return out
}

func (g *Generator) value() float64 {
	return g.minValue + g.rng.Float64()*(g.maxValue-g.minValue)
}

func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.IntN(len(pool))]
}
