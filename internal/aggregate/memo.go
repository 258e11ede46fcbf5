package aggregate

import (
	"sync"

	"netmonlabs/netmon/internal/domain"
)

// Memo caches the last Compute result keyed by snapshot sequence number and
// search term. It only saves work; a miss recomputes from scratch.
type Memo struct {
	mu     sync.Mutex
	valid  bool
	seq    uint64
	term   string
	result Result
}

// Get returns the Result for (seq, records, term), reusing the cached value
// when seq and term match the previous call. Callers must hand a new seq to
// every distinct snapshot.
func (m *Memo) Get(seq uint64, records []domain.TelemetryRecord, term string) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid && m.seq == seq && m.term == term {
		return m.result
	}
	m.result = Compute(records, term)
	m.seq = seq
	m.term = term
	m.valid = true
	return m.result
}

// Reset drops the cached result.
func (m *Memo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.valid = false
	m.result = Result{}
}
