package simulator

import (
	"errors"
	"slices"
	"sync"
	"time"

	"netmonlabs/netmon/internal/domain"
)

// CriticalLevel is the value at or above which ingested readings are
// flagged as anomalies.
const CriticalLevel = 90.0

// DefaultMaxRecords caps how many readings the store keeps.
const DefaultMaxRecords = 5000

// recordedAtLayout matches the backend: naive UTC with microseconds.
const recordedAtLayout = "2006-01-02T15:04:05.999999"

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type user struct {
	passwordHash []byte
	role         string
	fullName     string
	email        string
	phone        string
	organization string
}

type reading struct {
	record domain.TelemetryRecord
	at     time.Time
}

// Store holds users and telemetry in memory.
type Store struct {
	mu         sync.RWMutex
	users      map[string]user
	readings   []reading
	maxRecords int
	now        func() time.Time
}

// NewStore creates an empty store. maxRecords <= 0 uses DefaultMaxRecords.
func NewStore(maxRecords int) *Store {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &Store{
		users:      make(map[string]user),
		maxRecords: maxRecords,
		now:        time.Now,
	}
}

func (s *Store) addUser(name string, u user) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[name]; ok {
		return ErrUserExists
	}
	s.users[name] = u
	return nil
}

func (s *Store) user(name string) (user, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[name]
	return u, ok
}

// Ingest stores events stamped with the current UTC time and returns how
// many were stored.
func (s *Store) Ingest(events []Event) int {
	now := s.now().UTC()
	stamp := domain.ParseTimestamp(now.Format(recordedAtLayout), time.UTC)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		s.readings = append(s.readings, reading{
			at: now,
			record: domain.TelemetryRecord{
				DeviceName:        ev.DeviceName,
				IPAddress:         ev.IPAddress,
				Location:          ev.Location,
				MetricValue:       domain.NewMetric(ev.MetricValue),
				IsAnomaly:         ev.MetricValue >= CriticalLevel,
				ActionDescription: ev.ActionDescription,
				RecordedAt:        stamp,
			},
		})
	}
	if over := len(s.readings) - s.maxRecords; over > 0 {
		s.readings = slices.Delete(s.readings, 0, over)
	}
	return len(events)
}

// Telemetry returns every stored reading, newest first.
func (s *Store) Telemetry() []domain.TelemetryRecord {
	s.mu.RLock()
	sorted := slices.Clone(s.readings)
	s.mu.RUnlock()

	slices.SortStableFunc(sorted, func(a, b reading) int {
		return b.at.Compare(a.at)
	})
	out := make([]domain.TelemetryRecord, len(sorted))
	for i, r := range sorted {
		out[i] = r.record
	}
	return out
}
