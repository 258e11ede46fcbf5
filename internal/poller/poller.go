// Package poller fetches the telemetry snapshot on a fixed interval.
//
// A Poller owns one background goroutine. The first fetch runs as soon as
// Start is called; after that a ticker fires every interval. A tick that
// arrives while the previous fetch is still running is dropped, so at most
// one request is in flight. Failed fetches are logged and leave the last good
// snapshot in place; there is no backoff and no retry within a tick.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"netmonlabs/netmon/internal/domain"
)

const (
	// DefaultInterval is the delay between polls.
	DefaultInterval = 20 * time.Second

	// DefaultRequestTimeout bounds a single fetch.
	DefaultRequestTimeout = 30 * time.Second
)

// FetchFunc retrieves the current telemetry snapshot.
type FetchFunc func(ctx context.Context) ([]domain.TelemetryRecord, error)

// Snapshot is the result of one successful poll. Seq increases by one for
// every snapshot a Poller applies, so it can key caches.
type Snapshot struct {
	Records   []domain.TelemetryRecord
	FetchedAt time.Time
	Seq       uint64
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides DefaultInterval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithRequestTimeout overrides DefaultRequestTimeout. Zero disables the
// per-request deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(p *Poller) {
		if d >= 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets the logger used for poll failures.
func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// Poller periodically calls a FetchFunc and keeps the latest snapshot.
type Poller struct {
	fetch    FetchFunc
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	latest  Snapshot
	hasData bool
	updates chan Snapshot

	inFlight atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New creates a Poller. It does nothing until Start is called.
func New(fetch FetchFunc, opts ...Option) *Poller {
	p := &Poller{
		fetch:    fetch,
		interval: DefaultInterval,
		timeout:  DefaultRequestTimeout,
		logger:   slog.New(slog.DiscardHandler),
		updates:  make(chan Snapshot, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interval returns the configured poll interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start fetches immediately and then on every tick until ctx is cancelled
// or Stop is called. Calling Start on a running Poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.tick()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.ctx.Done():
				return
			case <-ticker.C:
				p.tick()
			}
		}
	}()
}

// Refresh requests an out-of-band fetch. Like a tick, it is dropped when a
// fetch is already running or the Poller is not started.
func (p *Poller) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx != nil && p.ctx.Err() == nil {
		p.tick()
	}
}

// Stop cancels the poll loop and waits for any in-flight fetch to return.
// No fetch starts and no result is applied once Stop has returned.
func (p *Poller) Stop() {
	// Cancelling under mu orders Stop after any Refresh or Start that has
	// already passed its context check, so their wg.Add precedes wg.Wait.
	p.mu.Lock()
	cancel := p.cancel
	if cancel != nil {
		cancel()
	}
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	p.wg.Wait()
}

// Latest returns the most recent snapshot. ok is false until the first
// successful fetch.
func (p *Poller) Latest() (snap Snapshot, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.hasData
}

// Updates delivers each new snapshot. The channel holds one value; a reader
// that falls behind only sees the newest snapshot.
func (p *Poller) Updates() <-chan Snapshot {
	return p.updates
}

// tick starts a fetch unless one is already running.
func (p *Poller) tick() {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.Debug("telemetry poll skipped, previous request still running")
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inFlight.Store(false)
		p.poll()
	}()
}

func (p *Poller) poll() {
	ctx := p.ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	records, err := p.fetch(ctx)
	if err != nil {
		if p.ctx.Err() != nil {
			return
		}
		p.logger.Warn("telemetry poll failed", "error", err, "duration", time.Since(start))
		return
	}
	p.apply(records)
}

func (p *Poller) apply(records []domain.TelemetryRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx.Err() != nil {
		return
	}
	if records == nil {
		records = []domain.TelemetryRecord{}
	}
	p.latest = Snapshot{
		Records:   records,
		FetchedAt: time.Now(),
		Seq:       p.latest.Seq + 1,
	}
	p.hasData = true

	// Newest wins: replace any unread snapshot.
	select {
	case <-p.updates:
	default:
	}
	p.updates <- p.latest

	p.logger.Debug("telemetry snapshot updated", "records", len(records), "seq", p.latest.Seq)
}
