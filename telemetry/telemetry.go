// Package telemetry aggregates named operation timings, counters, and
// gauges into immutable point-in-time snapshots.
//
// An [Aggregator] is a registry: each operation name owns a single-owner
// statistical reservoir created on first use and living for the life of
// the aggregator. The aggregator itself is not safe for concurrent use;
// callers that share one must serialize externally.
package telemetry

import (
	"time"

	"github.com/picotel/picotel/stats"
)

// Config controls an Aggregator.
type Config struct {
	// Enabled gates collection. When false, every mutating operation is
	// a no-op and snapshots reflect empty state. Checked on every call,
	// so it may be flipped on a quiesced aggregator.
	Enabled bool `mapstructure:"enabled"`

	// SnapshotInterval is the cadence host applications should take
	// snapshots at, surfaced through ShouldSnapshot. Zero or negative
	// means no cadence.
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"`

	// MaxSamples caps each operation's retained raw-sample buffer.
	// Zero selects stats.DefaultMaxSamples.
	MaxSamples int `mapstructure:"max_samples"`
}

// DefaultSnapshotInterval is the snapshot cadence used by DefaultConfig.
const DefaultSnapshotInterval = time.Minute

// DefaultConfig returns an enabled configuration with default limits.
func DefaultConfig() Config {
	return Config{Enabled: true, SnapshotInterval: DefaultSnapshotInterval}
}

// Aggregator collects named metrics. Obtain one from New.
type Aggregator struct {
	cfg          Config
	start        time.Time
	lastSnapshot time.Time
	operations   map[string]*stats.Reservoir
	counters     map[string]uint64
	gauges       map[string]float64
}

// New returns an empty aggregator with the given configuration.
func New(cfg Config) *Aggregator {
	now := time.Now()
	return &Aggregator{
		cfg:          cfg,
		start:        now,
		lastSnapshot: now,
		operations:   make(map[string]*stats.Reservoir),
		counters:     make(map[string]uint64),
		gauges:       make(map[string]float64),
	}
}

// NewDefault returns an enabled aggregator with default limits.
func NewDefault() *Aggregator {
	return New(DefaultConfig())
}

// RecordOperation folds one duration into the named operation's
// accumulator, creating it on first use. Durations are tracked at
// microsecond granularity.
func (a *Aggregator) RecordOperation(name string, d time.Duration) {
	if !a.cfg.Enabled {
		return
	}
	acc, ok := a.operations[name]
	if !ok {
		acc = stats.NewReservoirCap(a.cfg.MaxSamples)
		a.operations[name] = acc
	}
	us := d.Microseconds()
	if us < 0 {
		us = 0
	}
	acc.Record(uint64(us))
}

// IncrementCounter adds one to the named counter, creating it at zero on
// first use.
func (a *Aggregator) IncrementCounter(name string) {
	a.AddToCounter(name, 1)
}

// AddToCounter adds n to the named counter.
func (a *Aggregator) AddToCounter(name string, n uint64) {
	if !a.cfg.Enabled {
		return
	}
	a.counters[name] += n
}

// SetGauge sets the named gauge to value.
func (a *Aggregator) SetGauge(name string, value float64) {
	if !a.cfg.Enabled {
		return
	}
	a.gauges[name] = value
}

// Uptime returns the time since the aggregator was created.
func (a *Aggregator) Uptime() time.Duration {
	return time.Since(a.start)
}

// ShouldSnapshot reports whether at least one snapshot interval has
// passed since creation or the last Reset. Taking a snapshot does not
// restart the clock; callers that snapshot on this cadence follow up
// with Reset. Always false when collection is disabled or no interval
// is configured.
func (a *Aggregator) ShouldSnapshot() bool {
	if !a.cfg.Enabled || a.cfg.SnapshotInterval <= 0 {
		return false
	}
	return time.Since(a.lastSnapshot) >= a.cfg.SnapshotInterval
}

// Reset clears all accumulators, counters, and gauges, and restarts the
// since-last-snapshot clock.
func (a *Aggregator) Reset() {
	a.operations = make(map[string]*stats.Reservoir)
	a.counters = make(map[string]uint64)
	a.gauges = make(map[string]float64)
	a.lastSnapshot = time.Now()
}
