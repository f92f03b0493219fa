package telemetry

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/picotel/picotel/stats"
)

// OperationStats is the immutable derived view of one operation's
// accumulator at snapshot time. Durations are in microseconds.
type OperationStats struct {
	Count        uint64
	TotalMicros  uint64
	MinMicros    uint64
	MaxMicros    uint64
	MeanMicros   float64
	StdDevMicros float64

	// sorted copy of the retained raw samples, for percentile and
	// histogram queries.
	samples []uint64
}

// Percentile returns the nearest-rank percentile in microseconds over
// the samples retained at snapshot time, or zero when none were.
func (o OperationStats) Percentile(p float64) uint64 {
	if len(o.samples) == 0 {
		return 0
	}
	idx := int(float64(len(o.samples)-1)*p/100.0 + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(o.samples) {
		idx = len(o.samples) - 1
	}
	return o.samples[idx]
}

// CountBelow returns how many retained samples are strictly less than
// the threshold (microseconds). Exporters build cumulative histogram
// buckets from this.
func (o OperationStats) CountBelow(thresholdMicros uint64) uint64 {
	i := sort.Search(len(o.samples), func(i int) bool {
		return o.samples[i] >= thresholdMicros
	})
	return uint64(i)
}

// Snapshot is an immutable copy of aggregator state at one instant.
// Taking a snapshot does not mutate the source aggregator.
type Snapshot struct {
	// ID uniquely identifies this snapshot (ULID, sortable by time).
	ID string

	Uptime            time.Duration
	SinceLastSnapshot time.Duration

	Operations map[string]OperationStats
	Counters   map[string]uint64
	Gauges     map[string]float64
}

// Snapshot copies the aggregator's current state. The aggregator is
// not mutated: metrics keep accumulating and the since-last-snapshot
// clock keeps running until Reset.
func (a *Aggregator) Snapshot() Snapshot {
	snap := Snapshot{
		ID:                ulid.Make().String(),
		Uptime:            time.Since(a.start),
		SinceLastSnapshot: time.Since(a.lastSnapshot),
		Operations:        make(map[string]OperationStats, len(a.operations)),
		Counters:          make(map[string]uint64, len(a.counters)),
		Gauges:            make(map[string]float64, len(a.gauges)),
	}

	for name, acc := range a.operations {
		snap.Operations[name] = newOperationStats(acc)
	}
	for name, v := range a.counters {
		snap.Counters[name] = v
	}
	for name, v := range a.gauges {
		snap.Gauges[name] = v
	}
	return snap
}

func newOperationStats(acc *stats.Reservoir) OperationStats {
	return OperationStats{
		Count:        acc.Count(),
		TotalMicros:  acc.Sum(),
		MinMicros:    acc.Min(),
		MaxMicros:    acc.Max(),
		MeanMicros:   acc.Mean(),
		StdDevMicros: acc.StdDev(),
		samples:      acc.Samples(),
	}
}

// Summary renders a human-readable digest of the snapshot.
func (s Snapshot) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Telemetry Snapshot %s (uptime: %s) ===\n", s.ID, s.Uptime.Round(time.Second))

	if len(s.Operations) > 0 {
		b.WriteString("\nOperations:\n")
		for _, name := range sortedKeys(s.Operations) {
			op := s.Operations[name]
			fmt.Fprintf(&b, "  %s: count=%d, avg=%.2fµs, min=%dµs, max=%dµs\n",
				name, op.Count, op.MeanMicros, op.MinMicros, op.MaxMicros)
		}
	}
	if len(s.Counters) > 0 {
		b.WriteString("\nCounters:\n")
		for _, name := range sortedKeys(s.Counters) {
			fmt.Fprintf(&b, "  %s: %d\n", name, s.Counters[name])
		}
	}
	if len(s.Gauges) > 0 {
		b.WriteString("\nGauges:\n")
		for _, name := range sortedKeys(s.Gauges) {
			fmt.Fprintf(&b, "  %s: %.4f\n", name, s.Gauges[name])
		}
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
