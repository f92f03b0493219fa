// Package export renders telemetry snapshots and finished spans into
// interchange formats and writes them to disk under a file lock.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/picotel/picotel/telemetry"
)

// Histogram bucket upper bounds in microseconds.
var bucketBounds = []uint64{100, 500, 1000, 5000, 10000, 50000, 100000}

// PrometheusExporter renders snapshots in the Prometheus text
// exposition format.
type PrometheusExporter struct {
	prefix      string
	includeHelp bool
	includeType bool
}

// NewPrometheus returns an exporter that prefixes every metric name.
func NewPrometheus(prefix string) *PrometheusExporter {
	return &PrometheusExporter{
		prefix:      prefix,
		includeHelp: true,
		includeType: true,
	}
}

// WithoutHelp suppresses # HELP lines.
func (e *PrometheusExporter) WithoutHelp() *PrometheusExporter {
	e.includeHelp = false
	return e
}

// WithoutType suppresses # TYPE lines.
func (e *PrometheusExporter) WithoutType() *PrometheusExporter {
	e.includeType = false
	return e
}

// Export renders the snapshot. Metric families are emitted in sorted
// name order so output is stable across calls.
func (e *PrometheusExporter) Export(snap telemetry.Snapshot) string {
	var b strings.Builder

	e.writeHeader(&b, "uptime_seconds", "Process uptime in seconds", "gauge")
	fmt.Fprintf(&b, "%s %f\n", e.name("uptime_seconds"), snap.Uptime.Seconds())

	for _, name := range sortedKeys(snap.Counters) {
		metric := sanitize(name) + "_total"
		e.writeHeader(&b, metric, "Event counter", "counter")
		fmt.Fprintf(&b, "%s %d\n", e.name(metric), snap.Counters[name])
	}

	for _, name := range sortedKeys(snap.Gauges) {
		metric := sanitize(name)
		e.writeHeader(&b, metric, "Point-in-time gauge", "gauge")
		fmt.Fprintf(&b, "%s %f\n", e.name(metric), snap.Gauges[name])
	}

	for _, name := range sortedKeys(snap.Operations) {
		op := snap.Operations[name]
		metric := sanitize(name) + "_duration_microseconds"
		e.writeHeader(&b, metric, "Operation duration histogram", "histogram")

		full := e.name(metric)
		for _, bound := range bucketBounds {
			fmt.Fprintf(&b, "%s_bucket{le=\"%d\"} %d\n", full, bound, op.CountBelow(bound))
		}
		fmt.Fprintf(&b, "%s_bucket{le=\"+Inf\"} %d\n", full, op.Count)
		fmt.Fprintf(&b, "%s_sum %d\n", full, op.TotalMicros)
		fmt.Fprintf(&b, "%s_count %d\n", full, op.Count)
	}

	return b.String()
}

func (e *PrometheusExporter) writeHeader(b *strings.Builder, metric, help, typ string) {
	if e.includeHelp {
		fmt.Fprintf(b, "# HELP %s %s\n", e.name(metric), help)
	}
	if e.includeType {
		fmt.Fprintf(b, "# TYPE %s %s\n", e.name(metric), typ)
	}
}

func (e *PrometheusExporter) name(metric string) string {
	if e.prefix == "" {
		return metric
	}
	return sanitize(e.prefix) + "_" + metric
}

// sanitize maps arbitrary metric names onto the Prometheus character
// set. Runs of invalid characters collapse to single underscores.
func sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := false
	for i, r := range name {
		valid := r == '_' || r == ':' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9' && i > 0)
		if !valid {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteRune(r)
		lastUnderscore = r == '_'
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
