// Package bench runs micro-benchmark loops and summarizes the
// observed latencies with an HDR histogram.
package bench

import (
	"fmt"
	"strings"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/picotel/picotel/hires"
)

// Result summarizes latencies observed over a benchmark run.
type Result struct {
	N    int
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
	P50  time.Duration
	P90  time.Duration
	P99  time.Duration
}

// Runner executes a function repeatedly and records per-call latency
// in microseconds. The histogram tracks values from 1µs to 60s at
// three significant figures.
type Runner struct {
	hist   *hdrhistogram.Histogram
	warmup int
}

// NewRunner returns a Runner with no warmup iterations.
func NewRunner() *Runner {
	return &Runner{
		hist: hdrhistogram.New(1, 60_000_000, 3),
	}
}

// WithWarmup sets the number of untimed iterations executed before
// measurement begins.
func (r *Runner) WithWarmup(n int) *Runner {
	if n > 0 {
		r.warmup = n
	}
	return r
}

// Run invokes f n times and returns the latency distribution. The
// histogram accumulates across calls to Run; use Reset to start over.
func (r *Runner) Run(n int, f func()) Result {
	for i := 0; i < r.warmup; i++ {
		f()
	}

	for i := 0; i < n; i++ {
		elapsed := hires.Measure(f)
		us := int64(elapsed.Microseconds())
		if us < r.hist.LowestTrackableValue() {
			us = r.hist.LowestTrackableValue()
		}
		if us > r.hist.HighestTrackableValue() {
			us = r.hist.HighestTrackableValue()
		}
		_ = r.hist.RecordValue(us)
	}

	return r.result(n)
}

// Reset discards all recorded latencies.
func (r *Runner) Reset() {
	r.hist.Reset()
}

func (r *Runner) result(n int) Result {
	res := Result{N: n}
	if r.hist.TotalCount() == 0 {
		return res
	}
	res.Min = time.Duration(r.hist.Min()) * time.Microsecond
	res.Max = time.Duration(r.hist.Max()) * time.Microsecond
	res.Mean = time.Duration(r.hist.Mean()) * time.Microsecond
	res.P50 = time.Duration(r.hist.ValueAtQuantile(50)) * time.Microsecond
	res.P90 = time.Duration(r.hist.ValueAtQuantile(90)) * time.Microsecond
	res.P99 = time.Duration(r.hist.ValueAtQuantile(99)) * time.Microsecond
	return res
}

// Format renders a one-line digest of the result.
func (res Result) Format() string {
	if res.N == 0 {
		return "no iterations"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "n=%d", res.N)
	fmt.Fprintf(&b, " min=%s", res.Min)
	fmt.Fprintf(&b, " mean=%s", res.Mean)
	fmt.Fprintf(&b, " p50=%s", res.P50)
	fmt.Fprintf(&b, " p90=%s", res.P90)
	fmt.Fprintf(&b, " p99=%s", res.P99)
	fmt.Fprintf(&b, " max=%s", res.Max)
	return b.String()
}
