package hires

import (
	"fmt"

	"github.com/picotel/picotel/stats"
)

// Measure runs f once and returns its elapsed time.
func Measure(f func()) Timestamp {
	timer := Start()
	f()
	return timer.Elapsed()
}

// MeasureN runs f n times, recording each run's elapsed picoseconds into
// a fresh accumulator, and returns the n closure results together with
// the aggregate statistics.
func MeasureN[T any](n int, f func() T) ([]T, stats.Summary) {
	acc := stats.NewConcurrent()
	results := make([]T, 0, n)

	for i := 0; i < n; i++ {
		timer := Start()
		results = append(results, f())
		acc.Record(timer.Elapsed().Picos)
	}

	return results, acc.Snapshot()
}

// OpsPerSecond derives throughput from a picosecond-valued summary, as
// produced by MeasureN.
func OpsPerSecond(s stats.Summary) float64 {
	return s.Rate(PicosPerSecond)
}

// FormatSummary renders a picosecond-valued summary as a one-line
// human-readable digest.
func FormatSummary(s stats.Summary) string {
	if s.Count == 0 {
		return "no samples"
	}
	return fmt.Sprintf("n=%d mean=%s min=%s max=%s stddev=%s",
		s.Count,
		FromPicos(uint64(s.Mean), 0).Format(),
		FromPicos(s.Min, 0).Format(),
		FromPicos(s.Max, 0).Format(),
		FromPicos(uint64(s.StdDev), 0).Format(),
	)
}
