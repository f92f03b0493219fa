// Package stats provides statistical accumulators for scalar samples such
// as durations or sizes.
//
// Two accumulator variants share the same statistical contract with
// different concurrency disciplines:
//
//   - [Concurrent] uses atomic operations exclusively and may be fed from
//     any number of goroutines without locking. It keeps count, sum, min,
//     max, and a reduced-precision sum of squares.
//   - [Reservoir] is a single-owner accumulator that additionally retains
//     up to [DefaultMaxSamples] raw samples for percentile extraction and
//     cumulative histogram queries. It is not safe for concurrent
//     mutation; callers that share one must serialize externally.
//
// Both variants produce an immutable [Summary] value:
//
//	acc := stats.NewConcurrent()
//	acc.Record(1200)
//	acc.Record(800)
//	s := acc.Snapshot()
//	fmt.Printf("n=%d mean=%.1f\n", s.Count, s.Mean)
//
// Empty accumulators are well defined: min reports zero, mean and
// standard deviation report zero, and percentiles report zero. Standard
// deviation is defined as zero for fewer than two samples.
package stats
