// Package hires provides high-resolution elapsed-time measurement with
// sub-nanosecond estimated precision where the hardware supports it.
//
// # Timer
//
// A [Timer] captures its origin at [Start] and reports elapsed time as a
// picosecond [Timestamp] with uncertainty bounds:
//
//	timer := hires.Start()
//	// ... work ...
//	elapsed := timer.Elapsed()
//	fmt.Println(elapsed.Format())
//
// On amd64 the timer reads the CPU timestamp counter and converts the
// cycle delta using a calibrated cycles-per-second frequency, giving an
// estimated resolution of one cycle period. Everywhere else, and
// whenever calibration fails, it degrades silently to the monotonic wall
// clock at nanosecond resolution with a fixed ±500 ps uncertainty band.
// The precision tier is fixed when the timer starts and never changes
// mid-life.
//
// # Calibration
//
// The cycle-counter frequency is calibrated at most once per process and
// cached in atomic state. Three sources are tried in order, first
// success wins: a kernel-exposed frequency file, the nominal CPU
// frequency reported by /proc/cpuinfo, and a ~1 ms busy-wait
// self-calibration. Failure is never surfaced; a zero frequency simply
// selects the wall-clock tier.
//
// # Measurement helpers
//
// [Measure] times a single closure. [MeasureN] runs a closure N times,
// feeds every elapsed duration into a fresh concurrent accumulator, and
// returns the closure results together with the aggregate statistics.
package hires
