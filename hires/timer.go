package hires

import (
	"math"
	"math/bits"
	"time"
)

// Timer measures elapsed time from a fixed origin. The zero value is not
// useful; obtain one from Start. A Timer is immutable after Start and
// safe to read from any goroutine.
type Timer struct {
	origin      time.Time
	startCycles uint64
	freqHz      uint64
}

// Start captures the timer origin. When a hardware cycle counter is
// present and its frequency calibrates to a non-zero value, the timer
// operates in the estimated sub-nanosecond tier; otherwise it stays on
// the wall clock. The tier is fixed for the life of the timer.
func Start() Timer {
	t := Timer{startCycles: cycles(), origin: time.Now()}
	if hasCycleCounter {
		t.freqHz = cycleFrequency()
	}
	return t
}

// Elapsed returns the time elapsed since Start. Non-blocking and safe to
// call from any goroutine, any number of times.
func (t Timer) Elapsed() Timestamp {
	if t.freqHz > 0 {
		delta := cycleDelta(cycles(), t.startCycles)
		ps := cyclesToPicos(delta, t.freqHz)
		// Uncertainty of one cycle period.
		return FromPicos(ps, PicosPerSecond/t.freqHz)
	}

	ns := time.Since(t.origin).Nanoseconds()
	if ns < 0 {
		ns = 0
	}
	return FromNanos(uint64(ns))
}

// ElapsedNanos returns elapsed nanoseconds, discarding sub-nanosecond
// detail.
func (t Timer) ElapsedNanos() uint64 { return t.Elapsed().Nanoseconds() }

// ElapsedPicos returns elapsed picoseconds.
func (t Timer) ElapsedPicos() uint64 { return t.Elapsed().Picos }

// cycleDelta subtracts saturating at zero. The counter can step
// backward across core migration or under virtualization; a wrapped
// unsigned difference would read as centuries.
func cycleDelta(end, start uint64) uint64 {
	if end < start {
		return 0
	}
	return end - start
}

// cyclesToPicos converts a cycle delta to picoseconds using a 128-bit
// intermediate product so large deltas cannot overflow; results beyond
// the uint64 range saturate.
func cyclesToPicos(delta, freqHz uint64) uint64 {
	hi, lo := bits.Mul64(delta, PicosPerSecond)
	if hi >= freqHz {
		return math.MaxUint64
	}
	quo, _ := bits.Div64(hi, lo, freqHz)
	return quo
}
