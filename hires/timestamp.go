package hires

import (
	"fmt"
	"time"
)

// Conversion constants for picosecond arithmetic.
const (
	PicosPerNano   uint64 = 1_000
	PicosPerMicro  uint64 = 1_000_000
	PicosPerMilli  uint64 = 1_000_000_000
	PicosPerSecond uint64 = 1_000_000_000_000
)

// Timestamp is an elapsed-time measurement in picoseconds with
// uncertainty bounds. Estimated marks values derived from the cycle
// counter (sub-nanosecond statistical estimates) as opposed to direct
// wall-clock measurements.
type Timestamp struct {
	Picos           uint64
	UncertaintyLow  uint64
	UncertaintyHigh uint64
	Estimated       bool
}

// FromNanos builds a Timestamp from a direct nanosecond measurement with
// the standard ±500 ps uncertainty band.
func FromNanos(ns uint64) Timestamp {
	ps := ns * PicosPerNano
	if ns > 0 && ps/PicosPerNano != ns {
		ps = ^uint64(0)
	}
	return Timestamp{
		Picos:           ps,
		UncertaintyLow:  500,
		UncertaintyHigh: 500,
	}
}

// FromPicos builds an estimated Timestamp with symmetric uncertainty.
func FromPicos(ps, uncertainty uint64) Timestamp {
	return Timestamp{
		Picos:           ps,
		UncertaintyLow:  uncertainty,
		UncertaintyHigh: uncertainty,
		Estimated:       true,
	}
}

// Sub returns t − other. The difference saturates at zero instead of
// wrapping, and the uncertainty bounds of both operands are summed.
func (t Timestamp) Sub(other Timestamp) Timestamp {
	var ps uint64
	if t.Picos > other.Picos {
		ps = t.Picos - other.Picos
	}
	return Timestamp{
		Picos:           ps,
		UncertaintyLow:  t.UncertaintyLow + other.UncertaintyLow,
		UncertaintyHigh: t.UncertaintyHigh + other.UncertaintyHigh,
		Estimated:       t.Estimated || other.Estimated,
	}
}

// Nanoseconds converts to nanoseconds, truncating sub-nanosecond detail.
func (t Timestamp) Nanoseconds() uint64 { return t.Picos / PicosPerNano }

// Microseconds converts to microseconds (lossy).
func (t Timestamp) Microseconds() uint64 { return t.Picos / PicosPerMicro }

// Milliseconds converts to milliseconds (lossy).
func (t Timestamp) Milliseconds() uint64 { return t.Picos / PicosPerMilli }

// Seconds converts to seconds as a float64 for display.
func (t Timestamp) Seconds() float64 {
	return float64(t.Picos) / float64(PicosPerSecond)
}

// Duration converts to a time.Duration, truncating below a nanosecond.
func (t Timestamp) Duration() time.Duration {
	return time.Duration(t.Nanoseconds())
}

// Format renders the timestamp in the coarsest unit whose value is at
// least one: ps, ns, µs, ms, or s.
func (t Timestamp) Format() string {
	switch {
	case t.Picos < PicosPerNano:
		return fmt.Sprintf("%dps", t.Picos)
	case t.Picos < PicosPerMicro:
		return fmt.Sprintf("%.3fns", float64(t.Picos)/float64(PicosPerNano))
	case t.Picos < PicosPerMilli:
		return fmt.Sprintf("%.3fµs", float64(t.Picos)/float64(PicosPerMicro))
	case t.Picos < PicosPerSecond:
		return fmt.Sprintf("%.3fms", float64(t.Picos)/float64(PicosPerMilli))
	default:
		return fmt.Sprintf("%.3fs", t.Seconds())
	}
}

// FormatWithUncertainty renders the timestamp followed by its
// uncertainty bounds in picoseconds.
func (t Timestamp) FormatWithUncertainty() string {
	if t.UncertaintyLow == t.UncertaintyHigh {
		return fmt.Sprintf("%s (±%dps)", t.Format(), t.UncertaintyLow)
	}
	return fmt.Sprintf("%s (+%d/-%dps)", t.Format(), t.UncertaintyHigh, t.UncertaintyLow)
}
