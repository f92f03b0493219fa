package stats

import (
	"math"
	"sync/atomic"
)

// squareReduction divides samples before squaring so the running sum of
// squares stays within uint64 range for picosecond-scale inputs.
const squareReduction = 1000

// Concurrent is a lock-free statistical accumulator. Every field is an
// independently updated atomic, so Record may be called from unboundedly
// many goroutines. No ordering is guaranteed between interleaved Record
// calls; only the aggregate is correct once all calls complete.
//
// The sum of squares is kept in a reduced unit (sample/1000, squared) to
// bound overflow, and rescaled when the variance is derived. Standard
// deviation is therefore approximate for sample magnitudes below the
// reduction factor, where it reports zero.
type Concurrent struct {
	count atomic.Uint64
	sum   atomic.Uint64
	min   atomic.Uint64
	max   atomic.Uint64
	sumSq atomic.Uint64
}

// NewConcurrent returns an empty accumulator ready for use.
func NewConcurrent() *Concurrent {
	c := &Concurrent{}
	c.min.Store(math.MaxUint64)
	return c
}

// Record folds one sample into the aggregate.
func (c *Concurrent) Record(v uint64) {
	c.count.Add(1)
	c.sum.Add(v)

	// CAS retry loops for the extrema. Each loop runs only while a
	// competing update has not already moved the extremum past v.
	for {
		cur := c.min.Load()
		if v >= cur {
			break
		}
		if c.min.CompareAndSwap(cur, v) {
			break
		}
	}
	for {
		cur := c.max.Load()
		if v <= cur {
			break
		}
		if c.max.CompareAndSwap(cur, v) {
			break
		}
	}

	r := v / squareReduction
	c.sumSq.Add(r * r)
}

// Count returns the number of recorded samples.
func (c *Concurrent) Count() uint64 { return c.count.Load() }

// Sum returns the running total of all samples.
func (c *Concurrent) Sum() uint64 { return c.sum.Load() }

// Snapshot derives the current aggregate statistics. Concurrent Record
// calls may land between field reads; the result is exact once all
// writers have finished.
func (c *Concurrent) Snapshot() Summary {
	count := c.count.Load()
	sum := c.sum.Load()
	min := c.min.Load()
	max := c.max.Load()
	sumSq := c.sumSq.Load()

	s := Summary{Count: count, Sum: sum, Max: max}
	if min != math.MaxUint64 {
		s.Min = min
	}
	if count == 0 {
		return s
	}

	s.Mean = float64(sum) / float64(count)
	if count > 1 {
		// Variance = E[x²] − mean², computed in the reduced unit and
		// rescaled. Clamped at zero: the reduced-unit arithmetic can
		// drift slightly negative.
		meanReduced := s.Mean / squareReduction
		variance := float64(sumSq)/float64(count) - meanReduced*meanReduced
		if variance > 0 {
			s.StdDev = math.Sqrt(variance) * squareReduction
		}
	}
	return s
}

// Reset restores every field to its identity value. Not atomic with
// respect to concurrent Record calls; quiesce writers first.
func (c *Concurrent) Reset() {
	c.count.Store(0)
	c.sum.Store(0)
	c.min.Store(math.MaxUint64)
	c.max.Store(0)
	c.sumSq.Store(0)
}
