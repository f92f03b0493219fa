package stats

import (
	"math"
	"sort"
)

// DefaultMaxSamples caps the raw-sample buffer a Reservoir retains for
// percentile extraction. Samples beyond the cap still update count, sum,
// and the extrema; they are simply not retained.
const DefaultMaxSamples = 10000

// Reservoir is a single-owner statistical accumulator with a capped
// raw-sample buffer. It is not safe for concurrent mutation.
type Reservoir struct {
	count   uint64
	sum     uint64
	min     uint64
	max     uint64
	last    uint64
	sumSq   float64
	samples []uint64
	cap     int
}

// NewReservoir returns an empty reservoir with the default sample cap.
func NewReservoir() *Reservoir {
	return NewReservoirCap(DefaultMaxSamples)
}

// NewReservoirCap returns an empty reservoir retaining at most maxSamples
// raw samples. Non-positive caps fall back to the default.
func NewReservoirCap(maxSamples int) *Reservoir {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	return &Reservoir{min: math.MaxUint64, cap: maxSamples}
}

// Record folds one sample into the aggregate and, below the cap, retains
// it for percentile queries.
func (r *Reservoir) Record(v uint64) {
	r.count++
	r.sum += v
	if v < r.min {
		r.min = v
	}
	if v > r.max {
		r.max = v
	}
	r.last = v

	if len(r.samples) < r.cap {
		r.samples = append(r.samples, v)
	}

	f := float64(v)
	r.sumSq += f * f
}

// Count returns the number of recorded samples.
func (r *Reservoir) Count() uint64 { return r.count }

// Sum returns the running total of all samples.
func (r *Reservoir) Sum() uint64 { return r.sum }

// Min returns the smallest recorded sample, or zero when empty.
func (r *Reservoir) Min() uint64 {
	if r.count == 0 {
		return 0
	}
	return r.min
}

// Max returns the largest recorded sample, or zero when empty.
func (r *Reservoir) Max() uint64 { return r.max }

// Last returns the most recently recorded sample.
func (r *Reservoir) Last() uint64 { return r.last }

// Mean returns the arithmetic mean, or zero when empty.
func (r *Reservoir) Mean() float64 {
	if r.count == 0 {
		return 0
	}
	return float64(r.sum) / float64(r.count)
}

// StdDev returns the population standard deviation, defined as zero for
// fewer than two samples.
func (r *Reservoir) StdDev() float64 {
	if r.count < 2 {
		return 0
	}
	mean := r.Mean()
	variance := r.sumSq/float64(r.count) - mean*mean
	if variance <= 0 {
		return 0
	}
	return math.Sqrt(variance)
}

// Percentile returns the nearest-rank percentile over the retained
// samples: the element at index round(p/100 × (n−1)) of the sorted
// buffer, clamped to [0, n−1]. It returns zero when no samples are
// retained.
func (r *Reservoir) Percentile(p float64) uint64 {
	if len(r.samples) == 0 {
		return 0
	}
	sorted := make([]uint64, len(r.samples))
	copy(sorted, r.samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return nearestRank(sorted, p)
}

// CountBelow returns how many retained samples are strictly less than
// threshold. Cumulative histogram buckets are built from this.
func (r *Reservoir) CountBelow(threshold uint64) uint64 {
	var n uint64
	for _, v := range r.samples {
		if v < threshold {
			n++
		}
	}
	return n
}

// Snapshot derives the current aggregate statistics.
func (r *Reservoir) Snapshot() Summary {
	return Summary{
		Count:  r.count,
		Sum:    r.sum,
		Min:    r.Min(),
		Max:    r.max,
		Mean:   r.Mean(),
		StdDev: r.StdDev(),
	}
}

// Samples returns a sorted copy of the retained raw samples.
func (r *Reservoir) Samples() []uint64 {
	sorted := make([]uint64, len(r.samples))
	copy(sorted, r.samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

// Reset restores every field to its identity value and drops the
// retained samples.
func (r *Reservoir) Reset() {
	r.count = 0
	r.sum = 0
	r.min = math.MaxUint64
	r.max = 0
	r.last = 0
	r.sumSq = 0
	r.samples = r.samples[:0]
}

// nearestRank selects from an ascending-sorted slice.
func nearestRank(sorted []uint64, p float64) uint64 {
	idx := int(math.Round(p / 100.0 * float64(len(sorted)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
