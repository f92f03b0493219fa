package bench_test

import (
	"strings"
	"testing"
	"time"

	"github.com/picotel/picotel/bench"
)

func TestRunRecordsAllIterations(t *testing.T) {
	r := bench.NewRunner()
	var calls int
	res := r.Run(10, func() {
		calls++
		time.Sleep(100 * time.Microsecond)
	})

	if calls != 10 {
		t.Errorf("expected 10 calls, got %d", calls)
	}
	if res.N != 10 {
		t.Errorf("expected N=10, got %d", res.N)
	}
	if res.Min <= 0 {
		t.Errorf("expected positive min, got %v", res.Min)
	}
	if res.Max < res.Min {
		t.Errorf("max %v below min %v", res.Max, res.Min)
	}
	if res.P50 > res.P99 {
		t.Errorf("p50 %v above p99 %v", res.P50, res.P99)
	}
}

func TestWarmupNotMeasured(t *testing.T) {
	r := bench.NewRunner().WithWarmup(5)
	var calls int
	res := r.Run(3, func() { calls++ })

	if calls != 8 {
		t.Errorf("expected 5 warmup + 3 measured calls, got %d", calls)
	}
	if res.N != 3 {
		t.Errorf("expected N=3, got %d", res.N)
	}
}

func TestReset(t *testing.T) {
	r := bench.NewRunner()
	r.Run(5, func() { time.Sleep(time.Millisecond) })
	r.Reset()
	res := r.Run(1, func() {})

	// After reset the earlier millisecond sleeps must be gone.
	if res.Max >= time.Millisecond {
		t.Errorf("expected reset to discard prior samples, max %v", res.Max)
	}
}

func TestFormat(t *testing.T) {
	if got := (bench.Result{}).Format(); got != "no iterations" {
		t.Errorf("expected empty digest, got %q", got)
	}

	r := bench.NewRunner()
	res := r.Run(4, func() {})
	digest := res.Format()
	for _, field := range []string{"n=4", "min=", "mean=", "p50=", "p99=", "max="} {
		if !strings.Contains(digest, field) {
			t.Errorf("digest missing %q: %q", field, digest)
		}
	}
}
