package hires

import (
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

const (
	tscFreqPath = "/sys/devices/system/cpu/cpu0/tsc_freq_khz"
	cpuinfoPath = "/proc/cpuinfo"

	// selfCalibrationInterval bounds the one-time busy-wait in the last
	// calibration tier.
	selfCalibrationInterval = time.Millisecond
)

// clockCalibration holds the process-wide calibrated cycle frequency.
// Zero is the uncalibrated sentinel; the first successful calibration is
// reused for the process lifetime.
type clockCalibration struct {
	freqHz atomic.Uint64
}

var calibration clockCalibration

// cycleFrequency returns the calibrated cycle-counter frequency in Hz,
// calibrating on first use. A zero return means no usable cycle counter;
// callers fall back to the wall clock.
func cycleFrequency() uint64 {
	if f := calibration.freqHz.Load(); f != 0 {
		return f
	}
	f := calibrateFrequency()
	calibration.freqHz.Store(f)
	return f
}

// calibrateFrequency walks the calibration ladder: kernel frequency
// file, reported nominal CPU frequency, then busy-wait self-calibration.
// First success wins.
func calibrateFrequency() uint64 {
	if !hasCycleCounter {
		return 0
	}

	if b, err := os.ReadFile(tscFreqPath); err == nil {
		if khz, err := strconv.ParseUint(strings.TrimSpace(string(b)), 10, 64); err == nil && khz > 0 {
			return khz * 1000
		}
	}

	if b, err := os.ReadFile(cpuinfoPath); err == nil {
		for _, line := range strings.Split(string(b), "\n") {
			if !strings.HasPrefix(line, "cpu MHz") {
				continue
			}
			if _, value, ok := strings.Cut(line, ":"); ok {
				if mhz, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil && mhz > 0 {
					return uint64(mhz * 1e6)
				}
			}
		}
	}

	return selfCalibrate()
}

// selfCalibrate busy-waits a short fixed interval while sampling the
// cycle counter, then derives cycles per second from elapsed wall time.
// Runs at most once per process.
func selfCalibrate() uint64 {
	startCycles := cycles()
	start := time.Now()
	for time.Since(start) < selfCalibrationInterval {
		// spin
	}
	elapsed := time.Since(start)
	delta := cycleDelta(cycles(), startCycles)

	ns := uint64(elapsed.Nanoseconds())
	if ns == 0 {
		return 0
	}
	return delta * 1_000_000_000 / ns
}
