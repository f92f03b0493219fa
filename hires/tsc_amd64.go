//go:build amd64

package hires

const hasCycleCounter = true

// cycles reads the CPU timestamp counter. Implemented in assembly.
func cycles() uint64
