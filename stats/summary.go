package stats

// Summary is an immutable point-in-time view of an accumulator's derived
// statistics. All values are in the unit the accumulator was fed with.
type Summary struct {
	Count  uint64
	Sum    uint64
	Min    uint64
	Max    uint64
	Mean   float64
	StdDev float64
}

// Rate returns the number of samples per `per` units of the sample's own
// unit. For samples recorded in picoseconds, passing 10^12 yields
// operations per second.
func (s Summary) Rate(per uint64) float64 {
	if s.Count == 0 || s.Sum == 0 {
		return 0
	}
	return float64(s.Count) / (float64(s.Sum) / float64(per))
}
