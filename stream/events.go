package stream

// Event is a metric observation passed to subscribed handlers. The
// concrete types are CounterEvent, GaugeEvent, TimingEvent and
// ThresholdEvent.
type Event interface {
	// MetricName reports the name of the metric the event describes.
	MetricName() string

	isEvent()
}

// CounterEvent carries a monotonic counter increment.
type CounterEvent struct {
	Name  string
	Value uint64
}

// GaugeEvent carries a point-in-time gauge reading.
type GaugeEvent struct {
	Name  string
	Value float64
}

// TimingEvent carries an operation duration in microseconds.
type TimingEvent struct {
	Name   string
	Micros uint64
}

// ThresholdEvent is emitted when a gauge reading crosses a configured
// alert threshold.
type ThresholdEvent struct {
	Name      string
	Value     float64
	Threshold float64
}

func (e CounterEvent) MetricName() string   { return e.Name }
func (e GaugeEvent) MetricName() string     { return e.Name }
func (e TimingEvent) MetricName() string    { return e.Name }
func (e ThresholdEvent) MetricName() string { return e.Name }

func (CounterEvent) isEvent()   {}
func (GaugeEvent) isEvent()     {}
func (TimingEvent) isEvent()    {}
func (ThresholdEvent) isEvent() {}
