// Package stream publishes metric events to subscribed handlers with
// per-metric rate limiting and threshold alerting.
//
// A Stream fans each published event out to every subscriber.
// Publishes for a given metric name are rate limited to one event per
// configured interval; events arriving faster are dropped silently.
// Gauge publishes are additionally checked against registered alerts,
// and the first matching alert whose threshold is crossed emits a
// ThresholdEvent.
package stream

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMinInterval is the minimum spacing between published events
// for a single metric name when no interval is configured.
const DefaultMinInterval = 100 * time.Millisecond

// Handler receives metric events from a Stream.
//
// Handlers are invoked synchronously on the publishing goroutine and
// must not call back into the Stream.
type Handler interface {
	HandleMetric(Event)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(Event)

func (f HandlerFunc) HandleMetric(e Event) { f(e) }

// Direction selects which side of a threshold triggers an alert.
type Direction int

const (
	// Above fires when the gauge value exceeds the threshold.
	Above Direction = iota
	// Below fires when the gauge value drops under the threshold.
	Below
)

func (d Direction) String() string {
	if d == Below {
		return "below"
	}
	return "above"
}

// Alert matches gauge metrics whose name contains Pattern and fires
// when the published value crosses Threshold in the configured
// Direction.
type Alert struct {
	Pattern   string
	Threshold float64
	Direction Direction
}

// Stream fans metric events out to subscribers.
type Stream struct {
	subMu    sync.RWMutex
	handlers []Handler

	alertMu sync.RWMutex
	alerts  []Alert

	limitMu     sync.Mutex
	limiters    map[string]*rate.Limiter
	minInterval time.Duration
}

// New returns a Stream with the default per-metric rate limit.
func New() *Stream {
	return NewWithInterval(DefaultMinInterval)
}

// NewWithInterval returns a Stream that emits at most one event per
// metric name every minInterval. An interval of zero or less disables
// rate limiting.
func NewWithInterval(minInterval time.Duration) *Stream {
	return &Stream{
		limiters:    make(map[string]*rate.Limiter),
		minInterval: minInterval,
	}
}

// Subscribe registers a handler for all future events.
func (s *Stream) Subscribe(h Handler) {
	s.subMu.Lock()
	s.handlers = append(s.handlers, h)
	s.subMu.Unlock()
}

// SubscribeFunc registers a plain function as a handler.
func (s *Stream) SubscribeFunc(f func(Event)) {
	s.Subscribe(HandlerFunc(f))
}

// SubscriberCount reports the number of registered handlers.
func (s *Stream) SubscriberCount() int {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	return len(s.handlers)
}

// ClearSubscribers removes all registered handlers.
func (s *Stream) ClearSubscribers() {
	s.subMu.Lock()
	s.handlers = nil
	s.subMu.Unlock()
}

// AddAlert registers a threshold alert. Alerts are evaluated in
// registration order and at most one fires per gauge publish.
func (s *Stream) AddAlert(a Alert) {
	s.alertMu.Lock()
	s.alerts = append(s.alerts, a)
	s.alertMu.Unlock()
}

// PublishCounter publishes a counter increment.
func (s *Stream) PublishCounter(name string, value uint64) {
	if !s.allow(name) {
		return
	}
	s.emit(CounterEvent{Name: name, Value: value})
}

// PublishGauge publishes a gauge reading and evaluates alerts.
func (s *Stream) PublishGauge(name string, value float64) {
	if !s.allow(name) {
		return
	}
	s.emit(GaugeEvent{Name: name, Value: value})
	s.checkAlerts(name, value)
}

// PublishTiming publishes an operation duration.
func (s *Stream) PublishTiming(name string, d time.Duration) {
	if !s.allow(name) {
		return
	}
	us := d.Microseconds()
	if us < 0 {
		us = 0
	}
	s.emit(TimingEvent{Name: name, Micros: uint64(us)})
}

// allow consults the per-metric limiter, creating it on first use.
func (s *Stream) allow(name string) bool {
	if s.minInterval <= 0 {
		return true
	}
	s.limitMu.Lock()
	lim, ok := s.limiters[name]
	if !ok {
		lim = rate.NewLimiter(rate.Every(s.minInterval), 1)
		s.limiters[name] = lim
	}
	s.limitMu.Unlock()
	return lim.Allow()
}

func (s *Stream) checkAlerts(name string, value float64) {
	s.alertMu.RLock()
	var fired *Alert
	for i := range s.alerts {
		a := &s.alerts[i]
		if !strings.Contains(name, a.Pattern) {
			continue
		}
		crossed := (a.Direction == Above && value > a.Threshold) ||
			(a.Direction == Below && value < a.Threshold)
		if crossed {
			cp := *a
			fired = &cp
			break
		}
	}
	s.alertMu.RUnlock()

	if fired != nil {
		s.emit(ThresholdEvent{Name: name, Value: value, Threshold: fired.Threshold})
	}
}

func (s *Stream) emit(e Event) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, h := range s.handlers {
		h.HandleMetric(e)
	}
}
