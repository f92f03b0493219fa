// Package trace models distributed-trace spans with parent/child
// relationships and W3C-compatible context propagation.
//
// Spans carry identity (trace ID shared across a trace, span ID unique
// per span), parentage, timing, attributes, and timestamped events.
// Identifier allocation is atomic and safe under concurrency; mutation
// of an individual span is not, and each span must stay with a single
// owner while active.
package trace

import (
	"sync/atomic"
	"time"
)

// Kind classifies what a span represents.
type Kind int

const (
	KindInternal Kind = iota
	KindServer
	KindClient
	KindProducer
	KindConsumer
)

// String returns the OTLP-style lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindServer:
		return "server"
	case KindClient:
		return "client"
	case KindProducer:
		return "producer"
	case KindConsumer:
		return "consumer"
	default:
		return "internal"
	}
}

// Status is the outcome recorded when a span ends.
type Status int

const (
	StatusUnset Status = iota
	StatusOK
	StatusError
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	default:
		return "unset"
	}
}

// Event is a timestamped checkpoint within a span.
type Event struct {
	Name       string
	TimeNanos  uint64
	Attributes map[string]string
}

// Span is one operation in a trace. A root span and all of its
// descendants share the same TraceID; each span's SpanID is unique and
// never reused. ParentSpanID is zero for roots.
type Span struct {
	TraceID      uint64
	SpanID       uint64
	ParentSpanID uint64
	Name         string
	Kind         Kind
	StartNanos   uint64
	EndNanos     uint64
	Status       Status
	Attributes   map[string]string
	Events       []Event
}

// idAllocator is the process-wide source of trace and span identifiers.
// Counters are monotonically increasing and never reused, even after
// the spans they named have completed.
type idAllocator struct {
	traceID atomic.Uint64
	spanID  atomic.Uint64
}

var ids idAllocator

func nextTraceID() uint64 { return ids.traceID.Add(1) }
func nextSpanID() uint64  { return ids.spanID.Add(1) }

func nowNanos() uint64 { return uint64(time.Now().UnixNano()) }

// NewRoot starts a new trace with a fresh trace identifier.
func NewRoot(name string) *Span {
	return &Span{
		TraceID:    nextTraceID(),
		SpanID:     nextSpanID(),
		Name:       name,
		StartNanos: nowNanos(),
		Attributes: make(map[string]string),
	}
}

// NewChild starts a span inside the parent's trace, with the parent's
// span identifier recorded as its parent.
func NewChild(name string, parent *Span) *Span {
	return &Span{
		TraceID:      parent.TraceID,
		SpanID:       nextSpanID(),
		ParentSpanID: parent.SpanID,
		Name:         name,
		StartNanos:   nowNanos(),
		Attributes:   make(map[string]string),
	}
}

// SetKind records what the span represents.
func (s *Span) SetKind(k Kind) { s.Kind = k }

// SetAttribute records a key/value attribute. Keys are unique; the last
// write wins.
func (s *Span) SetAttribute(key, value string) {
	s.Attributes[key] = value
}

// AddEvent appends a timestamped event with no attributes.
func (s *Span) AddEvent(name string) {
	s.Events = append(s.Events, Event{Name: name, TimeNanos: nowNanos()})
}

// AddEventWithAttributes appends a timestamped event carrying its own
// attribute mapping.
func (s *Span) AddEventWithAttributes(name string, attrs map[string]string) {
	s.Events = append(s.Events, Event{Name: name, TimeNanos: nowNanos(), Attributes: attrs})
}

// End finalizes the span, fixing its end timestamp. A status left unset
// becomes StatusOK. Ending a span twice is a caller error: the second
// call overwrites the end timestamp.
func (s *Span) End() {
	s.EndNanos = nowNanos()
	if s.Status == StatusUnset {
		s.Status = StatusOK
	}
}

// EndWithError finalizes the span with StatusError and records the
// message under the error.message attribute.
func (s *Span) EndWithError(message string) {
	s.EndNanos = nowNanos()
	s.Status = StatusError
	s.SetAttribute("error.message", message)
}

// Duration returns how long the span ran. Zero while the span is still
// active; otherwise the saturating difference of end and start.
func (s *Span) Duration() time.Duration {
	if s.EndNanos == 0 || s.EndNanos < s.StartNanos {
		return 0
	}
	return time.Duration(s.EndNanos - s.StartNanos)
}

// IsRoot reports whether the span has no parent.
func (s *Span) IsRoot() bool { return s.ParentSpanID == 0 }
