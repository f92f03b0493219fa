package export

import (
	"encoding/json"
	"fmt"

	"github.com/picotel/picotel/trace"
)

// OTLPFormatter renders finished spans as OTLP/JSON trace payloads.
type OTLPFormatter struct {
	serviceName string
}

// NewOTLP returns a formatter using the default service name.
func NewOTLP() *OTLPFormatter {
	return &OTLPFormatter{serviceName: "picotel"}
}

// WithServiceName overrides the service name stamped on the resource.
func (f *OTLPFormatter) WithServiceName(name string) *OTLPFormatter {
	if name != "" {
		f.serviceName = name
	}
	return f
}

type otlpKeyValue struct {
	Key   string       `json:"key"`
	Value otlpAnyValue `json:"value"`
}

type otlpAnyValue struct {
	StringValue string `json:"stringValue"`
}

type otlpEvent struct {
	TimeUnixNano string         `json:"timeUnixNano"`
	Name         string         `json:"name"`
	Attributes   []otlpKeyValue `json:"attributes,omitempty"`
}

type otlpSpan struct {
	TraceID           string         `json:"traceId"`
	SpanID            string         `json:"spanId"`
	ParentSpanID      string         `json:"parentSpanId,omitempty"`
	Name              string         `json:"name"`
	Kind              int            `json:"kind"`
	StartTimeUnixNano string         `json:"startTimeUnixNano"`
	EndTimeUnixNano   string         `json:"endTimeUnixNano"`
	Attributes        []otlpKeyValue `json:"attributes,omitempty"`
	Events            []otlpEvent    `json:"events,omitempty"`
	Status            otlpStatus     `json:"status"`
}

type otlpStatus struct {
	Code int `json:"code"`
}

type otlpScopeSpans struct {
	Scope otlpScope  `json:"scope"`
	Spans []otlpSpan `json:"spans"`
}

type otlpScope struct {
	Name string `json:"name"`
}

type otlpResourceSpans struct {
	Resource   otlpResource     `json:"resource"`
	ScopeSpans []otlpScopeSpans `json:"scopeSpans"`
}

type otlpResource struct {
	Attributes []otlpKeyValue `json:"attributes"`
}

type otlpPayload struct {
	ResourceSpans []otlpResourceSpans `json:"resourceSpans"`
}

// FormatSpans renders the spans as a single OTLP/JSON payload.
// Unfinished spans are skipped.
func (f *OTLPFormatter) FormatSpans(spans ...*trace.Span) ([]byte, error) {
	out := make([]otlpSpan, 0, len(spans))
	for _, s := range spans {
		if s == nil || s.EndNanos == 0 {
			continue
		}
		out = append(out, convertSpan(s))
	}

	payload := otlpPayload{
		ResourceSpans: []otlpResourceSpans{{
			Resource: otlpResource{
				Attributes: []otlpKeyValue{{
					Key:   "service.name",
					Value: otlpAnyValue{StringValue: f.serviceName},
				}},
			},
			ScopeSpans: []otlpScopeSpans{{
				Scope: otlpScope{Name: "picotel"},
				Spans: out,
			}},
		}},
	}
	return json.Marshal(payload)
}

func convertSpan(s *trace.Span) otlpSpan {
	span := otlpSpan{
		TraceID:           fmt.Sprintf("%032x", s.TraceID),
		SpanID:            fmt.Sprintf("%016x", s.SpanID),
		Name:              s.Name,
		Kind:              kindCode(s.Kind),
		StartTimeUnixNano: fmt.Sprintf("%d", s.StartNanos),
		EndTimeUnixNano:   fmt.Sprintf("%d", s.EndNanos),
		Status:            otlpStatus{Code: statusCode(s.Status)},
	}
	if s.ParentSpanID != 0 {
		span.ParentSpanID = fmt.Sprintf("%016x", s.ParentSpanID)
	}
	for _, key := range sortedKeys(s.Attributes) {
		span.Attributes = append(span.Attributes, otlpKeyValue{
			Key:   key,
			Value: otlpAnyValue{StringValue: s.Attributes[key]},
		})
	}
	for _, ev := range s.Events {
		e := otlpEvent{
			TimeUnixNano: fmt.Sprintf("%d", ev.TimeNanos),
			Name:         ev.Name,
		}
		for _, key := range sortedKeys(ev.Attributes) {
			e.Attributes = append(e.Attributes, otlpKeyValue{
				Key:   key,
				Value: otlpAnyValue{StringValue: ev.Attributes[key]},
			})
		}
		span.Events = append(span.Events, e)
	}
	return span
}

func kindCode(k trace.Kind) int {
	switch k {
	case trace.KindInternal:
		return 1
	case trace.KindServer:
		return 2
	case trace.KindClient:
		return 3
	case trace.KindProducer:
		return 4
	case trace.KindConsumer:
		return 5
	default:
		return 0
	}
}

func statusCode(s trace.Status) int {
	switch s {
	case trace.StatusOK:
		return 1
	case trace.StatusError:
		return 2
	default:
		return 0
	}
}
