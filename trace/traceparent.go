package trace

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedTraceparent reports a traceparent header that does not
// match the 00-<32 hex>-<16 hex>-<2 hex> layout. Headers arrive from
// untrusted callers, so parsing never panics.
var ErrMalformedTraceparent = errors.New("trace: malformed traceparent header")

// Traceparent renders the span's context as a W3C traceparent header:
// version 00, the 128-bit trace identifier as 32 lowercase hex digits
// (populated in its low 64 bits), the 64-bit span identifier as 16
// lowercase hex digits, and the 01 flags field.
func (s *Span) Traceparent() string {
	return fmt.Sprintf("00-%032x-%016x-01", s.TraceID, s.SpanID)
}

// FromTraceparent parses a W3C traceparent header and starts a new span
// continuing the remote trace: it adopts the low 64 bits of the header's
// trace identifier, records the header's span identifier as parent, and
// allocates a fresh span identifier of its own.
func FromTraceparent(header, name string) (*Span, error) {
	parts := strings.Split(header, "-")
	if len(parts) != 4 || parts[0] != "00" {
		return nil, ErrMalformedTraceparent
	}
	if len(parts[1]) != 32 || len(parts[2]) != 16 {
		return nil, ErrMalformedTraceparent
	}

	traceID, err := strconv.ParseUint(parts[1][16:], 16, 64)
	if err != nil {
		return nil, ErrMalformedTraceparent
	}
	parentSpanID, err := strconv.ParseUint(parts[2], 16, 64)
	if err != nil {
		return nil, ErrMalformedTraceparent
	}

	return &Span{
		TraceID:      traceID,
		SpanID:       nextSpanID(),
		ParentSpanID: parentSpanID,
		Name:         name,
		StartNanos:   nowNanos(),
		Attributes:   make(map[string]string),
	}, nil
}
