package trace

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestTraceparentFormat(t *testing.T) {
	span := NewRoot("op")
	header := span.Traceparent()

	parts := strings.Split(header, "-")
	if len(parts) != 4 {
		t.Fatalf("expected 4 fields, got %d in %q", len(parts), header)
	}
	if parts[0] != "00" {
		t.Errorf("expected version 00, got %q", parts[0])
	}
	if len(parts[1]) != 32 {
		t.Errorf("expected 32 hex trace-id digits, got %d", len(parts[1]))
	}
	if len(parts[2]) != 16 {
		t.Errorf("expected 16 hex span-id digits, got %d", len(parts[2]))
	}
	if parts[3] != "01" {
		t.Errorf("expected flags 01, got %q", parts[3])
	}
	if header != strings.ToLower(header) {
		t.Errorf("expected lowercase hex, got %q", header)
	}
}

func TestTraceparentRoundTrip(t *testing.T) {
	parent := NewRoot("origin")
	header := parent.Traceparent()

	child, err := FromTraceparent(header, "continuation")
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if child.TraceID != parent.TraceID {
		t.Errorf("trace ID %d != %d", child.TraceID, parent.TraceID)
	}
	if child.ParentSpanID != parent.SpanID {
		t.Errorf("parent span ID %d != %d", child.ParentSpanID, parent.SpanID)
	}
	if child.SpanID == parent.SpanID {
		t.Errorf("continuation must allocate a fresh span ID")
	}
	if child.Name != "continuation" {
		t.Errorf("unexpected name %q", child.Name)
	}
}

func TestFromTraceparentMalformed(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"empty", ""},
		{"too few fields", "00-abc"},
		{"too many fields", "00-0000000000000000000000000000002a-000000000000002a-01-extra"},
		{"wrong version", "01-0000000000000000000000000000002a-000000000000002a-01"},
		{"short trace id", "00-2a-000000000000002a-01"},
		{"short span id", "00-0000000000000000000000000000002a-2a-01"},
		{"non-hex trace id", "00-zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz-000000000000002a-01"},
		{"non-hex span id", "00-0000000000000000000000000000002a-zzzzzzzzzzzzzzzz-01"},
		{"truncated", "00-00000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, err := FromTraceparent(tt.header, "op")
			if !errors.Is(err, ErrMalformedTraceparent) {
				t.Errorf("expected ErrMalformedTraceparent, got %v", err)
			}
			if span != nil {
				t.Errorf("expected nil span for malformed input")
			}
		})
	}
}

func TestFromTraceparentExtractsLow64Bits(t *testing.T) {
	header := fmt.Sprintf("00-%016x%016x-%016x-01", uint64(0xdeadbeef), uint64(0x2a), uint64(7))

	span, err := FromTraceparent(header, "op")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if span.TraceID != 0x2a {
		t.Errorf("expected low 64 bits 0x2a, got %#x", span.TraceID)
	}
	if span.ParentSpanID != 7 {
		t.Errorf("expected parent span ID 7, got %d", span.ParentSpanID)
	}
}
