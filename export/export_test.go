package export_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/picotel/picotel/export"
	"github.com/picotel/picotel/telemetry"
	"github.com/picotel/picotel/trace"
)

func sampleSnapshot(t *testing.T) telemetry.Snapshot {
	t.Helper()
	agg := telemetry.NewDefault()
	for _, us := range []int64{50, 150, 250, 750, 1500} {
		agg.RecordOperation("db.query", time.Duration(us)*time.Microsecond)
	}
	agg.AddToCounter("cache_hits", 42)
	agg.SetGauge("memory_mb", 128.5)
	return agg.Snapshot()
}

func TestPrometheusExport(t *testing.T) {
	out := export.NewPrometheus("myapp").Export(sampleSnapshot(t))

	for _, want := range []string{
		"# TYPE myapp_cache_hits_total counter",
		"myapp_cache_hits_total 42",
		"# TYPE myapp_memory_mb gauge",
		"# TYPE myapp_db_query_duration_microseconds histogram",
		`myapp_db_query_duration_microseconds_bucket{le="100"} 1`,
		`myapp_db_query_duration_microseconds_bucket{le="500"} 3`,
		`myapp_db_query_duration_microseconds_bucket{le="1000"} 4`,
		`myapp_db_query_duration_microseconds_bucket{le="+Inf"} 5`,
		"myapp_db_query_duration_microseconds_count 5",
		"myapp_uptime_seconds",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestPrometheusWithoutHelpAndType(t *testing.T) {
	out := export.NewPrometheus("").WithoutHelp().WithoutType().Export(sampleSnapshot(t))
	if strings.Contains(out, "# HELP") || strings.Contains(out, "# TYPE") {
		t.Errorf("expected no comment lines:\n%s", out)
	}
	if !strings.Contains(out, "cache_hits_total 42") {
		t.Errorf("missing unprefixed counter:\n%s", out)
	}
}

func TestPrometheusSanitizesNames(t *testing.T) {
	agg := telemetry.NewDefault()
	agg.IncrementCounter("http.requests-received")
	out := export.NewPrometheus("").Export(agg.Snapshot())
	if !strings.Contains(out, "http_requests_received_total 1") {
		t.Errorf("expected sanitized metric name:\n%s", out)
	}
}

func TestOTLPFormatSpans(t *testing.T) {
	root := trace.NewRoot("handle_request")
	root.SetKind(trace.KindServer)
	root.SetAttribute("http.method", "GET")
	child := trace.NewChild("query", root)
	child.AddEvent("cache_miss")
	child.End()
	root.EndWithError("upstream timeout")

	data, err := export.NewOTLP().WithServiceName("orders").FormatSpans(root, child)
	if err != nil {
		t.Fatalf("FormatSpans: %v", err)
	}
	doc := string(data)

	if got := gjson.Get(doc, "resourceSpans.0.resource.attributes.0.value.stringValue").String(); got != "orders" {
		t.Errorf("expected service name orders, got %q", got)
	}

	spans := gjson.Get(doc, "resourceSpans.0.scopeSpans.0.spans")
	if n := len(spans.Array()); n != 2 {
		t.Fatalf("expected 2 spans, got %d", n)
	}

	first := spans.Get("0")
	if got := first.Get("kind").Int(); got != 2 {
		t.Errorf("expected server kind 2, got %d", got)
	}
	if got := first.Get("status.code").Int(); got != 2 {
		t.Errorf("expected error status 2, got %d", got)
	}
	if got := len(first.Get("traceId").String()); got != 32 {
		t.Errorf("expected 32 hex chars of trace id, got %d", got)
	}
	if first.Get("parentSpanId").Exists() {
		t.Errorf("root span must omit parentSpanId")
	}

	second := spans.Get("1")
	if got := second.Get("parentSpanId").String(); len(got) != 16 {
		t.Errorf("expected 16 hex chars of parent span id, got %q", got)
	}
	if got := second.Get("events.0.name").String(); got != "cache_miss" {
		t.Errorf("expected cache_miss event, got %q", got)
	}
	if got := second.Get("status.code").Int(); got != 1 {
		t.Errorf("expected ok status 1, got %d", got)
	}
}

func TestOTLPSkipsUnfinishedSpans(t *testing.T) {
	active := trace.NewRoot("still_running")
	done := trace.NewRoot("finished")
	done.End()

	data, err := export.NewOTLP().FormatSpans(active, done, nil)
	if err != nil {
		t.Fatalf("FormatSpans: %v", err)
	}

	spans := gjson.GetBytes(data, "resourceSpans.0.scopeSpans.0.spans")
	if n := len(spans.Array()); n != 1 {
		t.Errorf("expected 1 finished span, got %d", n)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.prom")
	content := []byte("picotel_uptime_seconds 1.5\n")

	if err := export.WriteFile(path, content); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("round trip mismatch: %q", got)
	}

	// Second write while uncontended must succeed.
	if err := export.WriteFile(path, []byte("updated\n")); err != nil {
		t.Fatalf("second WriteFile: %v", err)
	}
}
