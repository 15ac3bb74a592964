package tracing

import (
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestInitTracer_Disabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), DefaultConfig("storefront"))
	if err != nil {
		t.Fatalf("InitTracer(disabled) returned error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown(disabled) returned error: %v", err)
	}
}

func TestInitTracer_Enabled(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	cfg := DefaultConfig("storefront")
	cfg.Enabled = true
	cfg.OTLPEndpoint = "127.0.0.1:0"

	shutdown, err := InitTracer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitTracer(enabled) returned error: %v", err)
	}
	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Errorf("expected *sdktrace.TracerProvider, got %T", otel.GetTracerProvider())
	}
	if err := shutdown(context.Background()); err != nil {
		t.Logf("shutdown returned (expected with unreachable endpoint): %v", err)
	}
}

func TestSampler(t *testing.T) {
	tests := map[float64]string{
		1.5: "AlwaysOnSampler",
		1:   "AlwaysOnSampler",
		0:   "AlwaysOffSampler",
		-1:  "AlwaysOffSampler",
		0.5: "TraceIDRatioBased",
	}
	for rate, want := range tests {
		if got := sampler(rate).Description(); !strings.HasPrefix(got, want) {
			t.Errorf("sampler(%v) = %q, want prefix %q", rate, got, want)
		}
	}
}

func TestPathFilter(t *testing.T) {
	s := pathFilter{next: sdktrace.AlwaysSample(), prefixes: DefaultIgnoredPaths}

	tests := []struct {
		name string
		kind trace.SpanKind
		want sdktrace.SamplingDecision
	}{
		{"GET /health/live", trace.SpanKindServer, sdktrace.Drop},
		{"GET /metrics", trace.SpanKindServer, sdktrace.Drop},
		{"GET /debug/pprof/heap", trace.SpanKindServer, sdktrace.Drop},
		{"GET /api/v1/cart", trace.SpanKindServer, sdktrace.RecordAndSample},
		{"GET /health/live", trace.SpanKindClient, sdktrace.RecordAndSample},
		{"db.get_snapshot", trace.SpanKindServer, sdktrace.RecordAndSample},
	}
	for _, tt := range tests {
		got := s.ShouldSample(sdktrace.SamplingParameters{
			ParentContext: context.Background(),
			Name:          tt.name,
			Kind:          tt.kind,
		})
		if got.Decision != tt.want {
			t.Errorf("ShouldSample(%q, %v) = %v, want %v", tt.name, tt.kind, got.Decision, tt.want)
		}
	}
}
