package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestContextKeys(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithRoot(ctx, "root-1")

	if got := GetRunID(ctx); got != "run-1" {
		t.Errorf("GetRunID() = %q, want run-1", got)
	}
	if got := GetRoot(ctx); got != "root-1" {
		t.Errorf("GetRoot() = %q, want root-1", got)
	}
}

func TestContextKeys_Empty(t *testing.T) {
	ctx := context.Background()

	if got := GetRunID(ctx); got != "" {
		t.Errorf("GetRunID() = %q, want empty", got)
	}
	if got := GetRoot(ctx); got != "" {
		t.Errorf("GetRoot() = %q, want empty", got)
	}
	if fields := extractContextFields(ctx); len(fields) != 0 {
		t.Errorf("extractContextFields() = %v, want none", fields)
	}
}

func TestExtractContextFields_Span(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	got := map[string]string{}
	for _, attr := range extractContextFields(ctx) {
		got[attr.Key] = attr.Value.String()
	}

	if got["trace_id"] != traceID.String() {
		t.Errorf("trace_id = %q, want %q", got["trace_id"], traceID.String())
	}
	if got["span_id"] != spanID.String() {
		t.Errorf("span_id = %q, want %q", got["span_id"], spanID.String())
	}
}

func TestContextLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	ctx := WithRoot(WithRunID(context.Background(), "run-7"), "root-7")
	logger.With("component", "test").InfoContext(ctx, "cleaning")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	for key, want := range map[string]string{"run_id": "run-7", "root_uuid": "root-7", "component": "test"} {
		if entry[key] != want {
			t.Errorf("%s = %v, want %s", key, entry[key], want)
		}
	}
}

func TestContextOverwrite(t *testing.T) {
	ctx := WithRunID(context.Background(), "first")
	ctx = WithRunID(ctx, "second")

	if got := GetRunID(ctx); got != "second" {
		t.Errorf("GetRunID() = %q, want second", got)
	}
}
