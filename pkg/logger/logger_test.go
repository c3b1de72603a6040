package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextFieldsAreAttached(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewFromZap(zap.New(core))

	ctx := WithTraceID(context.Background(), "req-1")
	ctx = WithWorkerID(ctx, 3)
	ctx = WithQuoteID(ctx, "q-9")
	l.Warnf(ctx, "mode %s dropped", "Express")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Message != "mode Express dropped" {
		t.Fatalf("unexpected message %q", e.Message)
	}
	fields := e.ContextMap()
	if fields["trace_id"] != "req-1" || fields["quote_id"] != "q-9" {
		t.Fatalf("missing context fields: %v", fields)
	}
	if fields["worker_id"] != int64(3) {
		t.Fatalf("worker_id not attached: %v", fields)
	}
}

func TestTraceIDRoundTrip(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Fatalf("expected empty trace id, got %q", got)
	}
	if got := TraceID(WithTraceID(context.Background(), "abc")); got != "abc" {
		t.Fatalf("got %q", got)
	}
}
