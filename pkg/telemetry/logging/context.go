package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for purge run IDs.
	RunIDKey contextKey = "run_id"

	// RootKey is the context key for the root project UUID.
	RootKey contextKey = "root_uuid"
)

// WithRunID adds a purge run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the purge run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithRoot adds a root project UUID to the context.
func WithRoot(ctx context.Context, rootUUID string) context.Context {
	return context.WithValue(ctx, RootKey, rootUUID)
}

// GetRoot retrieves the root project UUID from the context.
func GetRoot(ctx context.Context) string {
	if root, ok := ctx.Value(RootKey).(string); ok {
		return root
	}
	return ""
}

// extractContextFields extracts the log fields carried by ctx.
func extractContextFields(ctx context.Context) []slog.Attr {
	var fields []slog.Attr

	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, slog.String("run_id", runID))
	}
	if root := GetRoot(ctx); root != "" {
		fields = append(fields, slog.String("root_uuid", root))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	return fields
}

// contextHandler adds the context fields to every record.
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		r.AddAttrs(extractContextFields(ctx)...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}
