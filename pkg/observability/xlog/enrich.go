package xlog

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

const (
	// KeyTraceID trace ID 字段。
	KeyTraceID = "trace_id"
	// KeySpanID span ID 字段。
	KeySpanID = "span_id"
)

// enrichHandler 在 Handle 时从 context 中的 OpenTelemetry span 注入 trace_id、span_id。
// context 中没有有效 span 时原样透传。
type enrichHandler struct {
	base slog.Handler
}

func newEnrichHandler(base slog.Handler) *enrichHandler {
	return &enrichHandler{base: base}
}

func (h *enrichHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *enrichHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		// slog 契约：修改前必须 Clone
		r = r.Clone()
		r.AddAttrs(
			slog.String(KeyTraceID, sc.TraceID().String()),
			slog.String(KeySpanID, sc.SpanID().String()),
		)
	}
	return h.base.Handle(ctx, r)
}

func (h *enrichHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &enrichHandler{base: h.base.WithAttrs(attrs)}
}

func (h *enrichHandler) WithGroup(name string) slog.Handler {
	return &enrichHandler{base: h.base.WithGroup(name)}
}
