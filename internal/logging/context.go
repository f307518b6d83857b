package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldBatchID is the standardized structured logging key for ingest batch identifiers.
	FieldBatchID = "batch_id"
	// FieldBatchKind distinguishes the initial scan from incremental additions.
	FieldBatchKind = "batch_kind"
	// FieldEventType names the event a log line records.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to an operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

type contextKey int

const (
	batchIDKey contextKey = iota
	batchKindKey
)

// WithBatch stores the batch identifier and kind on ctx.
func WithBatch(ctx context.Context, id, kind string) context.Context {
	ctx = context.WithValue(ctx, batchIDKey, id)
	return context.WithValue(ctx, batchKindKey, kind)
}

// BatchFromContext returns the batch identifier stored by WithBatch.
func BatchFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(batchIDKey).(string)
	return id, ok && id != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := BatchFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldBatchID, id))
	}
	if kind, ok := ctx.Value(batchKindKey).(string); ok && kind != "" {
		fields = append(fields, slog.String(FieldBatchKind, kind))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
