package logging

import (
	"context"
	"log/slog"

	"github.com/ebreen/luffe/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventID is the standardized structured logging key for inbound message identifiers.
	FieldEventID = "event_id"
	// FieldReelID is the standardized structured logging key for reel media identifiers.
	FieldReelID = "reel_id"
	// FieldSenderID is the standardized structured logging key for the requesting Instagram account.
	FieldSenderID = "sender_id"
	// FieldStage is the standardized structured logging key for processing stage names.
	FieldStage = "stage"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType is the standardized structured logging key for machine-readable event types.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next diagnostic step when a failure is logged.
	FieldErrorHint = "error_hint"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.EventIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldEventID, id))
	}
	if reel, ok := services.ReelIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldReelID, reel))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
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
