package services

import "context"

type contextKey string

const (
	eventIDKey   contextKey = "event_id"
	reelIDKey    contextKey = "reel_id"
	stageKey     contextKey = "stage"
	requestIDKey contextKey = "request_id"
)

// WithEventID annotates context with the inbound message identifier.
func WithEventID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, eventIDKey, id)
}

// EventIDFromContext extracts the inbound message identifier if present.
func EventIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(eventIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithReelID annotates context with the reel media identifier.
func WithReelID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, reelIDKey, id)
}

// ReelIDFromContext extracts the reel media identifier if present.
func ReelIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(reelIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the processing stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
