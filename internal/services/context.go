package services

import "context"

type contextKey string

const (
	puppetIDKey  contextKey = "puppet_id"
	requestIDKey contextKey = "request_id"
)

// WithPuppetID annotates context with the puppet being edited or served.
func WithPuppetID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, puppetIDKey, id)
}

// PuppetIDFromContext returns the puppet identifier if present.
func PuppetIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(puppetIDKey).(string); ok && v != "" {
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
