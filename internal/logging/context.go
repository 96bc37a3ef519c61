package logging

import (
	"context"
	"regexp"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ContextFields extracts correlation data from ctx.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 5)

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		fields = append(fields, zap.String("request.id", requestID))
	}
	if sessionID := SessionIDFromContext(ctx); sessionID != "" {
		fields = append(fields, zap.String("chat.session_id", sessionID))
	}
	if visitorID := VisitorIDFromContext(ctx); visitorID != "" {
		fields = append(fields, zap.String("chat.visitor_id", visitorID))
	}
	return fields
}

type requestCtxKey struct{}
type sessionCtxKey struct{}
type visitorCtxKey struct{}

const maxIDLen = 128

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func validID(id string) bool {
	return id != "" && len(id) <= maxIDLen && idPattern.MatchString(id)
}

// WithRequestID adds a request id to ctx. Ids from untrusted headers that
// are empty, too long or contain other than [a-zA-Z0-9_-] are dropped.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if !validID(requestID) {
		return ctx
	}
	return context.WithValue(ctx, requestCtxKey{}, requestID)
}

// RequestIDFromContext returns the request id or "".
func RequestIDFromContext(ctx context.Context) string {
	s, _ := ctx.Value(requestCtxKey{}).(string)
	return s
}

// WithSessionID adds a chat session id to ctx.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if !validID(sessionID) {
		return ctx
	}
	return context.WithValue(ctx, sessionCtxKey{}, sessionID)
}

// SessionIDFromContext returns the chat session id or "".
func SessionIDFromContext(ctx context.Context) string {
	s, _ := ctx.Value(sessionCtxKey{}).(string)
	return s
}

// WithVisitorID adds the anonymous visitor id to ctx.
func WithVisitorID(ctx context.Context, visitorID string) context.Context {
	if !validID(visitorID) {
		return ctx
	}
	return context.WithValue(ctx, visitorCtxKey{}, visitorID)
}

// VisitorIDFromContext returns the visitor id or "".
func VisitorIDFromContext(ctx context.Context) string {
	s, _ := ctx.Value(visitorCtxKey{}).(string)
	return s
}
