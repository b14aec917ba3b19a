package core

import "context"

// Context keys for rendering options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	sessionKey        contextKey = "session"
)

// WithSuppressHeader marks the context so informational headers are not printed.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// WithSession attaches a session so repeated executions share cycle numbering.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// sessionFrom returns the session on the context, or a fresh one.
func sessionFrom(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionKey).(*Session); ok && s != nil {
		return s
	}
	return NewSession()
}
