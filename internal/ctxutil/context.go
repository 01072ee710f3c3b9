// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// ActorKey is the context key for the authenticated actor.
// Exported so it can be used consistently across packages.
type ActorKey struct{}

// RequestIDKey is the context key for the request correlation id.
type RequestIDKey struct{}

type actor struct {
	id   string
	role string
}

// WithActor returns a context carrying the authenticated actor's id and role.
func WithActor(ctx context.Context, id, role string) context.Context {
	return context.WithValue(ctx, ActorKey{}, actor{id: id, role: role})
}

// ActorFromContext returns the actor id and role from context, or empty
// strings and false if none is set.
func ActorFromContext(ctx context.Context) (id, role string, ok bool) {
	a, ok := ctx.Value(ActorKey{}).(actor)
	return a.id, a.role, ok
}

// WithRequestID returns a context with the request id embedded.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id from context, or empty string if not set.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey{}).(string); ok {
		return v
	}
	return ""
}
