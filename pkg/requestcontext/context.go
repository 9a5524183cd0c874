// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Values are typically set by transport middleware and consumed by services.
// Keeping this package free of net/http lets services import only what they
// need.
//
// Usage in services (read values):
//
//	registrarID := requestcontext.RegistrarID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	"domreg/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	registrarIDKey struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// RegistrarID retrieves the authenticated registrar from the context.
// Returns the empty value if not set.
func RegistrarID(ctx context.Context) domain.RegistrarID {
	if id, ok := ctx.Value(registrarIDKey{}).(domain.RegistrarID); ok {
		return id
	}
	return ""
}

// WithRegistrarID injects a registrar ID into the context.
func WithRegistrarID(ctx context.Context, id domain.RegistrarID) context.Context {
	return context.WithValue(ctx, registrarIDKey{}, id)
}

// RequestID retrieves the request correlation ID from the context.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a request correlation ID into the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// Now returns the pinned transaction time for the request, falling back to
// the wall clock when none was set. Command processing pins one time per
// request so every policy comparison within a command sees the same "now".
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now().UTC()
}

// WithTime pins the request time in the context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
