// Package requestid carries a per-request correlation ID through
// context so log lines from the HTTP layer down to the repositories can
// be tied back to one API call.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is unexported so only this package can collide with it.
type contextKey struct{}

// New mints a fresh request ID. Used when the client did not supply an
// X-Request-ID of its own.
func New() string {
	return uuid.NewString()
}

// WithRequestID stores id on the context for handlers, usecases and the
// slog handler to pick up.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the request ID stored on ctx, or the empty string
// for contexts outside the HTTP request path (scheduler ticks, seeds).
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
