// Package requestctx carries request-scoped identity through context.
package requestctx

import "context"

// callerContextKey is the context key for the authenticated caller.
type callerContextKey struct{}

// Caller identifies the authenticated principal behind a request.
type Caller struct {
	Subject string
	Admin   bool
}

// WithCaller stores the authenticated caller in context.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, callerContextKey{}, caller)
}

// CallerFromContext returns the caller stored in context, if any.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	if ctx == nil {
		return Caller{}, false
	}
	caller, ok := ctx.Value(callerContextKey{}).(Caller)
	return caller, ok
}
