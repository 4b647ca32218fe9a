package audit

import "context"

type actorKey struct{}

// UnknownActor is recorded when no actor was attached to the request context.
const UnknownActor = "unknown"

// WithActor returns a context carrying the acting principal's username.
// The HTTP layer attaches it from the authenticated request.
func WithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the acting principal attached by WithActor, or
// UnknownActor when absent.
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return UnknownActor
}

type clientIPKey struct{}

// WithClientIP returns a context carrying the requesting client's IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIPFromContext is an IPExtractor over WithClientIP. Returns the empty
// string when no IP was attached.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}
