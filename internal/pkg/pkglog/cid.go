package pkglog

import "context"

type (
	chainIDContextKey   struct{}
	requesterContextKey struct{}
)

// GetCorrelationID returns the correlation ID stored in the context.
//
// Middleware is expected to set this value early in the request lifecycle so
// it can be attached to logs and propagated to Fluig calls.
func GetCorrelationID(ctx context.Context) string {
	if cid, ok := LookupCorrelationID(ctx); ok {
		return cid
	}
	return "[invalid_chain_id]"
}

// LookupCorrelationID reports whether a non-empty correlation ID is set.
func LookupCorrelationID(ctx context.Context) (string, bool) {
	cid, _ := ctx.Value(chainIDContextKey{}).(string)
	return cid, cid != ""
}

// SetCorrelationID stores a correlation ID into the context.
func SetCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, chainIDContextKey{}, cid)
}

// GetRequester returns the e-mail of the user the request acts for, or "".
func GetRequester(ctx context.Context) string {
	v, _ := ctx.Value(requesterContextKey{}).(string)
	return v
}

// SetRequester stores the requester e-mail so every log line of the request carries it.
func SetRequester(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, requesterContextKey{}, email)
}
