package auth

import (
	"context"
)

type principalContextKey struct{}

// SetPrincipalToContext stores the guard result in ctx for handlers down the chain.
func SetPrincipalToContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// GetPrincipalFromContext returns the principal stored by SetPrincipalToContext.
func GetPrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}

// GetUserFromContext returns the authenticated user, or nil for anonymous requests.
func GetUserFromContext(ctx context.Context) *User {
	p, _ := GetPrincipalFromContext(ctx)
	return p.User
}
