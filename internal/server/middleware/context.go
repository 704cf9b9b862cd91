package middleware

import (
	"context"

	"github.com/postpata/pata/internal/auth"
)

type contextKey string

const contextKeyIdentity contextKey = "identity"

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity, id)
}

// IdentityFromContext returns the identity attached by Authorize.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	v, ok := ctx.Value(contextKeyIdentity).(auth.Identity)
	return v, ok
}
