package domain

import "context"

// contextKey is a private type for context keys to avoid collisions
type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal stores the authenticated external principal id in the context.
func WithPrincipal(ctx context.Context, externalID string) context.Context {
	return context.WithValue(ctx, principalKey, externalID)
}

// PrincipalFromContext returns the authenticated external principal id, or "".
func PrincipalFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(principalKey).(string); ok {
		return v
	}
	return ""
}
