package authz

import (
	"context"
	"time"
)

// Principal is the authenticated member and its session-relevant attributes.
// It never carries the login secret: the record persisted to the session
// store and returned to the frontend is exactly this shape.
type Principal struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
	TeamID   *int64    `json:"teamId"`
	IssuedAt time.Time `json:"issuedAt"`
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context. The session
// middleware is the only writer; everything downstream reads.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal, or nil when the request is
// unauthenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
