package authz

import "context"

// Resolver answers authorization questions for the principal attached to a
// request context. It holds no state of its own: every call re-derives the
// answer from the live principal, so role changes take effect on the next
// request without cache invalidation.
type Resolver struct{}

// Can reports whether the current principal holds the capability. When no
// principal is authenticated the answer is false for every capability.
func (Resolver) Can(ctx context.Context, c Capability) bool {
	p := PrincipalFromContext(ctx)
	if p == nil {
		return false
	}
	return CapabilitiesFor(p.Role).Has(c)
}

// CapabilitySet returns the full set for the current principal, or an
// all-denied set when unauthenticated. The frontend uses it to decide which
// actions to render; it is advisory only, the upstream API enforces the
// same checks independently.
func (Resolver) CapabilitySet(ctx context.Context) CapabilitySet {
	p := PrincipalFromContext(ctx)
	if p == nil {
		return AllDenied()
	}
	return CapabilitiesFor(p.Role)
}
