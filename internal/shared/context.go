package shared

import "context"

// TenantContext carries the resolved identity for one request: the principal,
// the organization it is acting in, and its role within that organization.
// It is built once by the session middleware and never mutated afterwards.
type TenantContext struct {
	PrincipalID string
	OrgID       string
	Role        Role
}

// Authenticated reports whether a principal has been resolved.
func (t *TenantContext) Authenticated() bool {
	return t != nil && t.PrincipalID != ""
}

type tenantContextKey struct{}

// ContextWithTenant stores the tenant context in ctx.
func ContextWithTenant(ctx context.Context, tc *TenantContext) context.Context {
	return context.WithValue(ctx, tenantContextKey{}, tc)
}

// TenantFromContext extracts the tenant context, or nil when none was resolved.
func TenantFromContext(ctx context.Context) *TenantContext {
	tc, _ := ctx.Value(tenantContextKey{}).(*TenantContext)
	return tc
}
