// Package rbac implements role checks over the resolved tenant context.
//
// Checks are pure functions: no lookups, no side effects. A context with no
// role fails every check. Failures surface as httpx.ErrForbidden without
// naming the role that would have passed.
package rbac

import (
	"github.com/veridian-grc/veridian/internal/platform/httpx"
	"github.com/veridian-grc/veridian/internal/shared"
)

// Per-role grant tables. Every member of the closed role set appears in each
// table so a new role cannot be introduced without deciding its grants here.
var (
	mutationGrants = map[shared.Role]bool{
		shared.RoleOrgAdmin:          true,
		shared.RoleComplianceManager: true,
		shared.RoleAuditor:           false,
		shared.RoleViewer:            false,
		shared.RoleBillingAdmin:      false,
	}

	adminGrants = map[shared.Role]bool{
		shared.RoleOrgAdmin:          true,
		shared.RoleComplianceManager: false,
		shared.RoleAuditor:           false,
		shared.RoleViewer:            false,
		shared.RoleBillingAdmin:      false,
	}
)

// HasRole reports whether the context holds one of the given roles.
func HasRole(tc *shared.TenantContext, roles ...shared.Role) bool {
	if tc == nil || !tc.Role.Valid() {
		return false
	}
	for _, role := range roles {
		if tc.Role == role {
			return true
		}
	}
	return false
}

// RequireRole fails with httpx.ErrForbidden unless the context holds one of
// the given roles.
func RequireRole(tc *shared.TenantContext, roles ...shared.Role) error {
	if !HasRole(tc, roles...) {
		return httpx.ErrForbidden
	}
	return nil
}

// IsMember reports whether the context holds any valid role in the
// organization.
func IsMember(tc *shared.TenantContext) bool {
	return tc != nil && tc.Role.Valid()
}

// CanMutate reports whether the context may perform write operations.
func CanMutate(tc *shared.TenantContext) bool {
	return tc != nil && mutationGrants[tc.Role]
}

// RequireMutate fails with httpx.ErrForbidden unless the context may write.
func RequireMutate(tc *shared.TenantContext) error {
	if !CanMutate(tc) {
		return httpx.ErrForbidden
	}
	return nil
}

// IsAdmin reports whether the context holds organization-admin rights.
func IsAdmin(tc *shared.TenantContext) bool {
	return tc != nil && adminGrants[tc.Role]
}

// RequireAdmin fails with httpx.ErrForbidden unless the context is an admin.
func RequireAdmin(tc *shared.TenantContext) error {
	if !IsAdmin(tc) {
		return httpx.ErrForbidden
	}
	return nil
}
