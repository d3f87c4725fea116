package shared

// Role is the permission level a principal holds within one organization.
// The set is closed: permission tables in the rbac package enumerate every
// role explicitly so a new role cannot be added without deciding its grants.
type Role string

const (
	// RoleNone is the zero value: the principal has no role in the
	// organization and fails every role check.
	RoleNone Role = ""

	RoleOrgAdmin          Role = "org_admin"
	RoleComplianceManager Role = "compliance_manager"
	RoleAuditor           Role = "auditor"
	RoleViewer            Role = "viewer"
	RoleBillingAdmin      Role = "billing_admin"
)

var validRoles = map[Role]struct{}{
	RoleOrgAdmin:          {},
	RoleComplianceManager: {},
	RoleAuditor:           {},
	RoleViewer:            {},
	RoleBillingAdmin:      {},
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	_, ok := validRoles[r]
	return ok
}

// ParseRole maps a stored role string to a Role, returning RoleNone for
// anything outside the closed set.
func ParseRole(s string) Role {
	r := Role(s)
	if !r.Valid() {
		return RoleNone
	}
	return r
}

// AllRoles returns every member of the closed role set.
func AllRoles() []Role {
	return []Role{RoleOrgAdmin, RoleComplianceManager, RoleAuditor, RoleViewer, RoleBillingAdmin}
}
