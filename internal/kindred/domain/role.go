package domain

// UserRole is the application-wide role assigned at signup.
type UserRole string

const (
	RoleBrand    UserRole = "BRAND"
	RoleSupplier UserRole = "SUPPLIER"
	RoleAdmin    UserRole = "ADMIN"
	RoleMember   UserRole = "MEMBER"
)

// ValidUserRole reports whether s names a known application role.
func ValidUserRole(s string) bool {
	switch UserRole(s) {
	case RoleBrand, RoleSupplier, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// OrgRole is a user's role within an organisation roster. Exactly one member
// of every organisation holds OrgRoleOwner at any time.
type OrgRole string

const (
	OrgRoleOwner  OrgRole = "OWNER"
	OrgRoleAdmin  OrgRole = "ADMIN"
	OrgRoleMember OrgRole = "MEMBER"
)

// ValidOrgRole reports whether s names a known organisation role.
func ValidOrgRole(s string) bool {
	switch OrgRole(s) {
	case OrgRoleOwner, OrgRoleAdmin, OrgRoleMember:
		return true
	}
	return false
}
