package domain

// Role is the coarse authorization level of an admin user. Fine-grained
// access is governed by the module grant set on top of this.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleEditor     Role = "editor"
	RoleViewer     Role = "viewer"
)

// roleRank orders roles for minimum-role checks. Unknown roles rank zero.
var roleRank = map[Role]int{
	RoleSuperAdmin: 4,
	RoleAdmin:      3,
	RoleEditor:     2,
	RoleViewer:     1,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r ranks at or above required.
func (r Role) AtLeast(required Role) bool {
	return roleRank[r] >= roleRank[required]
}
