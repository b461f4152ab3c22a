package domain

// Role labels a user's function in the maintenance workflow. The core treats
// roles as opaque strings; route gating at the API edge interprets them.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleHousekeeper Role = "housekeeper"
	RoleTechnician  Role = "technician"
)

// ValidRole reports whether role is one of the known workflow roles.
func ValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleHousekeeper, RoleTechnician:
		return true
	}
	return false
}

// User is a row from the external user directory.
type User struct {
	ID   string
	Name string
	Role Role
}
