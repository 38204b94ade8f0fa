package auth

// Role represents a user role.
type Role string

const (
	RoleEmployee Role = "employe"
	RoleManager  Role = "gestionnaire"
)

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleEmployee, RoleManager:
		return Role(value), true
	default:
		return "", false
	}
}

// RoleAtLeast returns true when role satisfies required role.
func RoleAtLeast(role Role, required Role) bool {
	return roleRank(role) >= roleRank(required)
}

func roleRank(role Role) int {
	switch role {
	case RoleEmployee:
		return 1
	case RoleManager:
		return 2
	default:
		return 0
	}
}
