package auth

// Role gates which dashboard section an identity may enter.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole normalizes a raw metadata value. Anything other than the two
// known roles maps to the empty Role, meaning "not yet assigned".
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleUser:
		return RoleUser
	case RoleAdmin:
		return RoleAdmin
	default:
		return ""
	}
}

// HomePath returns the dashboard home for the role.
func (r Role) HomePath() string {
	if r == RoleAdmin {
		return PathAdminHome
	}
	return PathUserHome
}
