package auth

// Terminal redirect destinations shared by the callback resolver, the
// role-selection flow, and the route guards.
const (
	PathLogin        = "/auth/login"
	PathCallback     = "/auth/callback"
	PathSelectRole   = "/auth/select-role"
	PathSignOut      = "/auth/signout"
	PathAuthError    = "/auth/auth-code-error"
	PathAccessDenied = "/auth/access-denied"

	PathAdminHome = "/admin"
	PathUserHome  = "/user"
)

// PathAccessDeniedInactive is the access-denied destination for profiles
// whose status blocks further access.
const PathAccessDeniedInactive = PathAccessDenied + "?reason=inactive"
