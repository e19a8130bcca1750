package resolver

// RedirectURL builds the absolute redirect target for a resolved path.
//
// In development the request's own origin is used. In production a reverse
// proxy may sit in front: when X-Forwarded-Host is present the URL is
// rebuilt against https://<forwarded-host> so the client is never bounced
// to the internal origin. The forwarded host is trusted only for building
// this target, never for authorization.
func RedirectURL(production bool, origin, forwardedHost, path string) string {
	if !production {
		return origin + path
	}
	if forwardedHost != "" {
		return "https://" + forwardedHost + path
	}
	return origin + path
}
