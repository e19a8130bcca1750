package identity

import (
	"context"
	"time"
)

// User is the identity-provider view of an account. Metadata is an
// arbitrary bag owned by the provider; the only key this service manages
// is "role".
type User struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata"`
}

// Role returns the role stored in user metadata, or "" when unset.
func (u *User) Role() string {
	if u == nil {
		return ""
	}
	role, _ := u.Metadata["role"].(string)
	return role
}

// Session is the opaque token bundle issued by the provider. It is carried
// in a cookie and read per request, never persisted server-side.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         *User
}

// Provider is the external identity collaborator. Implementations return
// identity facts only; routing decisions live in the resolver and guards.
type Provider interface {
	// AuthCodeURL builds the authorization redirect URL.
	// State and PKCE parameters are provided by the caller.
	AuthCodeURL(state string, codeChallenge string) string

	// ExchangeCode trades an authorization code for a session.
	ExchangeCode(ctx context.Context, code string, codeVerifier string) (*Session, error)

	// GetUser fetches the current user with a fresh provider round trip.
	// It returns (nil, nil) when the token no longer identifies anyone.
	// This is the only call guards may trust for authorization.
	GetUser(ctx context.Context, accessToken string) (*User, error)

	// UpdateMetadata merges fields into the user's metadata bag and
	// returns the updated user.
	UpdateMetadata(ctx context.Context, accessToken string, fields map[string]any) (*User, error)

	// SignOut revokes the session behind the token.
	SignOut(ctx context.Context, accessToken string) error
}
