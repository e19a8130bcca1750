package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adhikari-dikshant/kanban/internal/auth"
	"github.com/adhikari-dikshant/kanban/internal/identity"
	"github.com/adhikari-dikshant/kanban/internal/profile"
)

type fakeProvider struct {
	session     *identity.Session
	exchangeErr error
	signOutErr  error

	exchangeCalls int
	signOutCalls  int
	signOutTokens []string
}

func (p *fakeProvider) AuthCodeURL(state, codeChallenge string) string {
	return "https://id.example.com/authorize?state=" + state
}

func (p *fakeProvider) ExchangeCode(_ context.Context, code, codeVerifier string) (*identity.Session, error) {
	p.exchangeCalls++
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return p.session, nil
}

func (p *fakeProvider) GetUser(_ context.Context, accessToken string) (*identity.User, error) {
	if p.session == nil {
		return nil, nil
	}
	return p.session.User, nil
}

func (p *fakeProvider) UpdateMetadata(_ context.Context, accessToken string, fields map[string]any) (*identity.User, error) {
	return nil, errors.New("not implemented")
}

func (p *fakeProvider) SignOut(_ context.Context, accessToken string) error {
	p.signOutCalls++
	p.signOutTokens = append(p.signOutTokens, accessToken)
	return p.signOutErr
}

type fakeStore struct {
	profiles  map[string]*profile.Profile
	getErr    error
	insertErr error

	getCalls int
	inserts  []profile.Profile
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*profile.Profile, error) {
	s.getCalls++
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.profiles[id], nil
}

func (s *fakeStore) Insert(_ context.Context, p profile.Profile) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserts = append(s.inserts, p)
	return nil
}

func sessionWith(user *identity.User) *identity.Session {
	return &identity.Session{
		AccessToken: "access-token",
		ExpiresAt:   time.Now().Add(time.Hour),
		User:        user,
	}
}

func userWith(role string) *identity.User {
	u := &identity.User{
		ID:       "u1",
		Email:    "a@x.com",
		Metadata: map[string]any{},
	}
	if role != "" {
		u.Metadata["role"] = role
	}
	return u
}

func TestResolveMissingCode(t *testing.T) {
	p := &fakeProvider{}
	s := &fakeStore{}

	res := New(p, s).Resolve(context.Background(), Request{Code: ""})

	require.Equal(t, auth.PathAuthError, res.Target)
	require.Nil(t, res.Session)
	require.Zero(t, p.exchangeCalls)
	require.Zero(t, s.getCalls)
	require.Empty(t, s.inserts)
}

func TestResolveExchangeFailure(t *testing.T) {
	p := &fakeProvider{exchangeErr: errors.New("invalid grant")}
	s := &fakeStore{}

	res := New(p, s).Resolve(context.Background(), Request{Code: "abc123", CodeVerifier: "v"})

	require.Equal(t, auth.PathAuthError, res.Target)
	require.Empty(t, s.inserts)
}

func TestResolveUserWithoutEmail(t *testing.T) {
	user := userWith("admin")
	user.Email = ""
	p := &fakeProvider{session: sessionWith(user)}
	s := &fakeStore{}

	res := New(p, s).Resolve(context.Background(), Request{Code: "abc123"})

	require.Equal(t, auth.PathAuthError, res.Target)
	require.Nil(t, res.Session)
}

func TestResolveMissingUser(t *testing.T) {
	p := &fakeProvider{session: sessionWith(nil)}
	s := &fakeStore{}

	res := New(p, s).Resolve(context.Background(), Request{Code: "abc123"})

	require.Equal(t, auth.PathAuthError, res.Target)
}

func TestResolveUnsetRoleGoesToSelection(t *testing.T) {
	p := &fakeProvider{session: sessionWith(userWith(""))}
	s := &fakeStore{}

	res := New(p, s).Resolve(context.Background(), Request{Code: "abc123"})

	require.Equal(t, auth.PathSelectRole, res.Target)
	require.NotNil(t, res.Session, "selection flow needs the session established")
	require.Zero(t, s.getCalls, "no profile reads before a role exists")
	require.Empty(t, s.inserts)
}

func TestResolveAdminWithoutProfileInsertsAndRedirects(t *testing.T) {
	p := &fakeProvider{session: sessionWith(userWith("admin"))}
	s := &fakeStore{profiles: map[string]*profile.Profile{}}

	res := New(p, s).Resolve(context.Background(), Request{Code: "abc123"})

	require.Equal(t, auth.PathAdminHome, res.Target)
	require.NotNil(t, res.Session)
	require.Len(t, s.inserts, 1)
	require.Equal(t, profile.Profile{
		ID:     "u1",
		Email:  "a@x.com",
		Role:   auth.RoleAdmin,
		Status: profile.StatusActive,
	}, s.inserts[0])
}

func TestResolveUserRoleRedirectsToUserHome(t *testing.T) {
	p := &fakeProvider{session: sessionWith(userWith("user"))}
	s := &fakeStore{profiles: map[string]*profile.Profile{
		"u1": {ID: "u1", Email: "a@x.com", Role: auth.RoleUser, Status: profile.StatusActive},
	}}

	res := New(p, s).Resolve(context.Background(), Request{Code: "abc123"})

	require.Equal(t, auth.PathUserHome, res.Target)
	require.Empty(t, s.inserts, "existing profile must not be re-inserted")
}

func TestResolveInactiveProfileSignsOut(t *testing.T) {
	for _, status := range []profile.Status{profile.StatusInactive, profile.StatusSuspended} {
		p := &fakeProvider{session: sessionWith(userWith("admin"))}
		s := &fakeStore{profiles: map[string]*profile.Profile{
			"u1": {ID: "u1", Email: "a@x.com", Role: auth.RoleAdmin, Status: status},
		}}

		res := New(p, s).Resolve(context.Background(), Request{Code: "abc123"})

		require.Equal(t, auth.PathAccessDeniedInactive, res.Target)
		require.True(t, res.SignedOut)
		require.Nil(t, res.Session)
		require.Equal(t, 1, p.signOutCalls)
		require.Equal(t, []string{"access-token"}, p.signOutTokens)
		require.Empty(t, s.inserts)
	}
}

func TestResolveInsertFailureIsNonFatal(t *testing.T) {
	p := &fakeProvider{session: sessionWith(userWith("admin"))}
	s := &fakeStore{insertErr: errors.New("duplicate key")}

	res := New(p, s).Resolve(context.Background(), Request{Code: "abc123"})

	require.Equal(t, auth.PathAdminHome, res.Target)
	require.NotNil(t, res.Session)
}

func TestResolveLookupErrorTreatedAsAbsent(t *testing.T) {
	p := &fakeProvider{session: sessionWith(userWith("user"))}
	s := &fakeStore{getErr: errors.New("connection reset")}

	res := New(p, s).Resolve(context.Background(), Request{Code: "abc123"})

	require.Equal(t, auth.PathUserHome, res.Target)
	require.Len(t, s.inserts, 1)
}
