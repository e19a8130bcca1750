package identity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adhikari-dikshant/kanban/internal/identity"
)

// fakeAuthAPI mimics the subset of a GoTrue-style auth API the client
// talks to: /token, /user (GET and PUT) and /logout.
type fakeAuthAPI struct {
	mu sync.Mutex

	users map[string]map[string]any // access token -> user payload

	lastGrant     url.Values
	logoutCalls   int
	failLogout    bool
	failUpdateMsg string
}

func newFakeAuthAPI() *fakeAuthAPI {
	return &fakeAuthAPI{
		users: map[string]map[string]any{
			"valid-token": {
				"id":            "u1",
				"email":         "a@x.com",
				"user_metadata": map[string]any{},
			},
		},
	}
}

func (f *fakeAuthAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", f.token)
	mux.HandleFunc("/user", f.user)
	mux.HandleFunc("/logout", f.logout)
	return mux
}

func (f *fakeAuthAPI) token(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()

	f.mu.Lock()
	f.lastGrant = r.Form
	f.mu.Unlock()

	if r.Form.Get("code") != "abc123" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "invalid_grant",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token":  "valid-token",
		"refresh_token": "refresh-token",
		"token_type":    "bearer",
		"expires_in":    3600,
	})
}

func (f *fakeAuthAPI) bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func (f *fakeAuthAPI) user(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[f.bearer(r)]
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"msg": "invalid token"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(user)

	case http.MethodPut:
		if f.failUpdateMsg != "" {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"msg": f.failUpdateMsg})
			return
		}
		var body struct {
			Data map[string]any `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		meta := user["user_metadata"].(map[string]any)
		for k, v := range body.Data {
			meta[k] = v
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(user)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeAuthAPI) logout(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.logoutCalls++
	if f.failLogout {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"msg": "revocation failed"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func newTestClient(t *testing.T) (*identity.Client, *fakeAuthAPI) {
	t.Helper()

	api := newFakeAuthAPI()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	client, err := identity.New(context.Background(), identity.Config{
		BaseURL:     srv.URL,
		ClientID:    "dashboard",
		RedirectURL: "http://localhost:8080/auth/callback",
		HTTPClient:  srv.Client(),
	})
	require.NoError(t, err)

	return client, api
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := identity.New(context.Background(), identity.Config{})
	require.Error(t, err)
}

func TestAuthCodeURLCarriesPKCE(t *testing.T) {
	client, _ := newTestClient(t)

	raw := client.AuthCodeURL("state-1", "challenge-1")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	require.Equal(t, "state-1", q.Get("state"))
	require.Equal(t, "challenge-1", q.Get("code_challenge"))
	require.Equal(t, "S256", q.Get("code_challenge_method"))
	require.Equal(t, "dashboard", q.Get("client_id"))
}

func TestExchangeCode(t *testing.T) {
	client, api := newTestClient(t)

	sess, err := client.ExchangeCode(context.Background(), "abc123", "verifier-1")
	require.NoError(t, err)
	require.Equal(t, "valid-token", sess.AccessToken)
	require.Equal(t, "refresh-token", sess.RefreshToken)
	require.NotNil(t, sess.User)
	require.Equal(t, "u1", sess.User.ID)
	require.Equal(t, "a@x.com", sess.User.Email)

	require.Equal(t, "verifier-1", api.lastGrant.Get("code_verifier"))
}

func TestExchangeCodeFailure(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.ExchangeCode(context.Background(), "wrong", "verifier-1")
	require.Error(t, err)
}

func TestGetUserInvalidTokenIsNone(t *testing.T) {
	client, _ := newTestClient(t)

	user, err := client.GetUser(context.Background(), "expired")
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestUpdateMetadata(t *testing.T) {
	client, _ := newTestClient(t)

	user, err := client.UpdateMetadata(context.Background(), "valid-token",
		map[string]any{"role": "admin"})
	require.NoError(t, err)
	require.Equal(t, "admin", user.Role())

	// The write is visible on the next fresh read.
	again, err := client.GetUser(context.Background(), "valid-token")
	require.NoError(t, err)
	require.Equal(t, "admin", again.Role())
}

func TestUpdateMetadataSurfacesProviderMessage(t *testing.T) {
	client, api := newTestClient(t)
	api.failUpdateMsg = "metadata service unavailable"

	_, err := client.UpdateMetadata(context.Background(), "valid-token",
		map[string]any{"role": "user"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "metadata service unavailable")
}

func TestSignOut(t *testing.T) {
	client, api := newTestClient(t)

	require.NoError(t, client.SignOut(context.Background(), "valid-token"))
	require.Equal(t, 1, api.logoutCalls)
}

func TestSignOutFailure(t *testing.T) {
	client, api := newTestClient(t)
	api.failLogout = true

	err := client.SignOut(context.Background(), "valid-token")
	require.Error(t, err)
	require.Contains(t, err.Error(), "revocation failed")
}
