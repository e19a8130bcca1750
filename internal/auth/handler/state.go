package handler

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	stateCookieName = "__oauth_state"
	pkceCookieName  = "__oauth_pkce"

	// One round trip to the provider and back; anything older is stale.
	oauthCookieTTL = 5 * time.Minute
)

func randomToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// setOAuthCookie issues the short-lived state/PKCE carrier cookies with
// the handler's environment-derived attributes.
func (h *Handler) setOAuthCookie(c *gin.Context, name, value string, maxAge int) {
	opts := h.oauthCookieOpts()
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
		MaxAge:   maxAge,
	})
}

func (h *Handler) issueState(c *gin.Context) string {
	state := randomToken()
	h.setOAuthCookie(c, stateCookieName, state, int(oauthCookieTTL.Seconds()))
	return state
}

func validateState(c *gin.Context) bool {
	stateQuery := c.Query("state")
	if stateQuery == "" {
		return false
	}

	cookie, err := c.Request.Cookie(stateCookieName)
	if err != nil {
		return false
	}

	return cookie.Value == stateQuery
}

// clearOAuthCookies retires the one-shot state and PKCE cookies once the
// callback has consumed them.
func (h *Handler) clearOAuthCookies(c *gin.Context) {
	h.setOAuthCookie(c, stateCookieName, "", -1)
	h.setOAuthCookie(c, pkceCookieName, "", -1)
}
