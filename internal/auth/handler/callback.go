package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adhikari-dikshant/kanban/internal/auth"
	"github.com/adhikari-dikshant/kanban/internal/auth/resolver"
	"github.com/adhikari-dikshant/kanban/internal/events"
	"github.com/adhikari-dikshant/kanban/internal/logger"
	"github.com/adhikari-dikshant/kanban/internal/session"
)

func (h *Handler) callback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oauth callback returned error", map[string]any{
			"error": errParam,
			"desc":  c.Query("error_description"),
		})
		h.redirectAbsolute(c, auth.PathAuthError)
		return
	}

	code := c.Query("code")
	next := c.DefaultQuery("next", "/")

	var codeVerifier string
	if code != "" {
		if !validateState(c) {
			logger.Warn("oauth callback state mismatch", nil)
			h.redirectAbsolute(c, auth.PathAuthError)
			return
		}
		codeVerifier = getPKCEVerifier(c)
		if codeVerifier == "" {
			logger.Warn("oauth callback missing pkce verifier", nil)
			h.redirectAbsolute(c, auth.PathAuthError)
			return
		}
		// Both carriers are one-shot; retire them as soon as they are
		// consumed instead of letting them ride out their TTL.
		h.clearOAuthCookies(c)
	}

	res := h.resolver.Resolve(c.Request.Context(), resolver.Request{
		Code:         code,
		CodeVerifier: codeVerifier,
		Next:         next,
	})

	if res.SignedOut {
		session.ClearCookie(c.Writer, h.sessionCookieOpts())
	}

	if res.Session != nil {
		tok := session.Token{
			AccessToken:  res.Session.AccessToken,
			RefreshToken: res.Session.RefreshToken,
			ExpiresAt:    res.Session.ExpiresAt,
			UserID:       res.Session.User.ID,
		}
		if err := session.SetCookie(c.Writer, tok, h.sessionCookieOpts()); err != nil {
			logger.Error("failed to issue session cookie", map[string]any{
				"error": err.Error(),
			})
			h.redirectAbsolute(c, auth.PathAuthError)
			return
		}

		h.publish(c, events.Event{
			Type:   events.TypeSignedIn,
			UserID: res.Session.User.ID,
			Email:  res.Session.User.Email,
			Role:   res.Session.User.Role(),
		})
	}

	h.redirectAbsolute(c, res.Target)
}

// redirectAbsolute applies the host-rewrite policy: development keeps the
// request origin, production prefers X-Forwarded-Host over https.
func (h *Handler) redirectAbsolute(c *gin.Context, path string) {
	target := resolver.RedirectURL(
		h.production,
		requestOrigin(c),
		c.GetHeader("X-Forwarded-Host"),
		path,
	)
	c.Redirect(http.StatusFound, target)
}

func requestOrigin(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
