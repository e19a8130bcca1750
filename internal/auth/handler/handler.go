package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adhikari-dikshant/kanban/internal/auth"
	"github.com/adhikari-dikshant/kanban/internal/auth/resolver"
	"github.com/adhikari-dikshant/kanban/internal/events"
	"github.com/adhikari-dikshant/kanban/internal/identity"
	"github.com/adhikari-dikshant/kanban/internal/logger"
	"github.com/adhikari-dikshant/kanban/internal/profile"
	"github.com/adhikari-dikshant/kanban/internal/session"
)

type Handler struct {
	provider   identity.Provider
	resolver   *resolver.Resolver
	profiles   profile.Store
	bus        *events.Bus
	production bool
}

func NewHandler(
	provider identity.Provider,
	res *resolver.Resolver,
	profiles profile.Store,
	bus *events.Bus,
	production bool,
) *Handler {
	return &Handler{
		provider:   provider,
		resolver:   res,
		profiles:   profiles,
		bus:        bus,
		production: production,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET(auth.PathLogin, h.login)
	r.GET(auth.PathCallback, h.callback)
	r.GET(auth.PathSelectRole, h.selectRoleForm)
	r.POST(auth.PathSelectRole, h.selectRole)
	r.POST(auth.PathSignOut, h.signOut)
	r.GET(auth.PathAuthError, h.authError)
	r.GET(auth.PathAccessDenied, h.accessDenied)
	r.GET("/", h.root)
}

// root bounces authenticated users to their role home and everyone else to
// the login flow.
func (h *Handler) root(c *gin.Context) {
	tok, _ := session.FromRequest(c.Request)
	if tok == nil {
		c.Redirect(http.StatusFound, auth.PathLogin)
		return
	}

	user, err := h.provider.GetUser(c.Request.Context(), tok.AccessToken)
	if err != nil || user == nil {
		c.Redirect(http.StatusFound, auth.PathLogin)
		return
	}

	role := auth.ParseRole(user.Role())
	if role == "" {
		c.Redirect(http.StatusFound, auth.PathSelectRole)
		return
	}
	c.Redirect(http.StatusFound, role.HomePath())
}

func (h *Handler) login(c *gin.Context) {
	state := h.issueState(c)
	_, codeChallenge := h.issuePKCE(c)

	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state, codeChallenge))
}

// publish is best-effort; the event bus is advisory.
func (h *Handler) publish(c *gin.Context, ev events.Event) {
	if h.bus == nil {
		return
	}
	if err := h.bus.Publish(c.Request.Context(), ev); err != nil {
		logger.Warn("auth event not published", map[string]any{
			"error": err.Error(),
		})
	}
}

// sessionCookieOpts issues the session cookie. The __Host- prefix demands
// Secure in every environment; browsers exempt http://localhost from the
// Secure check, so a development deploy must either run on localhost or
// terminate TLS in front of the service.
func (h *Handler) sessionCookieOpts() session.CookieOptions {
	return session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// oauthCookieOpts covers the state and PKCE carriers. They are not
// __Host- prefixed, so Secure follows the environment.
func (h *Handler) oauthCookieOpts() session.CookieOptions {
	return session.CookieOptions{
		Secure:   h.production,
		SameSite: http.SameSiteLaxMode,
	}
}
