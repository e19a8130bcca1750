package handler

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adhikari-dikshant/kanban/internal/auth"
	"github.com/adhikari-dikshant/kanban/internal/events"
	"github.com/adhikari-dikshant/kanban/internal/identity"
	"github.com/adhikari-dikshant/kanban/internal/logger"
	"github.com/adhikari-dikshant/kanban/internal/profile"
	"github.com/adhikari-dikshant/kanban/internal/session"
)

const (
	roleConfirmAttempts = 5
	roleConfirmInterval = 100 * time.Millisecond
)

// selectRoleForm shows the first-login role choice. Re-entry is guarded:
// no session redirects to login, an already-assigned role short-circuits
// to its home so a second visit performs zero writes.
func (h *Handler) selectRoleForm(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, auth.PathLogin)
		return
	}

	if role := auth.ParseRole(user.Role()); role != "" {
		c.Redirect(http.StatusFound, role.HomePath())
		return
	}

	renderSelectRole(c, http.StatusOK, "")
}

func (h *Handler) selectRole(c *gin.Context) {
	choice := auth.ParseRole(c.PostForm("role"))
	if choice == "" {
		renderSelectRole(c, http.StatusBadRequest, "choose either user or admin")
		return
	}

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

	// Idempotent short-circuit: a role persisted by an earlier submission
	// wins; no second write happens.
	if role := auth.ParseRole(user.Role()); role != "" {
		c.Redirect(http.StatusFound, role.HomePath())
		return
	}

	if _, err := h.provider.UpdateMetadata(
		c.Request.Context(),
		tok.AccessToken,
		map[string]any{"role": string(choice)},
	); err != nil {
		logger.Error("role assignment failed", map[string]any{
			"user_id": user.ID,
			"error":   err.Error(),
		})
		renderSelectRole(c, http.StatusOK, err.Error())
		return
	}

	h.confirmRole(c, tok.AccessToken, choice)
	h.ensureProfile(c, user, choice)

	h.publish(c, events.Event{
		Type:   events.TypeUserUpdated,
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(choice),
	})

	c.Redirect(http.StatusFound, choice.HomePath())
}

// confirmRole re-fetches the user until the metadata write is observed,
// bounding the wait instead of sleeping a fixed settling delay. A failed
// final attempt returns immediately, and a cancelled request stops the
// loop between attempts.
func (h *Handler) confirmRole(c *gin.Context, accessToken string, choice auth.Role) {
	ctx := c.Request.Context()
	for attempt := 0; attempt < roleConfirmAttempts; attempt++ {
		u, err := h.provider.GetUser(ctx, accessToken)
		if err == nil && u != nil && auth.ParseRole(u.Role()) == choice {
			return
		}
		if attempt == roleConfirmAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(roleConfirmInterval):
		}
	}
	logger.Warn("role write not observed in time", map[string]any{
		"role": string(choice),
	})
}

// ensureProfile creates the profile row early so the next callback skips
// straight to the role home. Failure is non-fatal: the callback path also
// inserts.
func (h *Handler) ensureProfile(c *gin.Context, user *identity.User, role auth.Role) {
	p, err := h.profiles.GetByID(c.Request.Context(), user.ID)
	if err != nil || p != nil {
		return
	}
	if err := h.profiles.Insert(c.Request.Context(), profile.Profile{
		ID:     user.ID,
		Email:  user.Email,
		Role:   role,
		Status: profile.StatusActive,
	}); err != nil {
		logger.Warn("profile precreate failed", map[string]any{
			"user_id": user.ID,
			"error":   err.Error(),
		})
	}
}

func (h *Handler) currentUser(c *gin.Context) (*identity.User, bool) {
	tok, _ := session.FromRequest(c.Request)
	if tok == nil {
		return nil, false
	}
	user, err := h.provider.GetUser(c.Request.Context(), tok.AccessToken)
	if err != nil || user == nil {
		return nil, false
	}
	return user, true
}

const selectRolePage = `<!doctype html>
<html>
<head><title>Choose your role</title></head>
<body>
<h1>Welcome!</h1>
<p>Choose your role to continue.</p>
%s<form method="post" action="/auth/select-role">
<label><input type="radio" name="role" value="user" checked> User</label>
<label><input type="radio" name="role" value="admin"> Admin</label>
<button type="submit">Continue</button>
</form>
</body>
</html>`

func renderSelectRole(c *gin.Context, status int, errMsg string) {
	var notice string
	if errMsg != "" {
		notice = "<p class=\"error\">" + template.HTMLEscapeString(errMsg) + "</p>\n"
	}
	c.Data(status, "text/html; charset=utf-8",
		[]byte(fmt.Sprintf(selectRolePage, notice)))
}
