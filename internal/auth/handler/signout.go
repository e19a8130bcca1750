package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adhikari-dikshant/kanban/internal/auth"
	"github.com/adhikari-dikshant/kanban/internal/events"
	"github.com/adhikari-dikshant/kanban/internal/session"
)

func (h *Handler) signOut(c *gin.Context) {
	tok, _ := session.FromRequest(c.Request)

	if tok != nil {
		if err := h.provider.SignOut(c.Request.Context(), tok.AccessToken); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": err.Error(),
			})
			return
		}
	}

	session.ClearCookie(c.Writer, h.sessionCookieOpts())

	var userID string
	if tok != nil {
		userID = tok.UserID
	}
	h.publish(c, events.Event{
		Type:   events.TypeSignedOut,
		UserID: userID,
	})

	// Idempotent: signing out without a session still lands on login.
	c.Redirect(http.StatusFound, auth.PathLogin)
}
