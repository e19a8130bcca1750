package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const authErrorPage = `<!doctype html>
<html>
<head><title>Sign-in failed</title></head>
<body>
<h1>Sign-in failed</h1>
<p>Something went wrong while signing you in. Please try again.</p>
<p><a href="/auth/login">Back to login</a></p>
</body>
</html>`

func (h *Handler) authError(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(authErrorPage))
}

const accessDeniedPage = `<!doctype html>
<html>
<head><title>Access denied</title></head>
<body>
<h1>Access denied</h1>
<p>%s</p>
</body>
</html>`

func (h *Handler) accessDenied(c *gin.Context) {
	// Fixed strings only; the reason query never reaches the page raw.
	msg := "You do not have access to this application."
	if c.Query("reason") == "inactive" {
		msg = "Your account is inactive. Contact an administrator to restore access."
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8",
		[]byte(fmt.Sprintf(accessDeniedPage, msg)))
}
