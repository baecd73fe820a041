package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-portal/internal/models"
	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
	"github.com/noah-isme/coaching-portal/pkg/response"
)

// ContextAPIKey marks requests served by the JSON API.
const ContextAPIKey = "jsonAPI"

// Login pages the guards redirect to.
const (
	LoginPath      = "/login"
	AdminLoginPath = "/login?portal=admin"
)

// JSONAPI flags the group as JSON so guards answer with envelopes instead of
// redirects.
func JSONAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextAPIKey, true)
		c.Next()
	}
}

// IsJSONAPI reports whether the request belongs to the JSON API.
func IsJSONAPI(c *gin.Context) bool {
	return c.GetBool(ContextAPIKey)
}

// RequireAuth admits any authenticated session.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		handle := SessionFrom(c)
		if handle == nil || !handle.Session.Authenticated() {
			deny(c, appErrors.ErrUnauthorized, LoginPath)
			return
		}
		c.Next()
	}
}

// RequireAdmin admits only admin sessions. Any other authenticated session is
// signed out before being sent to the admin login.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		handle := SessionFrom(c)
		if handle == nil || !handle.Session.Authenticated() {
			deny(c, appErrors.ErrUnauthorized, AdminLoginPath)
			return
		}
		if handle.Session.User.Role != models.RoleAdmin {
			_ = handle.Destroy(c.Request.Context())
			deny(c, appErrors.ErrForbidden, AdminLoginPath)
			return
		}
		c.Next()
	}
}

func deny(c *gin.Context, err *appErrors.Error, redirect string) {
	if IsJSONAPI(c) {
		response.Error(c, err)
		c.Abort()
		return
	}
	c.Redirect(http.StatusSeeOther, redirect)
	c.Abort()
}
