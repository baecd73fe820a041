package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
	"github.com/noah-isme/coaching-portal/pkg/response"
)

// SessionExpired is the process-wide reaction to a backend 401. Handlers
// report it with c.Error and abort without writing; this middleware then
// ends the session and sends the browser to the login page, or answers a
// JSON caller with a 401 envelope.
func SessionExpired(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		c.Next()

		if !expiredIn(c.Errors) {
			return
		}

		if handle := SessionFrom(c); handle != nil {
			logger.Info("backend rejected session token", zap.String("session_id", handle.Session.ID))
			if err := handle.Destroy(c.Request.Context()); err != nil {
				logger.Warn("failed to destroy expired session", zap.Error(err))
			}
		}

		if c.Writer.Written() {
			return
		}
		if IsJSONAPI(c) {
			response.Error(c, appErrors.ErrSessionExpired)
			return
		}
		c.Redirect(http.StatusSeeOther, LoginPath+"?expired=1")
	}
}

func expiredIn(errs []*gin.Error) bool {
	for _, e := range errs {
		if errors.Is(e.Err, appErrors.ErrSessionExpired) {
			return true
		}
	}
	return false
}
