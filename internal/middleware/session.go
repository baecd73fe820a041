package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-portal/internal/models"
	"github.com/noah-isme/coaching-portal/pkg/config"
)

// ContextSessionKey is the gin context key storing the *SessionHandle.
const ContextSessionKey = "portalSession"

type sessionStore interface {
	Start(ctx context.Context) (*models.Session, error)
	Load(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, sess *models.Session) error
	Destroy(ctx context.Context, sess *models.Session) error
	Rotate(ctx context.Context, sess *models.Session) error
}

// SessionHandle gives handlers the request's session plus the cookie
// operations that must happen before the response is written.
type SessionHandle struct {
	Session *models.Session

	store     sessionStore
	cfg       config.SessionConfig
	c         *gin.Context
	snapshot  []byte
	destroyed bool
}

// Rotate re-keys the session and reissues the cookie.
func (h *SessionHandle) Rotate(ctx context.Context) error {
	if err := h.store.Rotate(ctx, h.Session); err != nil {
		return err
	}
	h.setCookie()
	return nil
}

// Destroy deletes the server-side record and expires the cookie. Later
// changes to Session are not persisted.
func (h *SessionHandle) Destroy(ctx context.Context) error {
	if h.destroyed {
		return nil
	}
	h.destroyed = true
	h.c.SetSameSite(http.SameSiteLaxMode)
	h.c.SetCookie(h.cfg.CookieName, "", -1, "/", "", h.cfg.SecureCookie, true)
	return h.store.Destroy(ctx, h.Session)
}

// Destroyed reports whether Destroy was called during this request.
func (h *SessionHandle) Destroyed() bool {
	return h.destroyed
}

func (h *SessionHandle) setCookie() {
	h.c.SetSameSite(http.SameSiteLaxMode)
	h.c.SetCookie(h.cfg.CookieName, h.Session.ID, int(h.cfg.TTL.Seconds()), "/", "", h.cfg.SecureCookie, true)
}

// Session loads the browser's session from its cookie, starting a fresh
// anonymous one when the cookie is missing, unknown or expired. After the
// handler chain the session is written back if it changed.
func Session(store sessionStore, cfg config.SessionConfig, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var sess *models.Session
		if id, err := c.Cookie(cfg.CookieName); err == nil && id != "" {
			sess, _ = store.Load(ctx, id)
		}

		handle := &SessionHandle{store: store, cfg: cfg, c: c}
		if sess == nil {
			started, err := store.Start(ctx)
			if err != nil {
				logger.Error("failed to start session", zap.Error(err))
				c.AbortWithStatus(http.StatusServiceUnavailable)
				return
			}
			handle.Session = started
			handle.setCookie()
		} else {
			handle.Session = sess
		}
		handle.snapshot, _ = json.Marshal(handle.Session)

		c.Set(ContextSessionKey, handle)
		c.Next()

		if handle.destroyed {
			return
		}
		current, err := json.Marshal(handle.Session)
		if err == nil && bytes.Equal(current, handle.snapshot) {
			return
		}
		if err := store.Save(context.WithoutCancel(ctx), handle.Session); err != nil {
			logger.Error("failed to save session", zap.String("session_id", handle.Session.ID), zap.Error(err))
		}
	}
}

// SessionFrom returns the request's session handle, or nil outside the
// Session middleware.
func SessionFrom(c *gin.Context) *SessionHandle {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	handle, ok := value.(*SessionHandle)
	if !ok {
		return nil
	}
	return handle
}
