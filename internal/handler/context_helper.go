package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-portal/internal/middleware"
	"github.com/noah-isme/coaching-portal/internal/models"
	"github.com/noah-isme/coaching-portal/internal/service"
	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
	"github.com/noah-isme/coaching-portal/pkg/response"
)

// Renderer draws HTML pages.
type Renderer interface {
	Render(c *gin.Context, status int, page string, sess *models.Session, title string, data interface{})
}

func sessionHandle(c *gin.Context) *middleware.SessionHandle {
	return middleware.SessionFrom(c)
}

// currentSession never returns nil so handlers can be exercised without the
// Session middleware.
func currentSession(c *gin.Context) *models.Session {
	if handle := middleware.SessionFrom(c); handle != nil {
		return handle.Session
	}
	return &models.Session{}
}

// abortIfExpired hands a backend 401 to the SessionExpired middleware.
func abortIfExpired(c *gin.Context, err error) bool {
	if !service.IsSessionExpired(err) {
		return false
	}
	_ = c.Error(err)
	c.Abort()
	return true
}

// apiError answers a JSON caller, deferring expired sessions to the middleware.
func apiError(c *gin.Context, err error) {
	if abortIfExpired(c, err) {
		return
	}
	response.Error(c, err)
}

// flashRedirect queues a message and redirects with 303 so a refresh never
// re-submits the form.
func flashRedirect(c *gin.Context, kind models.FlashKind, message, to string) {
	currentSession(c).SetFlash(kind, message)
	c.Redirect(http.StatusSeeOther, to)
}

// failRedirect reports err as a flash unless the session expired.
func failRedirect(c *gin.Context, err error, to string) {
	if abortIfExpired(c, err) {
		return
	}
	flashRedirect(c, models.FlashError, errorMessage(err), to)
}

// errorMessage is the user-facing text of err.
func errorMessage(err error) string {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return appErrors.ErrInternal.Message
}

func statusOf(err error) int {
	return appErrors.FromError(err).Status
}

func paramID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return id, nil
}

func formID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.PostForm(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" is required")
	}
	return id, nil
}

func bindError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
}
