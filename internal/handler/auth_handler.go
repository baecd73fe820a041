package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-portal/internal/models"
	"github.com/noah-isme/coaching-portal/internal/service"
	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
)

// AuthHandler serves the two-step login pages, signup and logout.
type AuthHandler struct {
	service *service.AuthService
	views   Renderer
	logger  *zap.Logger
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService, views Renderer, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{service: svc, views: views, logger: logger}
}

type loginPage struct {
	Flow    models.LoginFlowState
	Notice  string
	Expired bool
}

type signupPage struct {
	Form  models.SignupRequest
	Error string
}

// LoginPage renders whichever step the session's login flow is on. A
// `portal` query preselects the portal.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	sess := currentSession(c)
	if sess.Authenticated() {
		c.Redirect(http.StatusSeeOther, service.HomeFor(sess.User.Role))
		return
	}
	if portal := models.Portal(c.Query("portal")); portal.Valid() && sess.Flow.Portal != portal {
		_ = h.service.SelectPortal(sess, portal)
	}
	h.renderLogin(c, http.StatusOK, "")
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, notice string) {
	sess := currentSession(c)
	page := loginPage{
		Flow:    service.NewLoginFlow(sess.Flow).State(),
		Notice:  notice,
		Expired: c.Query("expired") != "",
	}
	h.views.Render(c, status, "login", sess, "Sign in", page)
}

// SelectPortal moves the flow to the credentials step.
func (h *AuthHandler) SelectPortal(c *gin.Context) {
	if err := h.service.SelectPortal(currentSession(c), models.Portal(c.PostForm("portal"))); err != nil {
		h.renderLogin(c, http.StatusBadRequest, errorMessage(err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

// Back returns to the portal choice.
func (h *AuthHandler) Back(c *gin.Context) {
	h.service.Back(currentSession(c))
	c.Redirect(http.StatusSeeOther, "/login")
}

// Login submits credentials.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	_ = c.ShouldBind(&req)

	sess := currentSession(c)
	result, err := h.service.Login(c.Request.Context(), sess, req)
	if err != nil {
		if errors.Is(err, appErrors.ErrLoginInProgress) {
			h.renderLogin(c, http.StatusConflict, "A sign-in attempt is already in progress.")
			return
		}
		h.renderLogin(c, statusOf(err), "")
		return
	}

	if handle := sessionHandle(c); handle != nil {
		if err := handle.Rotate(c.Request.Context()); err != nil {
			h.logger.Warn("failed to rotate session after login", zap.Error(err))
		}
	}
	c.Redirect(http.StatusSeeOther, result.Redirect)
}

// Logout ends the session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if handle := sessionHandle(c); handle != nil {
		if err := handle.Destroy(c.Request.Context()); err != nil {
			h.logger.Warn("failed to destroy session", zap.Error(err))
		}
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

// SignupPage renders the registration form.
func (h *AuthHandler) SignupPage(c *gin.Context) {
	h.views.Render(c, http.StatusOK, "signup", currentSession(c), "Create account", signupPage{})
}

// Signup registers a student account.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	_ = c.ShouldBind(&req)

	sess := currentSession(c)
	if _, err := h.service.Signup(c.Request.Context(), req); err != nil {
		req.Password = ""
		h.views.Render(c, statusOf(err), "signup", sess, "Create account", signupPage{Form: req, Error: errorMessage(err)})
		return
	}

	_ = h.service.SelectPortal(sess, models.PortalStudent)
	flashRedirect(c, models.FlashSuccess, "Account created. Please sign in.", "/login")
}
