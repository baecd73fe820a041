package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-portal/internal/dto"
	"github.com/noah-isme/coaching-portal/internal/models"
	"github.com/noah-isme/coaching-portal/internal/service"
	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
	"github.com/noah-isme/coaching-portal/pkg/response"
)

// APIHandler exposes the login flow and the lead console as JSON.
type APIHandler struct {
	auth   *service.AuthService
	leads  *service.LeadService
	logger *zap.Logger
}

// NewAPIHandler constructs an APIHandler.
func NewAPIHandler(auth *service.AuthService, leads *service.LeadService, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{auth: auth, leads: leads, logger: logger}
}

func sessionState(sess *models.Session) dto.SessionState {
	return dto.SessionState{
		Flow:          service.NewLoginFlow(sess.Flow).State(),
		User:          sess.User,
		Authenticated: sess.Authenticated(),
	}
}

// SelectPortal godoc
// @Summary Choose login portal
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.PortalRequest true "Portal"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/portal [post]
func (h *APIHandler) SelectPortal(c *gin.Context) {
	var req dto.PortalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid portal payload"))
		return
	}
	sess := currentSession(c)
	if err := h.auth.SelectPortal(sess, req.Portal); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessionState(sess))
}

// Back godoc
// @Summary Return to portal choice
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/back [post]
func (h *APIHandler) Back(c *gin.Context) {
	sess := currentSession(c)
	h.auth.Back(sess)
	response.JSON(c, http.StatusOK, sessionState(sess))
}

// Login godoc
// @Summary Sign in
// @Description Exchanges credentials with the backend and checks the account role against the chosen portal
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /auth/login [post]
func (h *APIHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid login payload"))
		return
	}
	sess := currentSession(c)
	if req.Portal != "" {
		if err := h.auth.SelectPortal(sess, req.Portal); err != nil {
			response.Error(c, err)
			return
		}
	}

	result, err := h.auth.Login(c.Request.Context(), sess, models.LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		response.Error(c, err)
		return
	}
	if handle := sessionHandle(c); handle != nil {
		if err := handle.Rotate(c.Request.Context()); err != nil {
			h.logger.Warn("failed to rotate session after login", zap.Error(err))
		}
	}
	response.JSON(c, http.StatusOK, result)
}

// Logout godoc
// @Summary Sign out
// @Tags Authentication
// @Success 204
// @Router /auth/logout [post]
func (h *APIHandler) Logout(c *gin.Context) {
	if handle := sessionHandle(c); handle != nil {
		if err := handle.Destroy(c.Request.Context()); err != nil {
			h.logger.Warn("failed to destroy session", zap.Error(err))
		}
	}
	response.NoContent(c)
}

// Me godoc
// @Summary Current session
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *APIHandler) Me(c *gin.Context) {
	response.JSON(c, http.StatusOK, sessionState(currentSession(c)))
}

// Leads godoc
// @Summary Lead table
// @Description Filtered and sorted leads with city options and selection state
// @Tags Leads
// @Produce json
// @Param q query string false "Search in name, email, phone"
// @Param role query string false "student, parent or all"
// @Param city query string false "City or all"
// @Param sort query string false "newest, oldest, name_asc, name_desc"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /leads [get]
func (h *APIHandler) Leads(c *gin.Context) {
	query := service.ParseLeadQuery(c.Request.URL.Query())
	view, err := h.leads.View(c.Request.Context(), currentSession(c), query)
	if err != nil {
		apiError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Selection godoc
// @Summary Change lead selection
// @Tags Leads
// @Accept json
// @Produce json
// @Param payload body dto.SelectionRequest true "Selection action"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /leads/selection [post]
func (h *APIHandler) Selection(c *gin.Context) {
	var req dto.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid selection payload"))
		return
	}
	view, err := h.leads.UpdateSelection(c.Request.Context(), currentSession(c), req)
	if err != nil {
		apiError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// BulkNotify godoc
// @Summary Notify selected leads
// @Description Sends one message per selected lead, sequentially. Individual failures are counted, never surfaced; the selection is cleared afterwards.
// @Tags Leads
// @Accept json
// @Produce json
// @Param payload body dto.BulkNotifyRequest true "Channel"
// @Success 200 {object} response.Envelope
// @Success 207 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /leads/bulk-notify [post]
func (h *APIHandler) BulkNotify(c *gin.Context) {
	var req dto.BulkNotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid bulk notify payload"))
		return
	}
	result, err := h.leads.BulkNotify(c.Request.Context(), currentSession(c), req.Channel)
	if err != nil {
		apiError(c, err)
		return
	}
	if result.Partial() {
		response.JSON(c, http.StatusMultiStatus, result, map[string]interface{}{
			"code":    appErrors.ErrPartialBatch.Code,
			"message": BulkSummary(result),
		})
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Export godoc
// @Summary Export leads
// @Tags Leads
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /leads/export [get]
func (h *APIHandler) Export(c *gin.Context) {
	query := service.ParseLeadQuery(c.Request.URL.Query())
	file, err := h.leads.Export(c.Request.Context(), currentSession(c), query, c.DefaultQuery("format", service.ExportCSV))
	if err != nil {
		apiError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+file.Filename)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
