package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-portal/internal/models"
	"github.com/noah-isme/coaching-portal/internal/service"
)

const dashboardPath = "/dashboard"

// StudentHandler serves the student dashboard.
type StudentHandler struct {
	service *service.StudentService
	views   Renderer
}

// NewStudentHandler constructs a StudentHandler.
func NewStudentHandler(svc *service.StudentService, views Renderer) *StudentHandler {
	return &StudentHandler{service: svc, views: views}
}

// Dashboard renders every dashboard section.
func (h *StudentHandler) Dashboard(c *gin.Context) {
	sess := currentSession(c)
	view, err := h.service.Dashboard(c.Request.Context(), sess)
	if err != nil {
		if abortIfExpired(c, err) {
			return
		}
		h.views.Render(c, statusOf(err), "error", sess, "Dashboard", errorMessage(err))
		return
	}
	h.views.Render(c, http.StatusOK, "dashboard", sess, "My dashboard", view)
}

// Chat asks the AI tutor a question.
func (h *StudentHandler) Chat(c *gin.Context) {
	if _, err := h.service.Chat(c.Request.Context(), currentSession(c), c.PostForm("prompt")); err != nil {
		failRedirect(c, err, dashboardPath+"#tutor")
		return
	}
	c.Redirect(http.StatusSeeOther, dashboardPath+"#tutor")
}

// ClearChat forgets the tutor conversation.
func (h *StudentHandler) ClearChat(c *gin.Context) {
	h.service.ClearChat(currentSession(c))
	c.Redirect(http.StatusSeeOther, dashboardPath+"#tutor")
}

// Submit turns in an assignment.
func (h *StudentHandler) Submit(c *gin.Context) {
	var req models.SubmissionRequest
	if err := c.ShouldBind(&req); err != nil {
		failRedirect(c, bindError(err, "Please choose an assignment."), dashboardPath+"#assignments")
		return
	}
	if _, err := h.service.Submit(c.Request.Context(), currentSession(c), req); err != nil {
		failRedirect(c, err, dashboardPath+"#assignments")
		return
	}
	flashRedirect(c, models.FlashSuccess, "Assignment submitted.", dashboardPath+"#assignments")
}

// OpenTicket raises a support ticket.
func (h *StudentHandler) OpenTicket(c *gin.Context) {
	var req models.SupportTicketRequest
	_ = c.ShouldBind(&req)
	if _, err := h.service.OpenTicket(c.Request.Context(), currentSession(c), req); err != nil {
		failRedirect(c, err, dashboardPath+"#support")
		return
	}
	flashRedirect(c, models.FlashSuccess, "Ticket submitted. Our team will respond soon.", dashboardPath+"#support")
}

// DownloadCertificate proxies the certificate PDF from the backend.
func (h *StudentHandler) DownloadCertificate(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		failRedirect(c, err, dashboardPath)
		return
	}
	body, contentType, err := h.service.DownloadCertificate(c.Request.Context(), currentSession(c), id)
	if err != nil {
		failRedirect(c, err, dashboardPath+"#certificates")
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "application/pdf"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, body, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=certificate_%d.pdf", id),
	})
}
