package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-portal/internal/dto"
	"github.com/noah-isme/coaching-portal/internal/models"
	"github.com/noah-isme/coaching-portal/internal/service"
)

const adminLeadsPath = "/admin/leads"

// AdminLeadHandler serves the lead console.
type AdminLeadHandler struct {
	leads   *service.LeadService
	catalog *service.CatalogService
	views   Renderer
}

// NewAdminLeadHandler constructs an AdminLeadHandler.
func NewAdminLeadHandler(leads *service.LeadService, catalog *service.CatalogService, views Renderer) *AdminLeadHandler {
	return &AdminLeadHandler{leads: leads, catalog: catalog, views: views}
}

type leadsPage struct {
	View    *dto.LeadView
	Query   url.Values
	Batches []dto.BatchRow
}

// leadsURL rebuilds the table URL so actions land back on the same view.
func leadsURL(query service.LeadQuery) string {
	if encoded := query.Values().Encode(); encoded != "" {
		return adminLeadsPath + "?" + encoded
	}
	return adminLeadsPath
}

// formQuery reads the view state carried in hidden form fields.
func formQuery(c *gin.Context) service.LeadQuery {
	_ = c.Request.ParseForm()
	return service.ParseLeadQuery(c.Request.PostForm)
}

// List renders the filtered, sorted lead table.
func (h *AdminLeadHandler) List(c *gin.Context) {
	sess := currentSession(c)
	query := service.ParseLeadQuery(c.Request.URL.Query())

	view, err := h.leads.View(c.Request.Context(), sess, query)
	if err != nil {
		if abortIfExpired(c, err) {
			return
		}
		h.views.Render(c, statusOf(err), "error", sess, "Leads", errorMessage(err))
		return
	}
	batches, err := h.catalog.BatchRows(c.Request.Context(), sess)
	if abortIfExpired(c, err) {
		return
	}

	h.views.Render(c, http.StatusOK, "admin_leads", sess, "Leads", leadsPage{
		View:    view,
		Query:   query.Values(),
		Batches: batches,
	})
}

// Selection toggles one lead or selects/deselects the filtered list.
func (h *AdminLeadHandler) Selection(c *gin.Context) {
	var req dto.SelectionRequest
	_ = c.ShouldBind(&req)
	query := formQuery(c)

	if _, err := h.leads.UpdateSelection(c.Request.Context(), currentSession(c), req); err != nil {
		failRedirect(c, err, leadsURL(query))
		return
	}
	c.Redirect(http.StatusSeeOther, leadsURL(query))
}

// BulkNotify messages every selected lead.
func (h *AdminLeadHandler) BulkNotify(c *gin.Context) {
	query := formQuery(c)
	result, err := h.leads.BulkNotify(c.Request.Context(), currentSession(c), models.NotifyChannel(c.PostForm("channel")))
	if err != nil {
		failRedirect(c, err, leadsURL(query))
		return
	}
	flashRedirect(c, bulkFlashKind(result), BulkSummary(result), leadsURL(query))
}

// BulkSummary describes a bulk dispatch for the operator.
func BulkSummary(result *dto.BulkResult) string {
	label := "Email"
	if result.Channel == models.ChannelWhatsApp {
		label = "WhatsApp"
	}
	if result.Partial() {
		return fmt.Sprintf("%s sent to %d of %d leads; %d failed.", label, result.Succeeded, result.Attempted, result.Failed)
	}
	return fmt.Sprintf("%s sent to %d leads.", label, result.Succeeded)
}

func bulkFlashKind(result *dto.BulkResult) models.FlashKind {
	if result.Succeeded == 0 {
		return models.FlashError
	}
	if result.Partial() {
		return models.FlashInfo
	}
	return models.FlashSuccess
}

// Create adds a lead manually.
func (h *AdminLeadHandler) Create(c *gin.Context) {
	var req models.CreateLeadRequest
	_ = c.ShouldBind(&req)
	if req.CourseID != nil && *req.CourseID == 0 {
		req.CourseID = nil
	}
	if _, err := h.leads.Create(c.Request.Context(), currentSession(c), req); err != nil {
		failRedirect(c, err, adminLeadsPath+"#add")
		return
	}
	flashRedirect(c, models.FlashSuccess, "Lead added.", adminLeadsPath)
}

// Import forwards an uploaded CSV.
func (h *AdminLeadHandler) Import(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		failRedirect(c, bindError(err, "Please choose a CSV file."), adminLeadsPath)
		return
	}
	src, err := file.Open()
	if err != nil {
		failRedirect(c, bindError(err, "Could not read the uploaded file."), adminLeadsPath)
		return
	}
	defer src.Close()

	result, err := h.leads.Import(c.Request.Context(), currentSession(c), file.Filename, src)
	if err != nil {
		failRedirect(c, err, adminLeadsPath)
		return
	}
	message := fmt.Sprintf("Imported %d of %d rows.", result.Imported, result.TotalRows)
	if len(result.Errors) > 0 {
		flashRedirect(c, models.FlashInfo, message+" First problem: "+result.Errors[0], adminLeadsPath)
		return
	}
	flashRedirect(c, models.FlashSuccess, message, adminLeadsPath)
}

// Export downloads the current view as CSV or PDF.
func (h *AdminLeadHandler) Export(c *gin.Context) {
	query := service.ParseLeadQuery(c.Request.URL.Query())
	file, err := h.leads.Export(c.Request.Context(), currentSession(c), query, c.DefaultQuery("format", service.ExportCSV))
	if err != nil {
		failRedirect(c, err, leadsURL(query))
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+file.Filename)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// Notify sends the standard outreach message to one lead.
func (h *AdminLeadHandler) Notify(c *gin.Context) {
	query := formQuery(c)
	id, err := paramID(c, "id")
	if err != nil {
		failRedirect(c, err, leadsURL(query))
		return
	}
	channel := models.NotifyChannel(c.PostForm("channel"))
	if err := h.leads.NotifyLead(c.Request.Context(), currentSession(c), id, channel); err != nil {
		failRedirect(c, err, leadsURL(query))
		return
	}
	flashRedirect(c, models.FlashSuccess, "Notification sent.", leadsURL(query))
}

// Call asks the voice agent to ring one lead.
func (h *AdminLeadHandler) Call(c *gin.Context) {
	query := formQuery(c)
	id, err := paramID(c, "id")
	if err != nil {
		failRedirect(c, err, leadsURL(query))
		return
	}
	result, err := h.leads.CallLead(c.Request.Context(), currentSession(c), id)
	if err != nil {
		failRedirect(c, err, leadsURL(query))
		return
	}
	message := "Call initiated."
	if result.Message != "" {
		message = result.Message
	}
	flashRedirect(c, models.FlashSuccess, message, leadsURL(query))
}

// Delete removes a lead.
func (h *AdminLeadHandler) Delete(c *gin.Context) {
	query := formQuery(c)
	id, err := paramID(c, "id")
	if err != nil {
		failRedirect(c, err, leadsURL(query))
		return
	}
	if err := h.leads.Delete(c.Request.Context(), currentSession(c), id); err != nil {
		failRedirect(c, err, leadsURL(query))
		return
	}
	flashRedirect(c, models.FlashSuccess, "Lead deleted.", leadsURL(query))
}

// Enroll converts a lead into a student of the chosen batch.
func (h *AdminLeadHandler) Enroll(c *gin.Context) {
	query := formQuery(c)
	id, err := paramID(c, "id")
	if err != nil {
		failRedirect(c, err, leadsURL(query))
		return
	}
	batchID, err := formID(c, "batch_id")
	if err != nil {
		failRedirect(c, err, leadsURL(query))
		return
	}
	result, err := h.catalog.EnrollLead(c.Request.Context(), currentSession(c), id, batchID)
	if err != nil {
		failRedirect(c, err, leadsURL(query))
		return
	}
	message := result.Message
	if message == "" {
		message = "Lead enrolled as student #" + strconv.FormatInt(result.StudentID, 10) + "."
	}
	flashRedirect(c, models.FlashSuccess, message, leadsURL(query))
}
