package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-portal/internal/dto"
	"github.com/noah-isme/coaching-portal/internal/models"
	"github.com/noah-isme/coaching-portal/internal/service"
)

const adminClassesPath = "/admin/classes"

// AdminHandler serves the admin overview, classes, marketing,
// communications and support pages.
type AdminHandler struct {
	admin     *service.AdminService
	catalog   *service.CatalogService
	leads     *service.LeadService
	marketing *service.MarketingService
	comms     *service.CommunicationService
	views     Renderer
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(admin *service.AdminService, catalog *service.CatalogService, leads *service.LeadService, marketing *service.MarketingService, comms *service.CommunicationService, views Renderer) *AdminHandler {
	return &AdminHandler{admin: admin, catalog: catalog, leads: leads, marketing: marketing, comms: comms, views: views}
}

type classesPage struct {
	Batches  []dto.BatchRow
	Courses  []models.Course
	Selected *dto.BatchRow
	Enrolled []models.User
	Students []models.User
}

type marketingPage struct {
	Form     models.MarketingRequest
	Filter   string
	Draft    *dto.MarketingDraft
	Audience []models.Lead
	Error    string
}

type communicationsPage struct {
	Leads   []models.Lead
	Lead    *models.Lead
	History []models.CommunicationLog
}

// renderFailure shows an error page unless the session expired.
func (h *AdminHandler) renderFailure(c *gin.Context, title string, err error) {
	if abortIfExpired(c, err) {
		return
	}
	h.views.Render(c, statusOf(err), "error", currentSession(c), title, errorMessage(err))
}

// Overview renders the stats dashboard.
func (h *AdminHandler) Overview(c *gin.Context) {
	sess := currentSession(c)
	overview, err := h.admin.Overview(c.Request.Context(), sess)
	if err != nil {
		h.renderFailure(c, "Admin", err)
		return
	}
	h.views.Render(c, http.StatusOK, "admin", sess, "Admin overview", overview)
}

// Classes lists batches; `?batch=` expands one batch's roster.
func (h *AdminHandler) Classes(c *gin.Context) {
	sess := currentSession(c)
	ctx := c.Request.Context()

	batches, err := h.catalog.BatchRows(ctx, sess)
	if err != nil {
		h.renderFailure(c, "Classes", err)
		return
	}
	courses, err := h.catalog.Courses(ctx, sess)
	if err != nil {
		h.renderFailure(c, "Classes", err)
		return
	}
	page := classesPage{Batches: batches, Courses: courses}

	if raw := c.Query("batch"); raw != "" {
		id, _ := strconv.ParseInt(raw, 10, 64)
		for i := range batches {
			if batches[i].ID == id {
				page.Selected = &batches[i]
			}
		}
		if page.Selected != nil {
			if page.Enrolled, err = h.catalog.BatchStudents(ctx, sess, id); err != nil {
				h.renderFailure(c, "Classes", err)
				return
			}
			if page.Students, err = h.admin.Students(ctx, sess); err != nil {
				h.renderFailure(c, "Classes", err)
				return
			}
		}
	}
	h.views.Render(c, http.StatusOK, "admin_classes", sess, "Classes", page)
}

// CreateBatch schedules a new batch.
func (h *AdminHandler) CreateBatch(c *gin.Context) {
	var req models.CreateBatchRequest
	_ = c.ShouldBind(&req)
	if _, err := h.catalog.CreateBatch(c.Request.Context(), currentSession(c), req); err != nil {
		failRedirect(c, err, adminClassesPath)
		return
	}
	flashRedirect(c, models.FlashSuccess, "Batch created.", adminClassesPath)
}

func batchPath(id int64) string {
	return adminClassesPath + "?batch=" + strconv.FormatInt(id, 10)
}

// EnrollStudent adds an existing student to the batch.
func (h *AdminHandler) EnrollStudent(c *gin.Context) {
	batchID, err := paramID(c, "id")
	if err != nil {
		failRedirect(c, err, adminClassesPath)
		return
	}
	studentID, err := formID(c, "student_id")
	if err != nil {
		failRedirect(c, err, batchPath(batchID))
		return
	}
	if _, err := h.catalog.EnrollStudent(c.Request.Context(), currentSession(c), studentID, batchID); err != nil {
		failRedirect(c, err, batchPath(batchID))
		return
	}
	flashRedirect(c, models.FlashSuccess, "Student enrolled.", batchPath(batchID))
}

// IssueCertificate issues a certificate to an enrolled student.
func (h *AdminHandler) IssueCertificate(c *gin.Context) {
	batchID, err := paramID(c, "id")
	if err != nil {
		failRedirect(c, err, adminClassesPath)
		return
	}
	studentID, err := formID(c, "student_id")
	if err != nil {
		failRedirect(c, err, batchPath(batchID))
		return
	}
	result, err := h.catalog.IssueCertificate(c.Request.Context(), currentSession(c), studentID, batchID)
	if err != nil {
		failRedirect(c, err, batchPath(batchID))
		return
	}
	message := result.Message
	if message == "" {
		message = "Certificate issued."
	}
	flashRedirect(c, models.FlashSuccess, message, batchPath(batchID))
}

// Marketing renders the campaign generator.
func (h *AdminHandler) Marketing(c *gin.Context) {
	h.renderMarketing(c, http.StatusOK, marketingPage{
		Form:   models.MarketingRequest{Channel: "email"},
		Filter: c.DefaultQuery("audience", dto.AudienceAll),
	})
}

func (h *AdminHandler) renderMarketing(c *gin.Context, status int, page marketingPage) {
	sess := currentSession(c)
	if page.Audience == nil {
		audience, err := h.marketing.Audience(c.Request.Context(), sess, page.Filter)
		if err != nil {
			h.renderFailure(c, "Marketing", err)
			return
		}
		page.Audience = audience
	}
	h.views.Render(c, status, "admin_marketing", sess, "Marketing", page)
}

// GenerateCampaign drafts content with the AI assistant.
func (h *AdminHandler) GenerateCampaign(c *gin.Context) {
	var req models.MarketingRequest
	_ = c.ShouldBind(&req)
	filter := c.DefaultPostForm("audience_filter", dto.AudienceAll)

	draft, err := h.marketing.Generate(c.Request.Context(), currentSession(c), req, filter)
	if err != nil {
		if abortIfExpired(c, err) {
			return
		}
		h.renderMarketing(c, statusOf(err), marketingPage{Form: req, Filter: filter, Error: errorMessage(err)})
		return
	}
	h.renderMarketing(c, http.StatusOK, marketingPage{Form: req, Filter: filter, Draft: draft, Audience: draft.Audience})
}

// Broadcast sends campaign content to the chosen leads.
func (h *AdminHandler) Broadcast(c *gin.Context) {
	var req dto.BroadcastRequest
	_ = c.ShouldBind(&req)

	message, err := h.marketing.Broadcast(c.Request.Context(), currentSession(c), req)
	if err != nil {
		failRedirect(c, err, "/admin/marketing")
		return
	}
	if message == "" {
		message = "Campaign sent."
	}
	flashRedirect(c, models.FlashSuccess, message, "/admin/marketing")
}

// Communications shows the message history of `?lead=`.
func (h *AdminHandler) Communications(c *gin.Context) {
	sess := currentSession(c)
	ctx := c.Request.Context()

	leads, err := h.leads.List(ctx, sess)
	if err != nil {
		h.renderFailure(c, "Communications", err)
		return
	}
	page := communicationsPage{Leads: leads}

	if id, _ := strconv.ParseInt(c.Query("lead"), 10, 64); id > 0 {
		for i := range leads {
			if leads[i].ID == id {
				page.Lead = &leads[i]
			}
		}
		if page.Lead != nil {
			if page.History, err = h.comms.History(ctx, sess, id); err != nil {
				h.renderFailure(c, "Communications", err)
				return
			}
		}
	}
	h.views.Render(c, http.StatusOK, "admin_communications", sess, "Communications", page)
}

// SendEmail emails a lead manually.
func (h *AdminHandler) SendEmail(c *gin.Context) {
	var req models.EmailRequest
	_ = c.ShouldBind(&req)
	back := "/admin/communications?lead=" + strconv.FormatInt(req.LeadID, 10)

	if err := h.comms.SendEmail(c.Request.Context(), currentSession(c), req); err != nil {
		failRedirect(c, err, back)
		return
	}
	flashRedirect(c, models.FlashSuccess, "Email sent.", back)
}

// Support lists every support ticket.
func (h *AdminHandler) Support(c *gin.Context) {
	sess := currentSession(c)
	tickets, err := h.admin.Tickets(c.Request.Context(), sess)
	if err != nil {
		h.renderFailure(c, "Support", err)
		return
	}
	h.views.Render(c, http.StatusOK, "admin_support", sess, "Support", tickets)
}
