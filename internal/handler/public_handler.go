package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-portal/internal/dto"
	"github.com/noah-isme/coaching-portal/internal/models"
	"github.com/noah-isme/coaching-portal/internal/service"
)

// PublicHandler serves the landing page, lead capture and mock checkout.
type PublicHandler struct {
	catalog  *service.CatalogService
	leads    *service.LeadService
	payments *service.PaymentService
	views    Renderer
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(catalog *service.CatalogService, leads *service.LeadService, payments *service.PaymentService, views Renderer) *PublicHandler {
	return &PublicHandler{catalog: catalog, leads: leads, payments: payments, views: views}
}

type landingPage struct {
	Catalog        *dto.Catalog
	Form           models.CreateLeadRequest
	FormError      string
	PaymentSuccess bool
}

type checkoutPage struct {
	Details *dto.CheckoutDetails
	Request models.CheckoutRequest
	Error   string
}

// Landing renders the course catalog and the enquiry form.
func (h *PublicHandler) Landing(c *gin.Context) {
	h.renderLanding(c, http.StatusOK, landingPage{Form: models.CreateLeadRequest{Role: models.LeadRoleStudent}})
}

func (h *PublicHandler) renderLanding(c *gin.Context, status int, page landingPage) {
	sess := currentSession(c)
	page.Catalog = h.catalog.Catalog(c.Request.Context(), sess)
	page.PaymentSuccess = c.Query("payment") == "success"
	h.views.Render(c, status, "landing", sess, "Python Coaching", page)
}

// Enquiry accepts the public lead capture form.
func (h *PublicHandler) Enquiry(c *gin.Context) {
	var req models.CreateLeadRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderLanding(c, http.StatusBadRequest, landingPage{Form: req, FormError: "Please check the form and try again."})
		return
	}
	if req.CourseID != nil && *req.CourseID == 0 {
		req.CourseID = nil
	}

	if _, err := h.leads.Capture(c.Request.Context(), req); err != nil {
		h.renderLanding(c, statusOf(err), landingPage{Form: req, FormError: errorMessage(err)})
		return
	}
	flashRedirect(c, models.FlashSuccess, "Thanks! We will get in touch with you shortly.", "/#enquire")
}

// Checkout shows the mock payment page.
func (h *PublicHandler) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	_ = c.ShouldBindQuery(&req)
	h.renderCheckout(c, req, nil)
}

func (h *PublicHandler) renderCheckout(c *gin.Context, req models.CheckoutRequest, failure error) {
	sess := currentSession(c)
	page := checkoutPage{Request: req}
	status := http.StatusOK

	details, err := h.payments.Checkout(c.Request.Context(), sess, req)
	if err != nil {
		page.Error = errorMessage(err)
		status = statusOf(err)
	} else {
		page.Details = details
	}
	if failure != nil {
		page.Error = errorMessage(failure)
		status = statusOf(failure)
	}
	h.views.Render(c, status, "checkout", sess, "Checkout", page)
}

// Pay confirms the mock payment and returns to the landing page.
func (h *PublicHandler) Pay(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderCheckout(c, req, bindError(err, "Please check your details and try again."))
		return
	}
	if _, err := h.payments.Pay(c.Request.Context(), currentSession(c), req); err != nil {
		h.renderCheckout(c, req, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/?payment=success")
}
