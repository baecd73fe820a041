package dto

import "github.com/noah-isme/coaching-portal/internal/models"

// BatchRow is a batch joined with its course for listings.
type BatchRow struct {
	models.Batch
	CourseTitle string  `json:"course_title"`
	Price       float64 `json:"price"`
}

// Catalog is the public course listing.
type Catalog struct {
	Courses []models.Course `json:"courses"`
	Batches []BatchRow      `json:"batches"`
}

// CheckoutDetails is what the mock payment page shows before paying.
type CheckoutDetails struct {
	BatchID     int64   `json:"batch_id"`
	CourseTitle string  `json:"course_title"`
	StartDate   string  `json:"start_date"`
	Timings     string  `json:"timings"`
	Amount      float64 `json:"amount"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
}

// StudentDashboard aggregates the signed-in student's sections. Sections that
// failed to load are listed in Unavailable and rendered empty.
type StudentDashboard struct {
	User         models.User            `json:"user"`
	Classes      []models.ClassSession  `json:"classes"`
	Certificates []models.Certificate   `json:"certificates"`
	Assignments  []models.Assignment    `json:"assignments"`
	Submissions  []models.Submission    `json:"submissions"`
	Tickets      []models.SupportTicket `json:"tickets"`
	Chat         []models.ChatMessage   `json:"chat"`
	Unavailable  []string               `json:"unavailable,omitempty"`
}

// AdminOverview feeds the admin landing page.
type AdminOverview struct {
	Stats   models.AdminStats `json:"stats"`
	Batches []BatchRow        `json:"batches"`
}

// MarketingDraft is generated campaign content plus the audience it targets.
type MarketingDraft struct {
	Request  models.MarketingRequest `json:"request"`
	Content  string                  `json:"content"`
	Audience []models.Lead           `json:"audience"`
}

// Audience filters for marketing broadcasts.
const (
	AudienceAll      = "all"
	AudienceStudents = "students"
	AudienceParents  = "parents"
)

// BroadcastRequest sends one piece of campaign content to chosen leads.
type BroadcastRequest struct {
	Channel models.NotifyChannel `json:"channel" form:"channel" validate:"required,oneof=email whatsapp"`
	LeadIDs []int64              `json:"lead_ids" form:"lead_ids" validate:"required,min=1,dive,gt=0"`
	Subject string               `json:"subject" form:"subject" validate:"max=200"`
	Content string               `json:"content" form:"content" validate:"required"`
}
