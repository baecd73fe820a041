package models

// LeadRole distinguishes who the lead is.
type LeadRole string

const (
	LeadRoleStudent LeadRole = "student"
	LeadRoleParent  LeadRole = "parent"
)

// LeadStatus tracks where a lead sits in the enrollment funnel.
type LeadStatus string

const (
	LeadStatusNew      LeadStatus = "new"
	LeadStatusEnrolled LeadStatus = "enrolled"
)

// Lead represents a prospective or enrolled contact as returned by the backend.
type Lead struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Phone    string     `json:"phone"`
	City     *string    `json:"city,omitempty"`
	Role     LeadRole   `json:"role,omitempty"`
	Status   LeadStatus `json:"status,omitempty"`
	CourseID *int64     `json:"course_id,omitempty"`
}

// CityValue returns the lead's city or an empty string.
func (l Lead) CityValue() string {
	if l.City == nil {
		return ""
	}
	return *l.City
}

// CreateLeadRequest is submitted by the public capture form and by admin manual entry.
type CreateLeadRequest struct {
	Name     string   `json:"name" form:"name" validate:"required,max=120"`
	Email    string   `json:"email" form:"email" validate:"required,email"`
	Phone    string   `json:"phone" form:"phone" validate:"required,phone"`
	City     string   `json:"city" form:"city" validate:"required,max=80"`
	Role     LeadRole `json:"role" form:"role" validate:"omitempty,oneof=student parent"`
	CourseID *int64   `json:"course_id,omitempty" form:"course_id" validate:"omitempty,gt=0"`
}

// NotifyChannel selects the outbound channel for lead notifications.
type NotifyChannel string

const (
	ChannelEmail    NotifyChannel = "email"
	ChannelWhatsApp NotifyChannel = "whatsapp"
)

// Valid reports whether the channel is supported.
func (c NotifyChannel) Valid() bool {
	return c == ChannelEmail || c == ChannelWhatsApp
}

// BulkNotifyRequest is the payload of the backend bulk notification endpoints.
type BulkNotifyRequest struct {
	LeadIDs []int64 `json:"lead_ids"`
	Subject string  `json:"subject,omitempty"`
	Prompt  string  `json:"prompt,omitempty"`
}

// LeadImportResult summarises a CSV import handled by the backend.
type LeadImportResult struct {
	Imported  int      `json:"imported"`
	Errors    []string `json:"errors"`
	TotalRows int      `json:"total_rows"`
}

// MessageResponse is the generic `{message}` body returned by many backend actions.
type MessageResponse struct {
	Message string `json:"message"`
}

// CallResult is what the backend reports after asking the voice agent to ring a lead.
type CallResult struct {
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}
