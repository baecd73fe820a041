package models

import "time"

// CommunicationLog is one outbound or inbound message recorded against a lead.
type CommunicationLog struct {
	ID        int64     `json:"id"`
	LeadID    int64     `json:"lead_id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
}

// EmailRequest sends a manual email to a lead.
type EmailRequest struct {
	LeadID  int64  `json:"lead_id,omitempty" form:"lead_id" validate:"required,gt=0"`
	Email   string `json:"email,omitempty" form:"email" validate:"omitempty,email"`
	Subject string `json:"subject" form:"subject" validate:"required"`
	Message string `json:"message" form:"message" validate:"required"`
}
