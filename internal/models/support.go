package models

import "time"

// SupportTicket is a help request raised by a signed-in user.
type SupportTicket struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	Response  *string   `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// SupportTicketRequest opens a ticket.
type SupportTicketRequest struct {
	Subject string `json:"subject" form:"subject" validate:"required,max=200"`
	Message string `json:"message" form:"message" validate:"required"`
}
