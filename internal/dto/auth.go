package dto

import "github.com/noah-isme/coaching-portal/internal/models"

// PortalRequest chooses the login portal.
type PortalRequest struct {
	Portal models.Portal `json:"portal" form:"portal"`
}

// LoginRequest submits credentials, optionally choosing the portal in the
// same call.
type LoginRequest struct {
	Portal   models.Portal `json:"portal,omitempty"`
	Email    string        `json:"email"`
	Password string        `json:"password"`
}

// SessionState describes the caller's session to JSON clients.
type SessionState struct {
	Flow          models.LoginFlowState `json:"flow"`
	User          *models.User          `json:"user,omitempty"`
	Authenticated bool                  `json:"authenticated"`
}
