package models

import "time"

// Portal is the login surface a visitor chose before entering credentials.
type Portal string

const (
	PortalStudent Portal = "student"
	PortalAdmin   Portal = "admin"
)

// Valid reports whether the portal is one of the known surfaces.
func (p Portal) Valid() bool {
	return p == PortalStudent || p == PortalAdmin
}

// LoginStep is the position of a visitor in the sign-in flow.
type LoginStep string

const (
	StepRoleSelect    LoginStep = "role_select"
	StepCredentials   LoginStep = "credentials"
	StepAuthenticated LoginStep = "authenticated"
)

// LoginFlowState is the persisted form of the sign-in flow. Email is kept so a
// failed attempt can redisplay it; the password never is.
type LoginFlowState struct {
	Step   LoginStep `json:"step"`
	Portal Portal    `json:"portal,omitempty"`
	Email  string    `json:"email,omitempty"`
	Error  string    `json:"error,omitempty"`
}

// FlashKind classifies a one-shot message shown on the next page render.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashInfo    FlashKind = "info"
)

// Flash is a one-shot message rendered once and then discarded.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// Session is the server-side record behind the browser cookie. It carries the
// backend token and every bit of per-browser UI state that must survive a
// full page round trip.
type Session struct {
	ID          string         `json:"id"`
	Token       string         `json:"token,omitempty"`
	User        *User          `json:"user,omitempty"`
	Flow        LoginFlowState `json:"flow"`
	Selection   []int64        `json:"selection,omitempty"`
	ChatHistory []ChatMessage  `json:"chat_history,omitempty"`
	Flash       *Flash         `json:"flash,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	ExpiresAt   time.Time      `json:"expires_at"`
}

// Authenticated reports whether the session holds a token and a resolved identity.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != "" && s.User != nil
}

// ClearAuth drops the backend token and identity.
func (s *Session) ClearAuth() {
	s.Token = ""
	s.User = nil
}

// SetFlash queues a message for the next render.
func (s *Session) SetFlash(kind FlashKind, message string) {
	s.Flash = &Flash{Kind: kind, Message: message}
}

// TakeFlash returns the pending flash and clears it.
func (s *Session) TakeFlash() *Flash {
	f := s.Flash
	s.Flash = nil
	return f
}
