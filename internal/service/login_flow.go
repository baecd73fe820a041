package service

import (
	"github.com/noah-isme/coaching-portal/internal/models"
	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
)

// LoginFlow is the two-step sign-in interaction: choose a portal, then submit
// credentials. It is a pure value over models.LoginFlowState so it can live in
// the session between requests.
type LoginFlow struct {
	state models.LoginFlowState
}

// NewLoginFlow resumes a flow from persisted state. Empty state starts at the
// portal choice.
func NewLoginFlow(state models.LoginFlowState) *LoginFlow {
	if state.Step == "" || (state.Step == models.StepCredentials && !state.Portal.Valid()) {
		state = models.LoginFlowState{Step: models.StepRoleSelect}
	}
	return &LoginFlow{state: state}
}

// State returns the persistable snapshot.
func (f *LoginFlow) State() models.LoginFlowState {
	return f.state
}

// SelectPortal moves to the credentials step for portal, clearing any
// previous error and credential input.
func (f *LoginFlow) SelectPortal(portal models.Portal) error {
	if !portal.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown portal")
	}
	f.state = models.LoginFlowState{Step: models.StepCredentials, Portal: portal}
	return nil
}

// Back returns to the portal choice, clearing portal, credentials and error.
func (f *LoginFlow) Back() {
	f.state = models.LoginFlowState{Step: models.StepRoleSelect}
}

// CanSubmit reports whether credentials may be submitted.
func (f *LoginFlow) CanSubmit() bool {
	return f.state.Step == models.StepCredentials && f.state.Portal.Valid()
}

// Fail keeps the credentials step open with an error. The password is never kept.
func (f *LoginFlow) Fail(email, message string) {
	f.state.Step = models.StepCredentials
	f.state.Email = email
	f.state.Error = message
}

// Succeed marks the flow as authenticated.
func (f *LoginFlow) Succeed() {
	f.state = models.LoginFlowState{Step: models.StepAuthenticated, Portal: f.state.Portal}
}

// PortalAccepts is the role compatibility check. The admin portal requires an
// admin; the student portal accepts every account, admins included.
func PortalAccepts(portal models.Portal, role models.UserRole) bool {
	if portal == models.PortalAdmin {
		return role == models.RoleAdmin
	}
	return true
}

// HomeFor routes an authenticated user by the role the backend reported.
func HomeFor(role models.UserRole) string {
	if role == models.RoleAdmin {
		return "/admin"
	}
	return "/dashboard"
}
