package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-portal/internal/models"
	"github.com/noah-isme/coaching-portal/internal/service"
)

func newAuthHandler(sessions *service.SessionService, views *fakeRenderer) *AuthHandler {
	auth := service.NewAuthService(&fakeAuthRepo{users: map[string]*models.User{
		"admin@example.com":   adminUser,
		"student@example.com": {ID: 2, Name: "Stu", Email: "student@example.com", Role: models.RoleStudent},
	}}, sessions, nil, nil, nil, nil)
	return NewAuthHandler(auth, views, nil)
}

func TestLoginPagePreselectsPortal(t *testing.T) {
	sessions := newSessions()
	views := &fakeRenderer{}
	h := newAuthHandler(sessions, views)
	r := portalRouter(sessions)
	r.GET("/login", h.LoginPage)

	id := seed(t, sessions, nil)
	req := httptest.NewRequest(http.MethodGet, "/login?portal=admin&expired=1", nil)
	req.AddCookie(&http.Cookie{Name: testSession.CookieName, Value: id})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "login", views.page)
	page, ok := views.data.(loginPage)
	require.True(t, ok)
	assert.Equal(t, models.StepCredentials, page.Flow.Step)
	assert.Equal(t, models.PortalAdmin, page.Flow.Portal)
	assert.True(t, page.Expired)
}

func TestLoginPageRedirectsSignedInUser(t *testing.T) {
	sessions := newSessions()
	h := newAuthHandler(sessions, &fakeRenderer{})
	r := portalRouter(sessions)
	r.GET("/login", h.LoginPage)

	id := seed(t, sessions, adminUser)
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: testSession.CookieName, Value: id})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
}

func TestLoginFormFlow(t *testing.T) {
	sessions := newSessions()
	views := &fakeRenderer{}
	h := newAuthHandler(sessions, views)
	r := portalRouter(sessions)
	r.POST("/login/portal", h.SelectPortal)
	r.POST("/login", h.Login)

	id := seed(t, sessions, nil)
	rec := postForm(r, "/login/portal", id, url.Values{"portal": {"student"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = postForm(r, "/login", id, url.Values{"email": {"student@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	page := views.data.(loginPage)
	assert.Equal(t, "Invalid credentials. Please try again.", page.Flow.Error)
	assert.Equal(t, "student@example.com", page.Flow.Email)

	rec = postForm(r, "/login", id, url.Values{"email": {"student@example.com"}, "password": {"secret"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestSelectPortalRejectsUnknown(t *testing.T) {
	sessions := newSessions()
	views := &fakeRenderer{}
	h := newAuthHandler(sessions, views)
	r := portalRouter(sessions)
	r.POST("/login/portal", h.SelectPortal)

	rec := postForm(r, "/login/portal", seed(t, sessions, nil), url.Values{"portal": {"teacher"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "login", views.page)
}

func TestLogoutDestroysSession(t *testing.T) {
	sessions := newSessions()
	h := newAuthHandler(sessions, &fakeRenderer{})
	r := portalRouter(sessions)
	r.POST("/logout", h.Logout)

	id := seed(t, sessions, adminUser)
	rec := postForm(r, "/logout", id, nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	_, err := sessions.Load(context.Background(), id)
	assert.Error(t, err)
}
