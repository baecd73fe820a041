package web

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-portal/internal/dto"
	"github.com/noah-isme/coaching-portal/internal/models"
)

func render(t *testing.T, page string, sess *models.Session, data interface{}) *httptest.ResponseRecorder {
	t.Helper()
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Render(c, http.StatusOK, page, sess, "Test", data)
	return rec
}

func TestNewRendererParsesEveryPage(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	for _, page := range []string{
		"landing", "checkout", "login", "signup", "error", "dashboard",
		"admin", "admin_leads", "admin_classes", "admin_marketing", "admin_communications", "admin_support",
	} {
		assert.Contains(t, r.pages, page)
	}
	assert.NotContains(t, r.pages, "layout")
}

func TestRenderConsumesFlash(t *testing.T) {
	sess := &models.Session{User: &models.User{Name: "Asha", Role: models.RoleAdmin}}
	sess.SetFlash(models.FlashSuccess, "Lead added.")

	rec := render(t, "error", sess, "Something broke")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Lead added.")
	assert.Contains(t, rec.Body.String(), "/admin/leads")
	assert.Nil(t, sess.Flash)
}

func TestRenderUnknownPage(t *testing.T) {
	rec := render(t, "missing", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRenderLeadTable(t *testing.T) {
	city := "Pune"
	view := &dto.LeadView{
		Leads: []models.Lead{
			{ID: 1, Name: "Amy", Email: "amy@example.com", City: &city, Role: models.LeadRoleStudent, Status: models.LeadStatusNew},
			{ID: 2, Name: "Zane", Email: "zane@example.com", Role: models.LeadRoleParent, Status: models.LeadStatusEnrolled},
		},
		Cities:          []string{"Pune"},
		Total:           2,
		Role:            "all",
		City:            "Pune",
		Sort:            "newest",
		SelectedIDs:     []int64{1},
		SelectedCount:   1,
		VisibleSelected: 1,
	}
	data := struct {
		View    *dto.LeadView
		Query   url.Values
		Batches []dto.BatchRow
	}{
		View:    view,
		Query:   url.Values{"city": {"Pune"}},
		Batches: []dto.BatchRow{{Batch: models.Batch{ID: 4, StartDate: "2024-07-01"}, CourseTitle: "Python Basics"}},
	}

	rec := render(t, "admin_leads", &models.Session{}, data)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Amy")
	assert.Contains(t, body, "1 selected")
	assert.Contains(t, body, `/admin/leads/export?city=Pune&amp;format=csv`)
	assert.Contains(t, body, `<input type="hidden" name="city" value="Pune">`)
	assert.Contains(t, body, "Python Basics")
}

func TestRenderDashboardMarkdown(t *testing.T) {
	data := &dto.StudentDashboard{
		User: models.User{Name: "Stu"},
		Chat: []models.ChatMessage{
			{Role: models.ChatRoleUser, Content: "<b>hi</b>", SentAt: time.Now()},
			{Role: models.ChatRoleAssistant, Content: "Use **print**"},
		},
		Unavailable: []string{"certificates"},
	}

	rec := render(t, "dashboard", &models.Session{}, data)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<strong>print</strong>")
	assert.Contains(t, body, "&lt;b&gt;hi&lt;/b&gt;")
	assert.Contains(t, body, "certificates")
}

func TestMarkdownDropsRawHTML(t *testing.T) {
	out := string(Markdown("hello <script>alert(1)</script>\n\n# Title"))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<h1>Title</h1>")
}

func TestQueryFunc(t *testing.T) {
	query := Funcs()["query"].(func(url.Values, string, string) template.URL)
	assert.Equal(t, "?format=pdf&role=student", string(query(url.Values{"role": {"student"}}, "format", "pdf")))
	assert.Equal(t, "", string(query(url.Values{"format": {"csv"}}, "format", "")))
}
