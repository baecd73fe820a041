package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-portal/internal/dto"
	"github.com/noah-isme/coaching-portal/internal/models"
	"github.com/noah-isme/coaching-portal/pkg/config"
	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
)

type notifyCall struct {
	channel models.NotifyChannel
	id      int64
	subject string
	prompt  string
	token   string
}

type fakeLeadRepo struct {
	leads      []models.Lead
	listErr    error
	listCalls  int
	failIDs    map[int64]error
	notified   []notifyCall
	created    []models.CreateLeadRequest
	deleted    []int64
	callResult *models.CallResult
	imported   string
}

func (f *fakeLeadRepo) List(ctx context.Context, token string) ([]models.Lead, error) {
	f.listCalls++
	return f.leads, f.listErr
}

func (f *fakeLeadRepo) Create(ctx context.Context, token string, req models.CreateLeadRequest) (*models.Lead, error) {
	f.created = append(f.created, req)
	return &models.Lead{ID: 100, Name: req.Name, Phone: req.Phone}, nil
}

func (f *fakeLeadRepo) CreatePublic(ctx context.Context, req models.CreateLeadRequest) (*models.Lead, error) {
	return f.Create(ctx, "", req)
}

func (f *fakeLeadRepo) Delete(ctx context.Context, token string, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeLeadRepo) NotifyEmail(ctx context.Context, token string, id int64, subject, prompt string) error {
	f.notified = append(f.notified, notifyCall{models.ChannelEmail, id, subject, prompt, token})
	return f.failIDs[id]
}

func (f *fakeLeadRepo) NotifyWhatsApp(ctx context.Context, token string, id int64, prompt string) error {
	f.notified = append(f.notified, notifyCall{models.ChannelWhatsApp, id, "", prompt, token})
	return f.failIDs[id]
}

func (f *fakeLeadRepo) Call(ctx context.Context, token string, id int64) (*models.CallResult, error) {
	return f.callResult, nil
}

func (f *fakeLeadRepo) Import(ctx context.Context, token, filename string, content io.Reader) (*models.LeadImportResult, error) {
	raw, _ := io.ReadAll(content)
	f.imported = filename + ":" + string(raw)
	return &models.LeadImportResult{Imported: 1, TotalRows: 1}, nil
}

func testOutreach() config.OutreachConfig {
	return config.OutreachConfig{
		BulkEmailSubject:   "Update",
		BulkEmailPrompt:    "Write an update",
		BulkWhatsAppPrompt: "Short update",
		EmailSubject:       "Welcome",
		EmailPrompt:        "Welcome body",
		WhatsAppPrompt:     "Hi there",
	}
}

func newLeadService(repo *fakeLeadRepo) *LeadService {
	return NewLeadService(repo, nil, nil, nil, testOutreach(), nil, nil)
}

func TestBulkNotifyCountsPartialFailures(t *testing.T) {
	repo := &fakeLeadRepo{failIDs: map[int64]error{5: appErrors.Clone(appErrors.ErrUpstream, "Failed to send Email notification")}}
	svc := newLeadService(repo)
	sess := &models.Session{Token: "tok", Selection: []int64{9, 5, 2}}

	result, err := svc.BulkNotify(context.Background(), sess, models.ChannelEmail)
	require.NoError(t, err)

	assert.Equal(t, &dto.BulkResult{Channel: models.ChannelEmail, Attempted: 3, Succeeded: 2, Failed: 1}, result)
	assert.True(t, result.Partial())
	assert.Empty(t, sess.Selection, "selection is cleared even after a partial failure")

	require.Len(t, repo.notified, 3)
	for i, id := range []int64{9, 5, 2} {
		assert.Equal(t, id, repo.notified[i].id, "dispatch follows selection order")
		assert.Equal(t, "Update", repo.notified[i].subject)
		assert.Equal(t, "Write an update", repo.notified[i].prompt)
		assert.Equal(t, "tok", repo.notified[i].token)
	}
}

func TestBulkNotifyWhatsAppUsesPromptOnly(t *testing.T) {
	repo := &fakeLeadRepo{}
	svc := newLeadService(repo)
	sess := &models.Session{Token: "tok", Selection: []int64{1}}

	result, err := svc.BulkNotify(context.Background(), sess, models.ChannelWhatsApp)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, notifyCall{models.ChannelWhatsApp, 1, "", "Short update", "tok"}, repo.notified[0])
}

func TestBulkNotifyRequiresSelection(t *testing.T) {
	svc := newLeadService(&fakeLeadRepo{})

	_, err := svc.BulkNotify(context.Background(), &models.Session{}, models.ChannelEmail)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.BulkNotify(context.Background(), &models.Session{Selection: []int64{1}}, "sms")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestBulkNotifySurfacesExpiredSessionAfterFullRun(t *testing.T) {
	repo := &fakeLeadRepo{failIDs: map[int64]error{1: appErrors.ErrSessionExpired, 2: appErrors.ErrSessionExpired}}
	svc := newLeadService(repo)
	sess := &models.Session{Token: "tok", Selection: []int64{1, 2, 3}}

	result, err := svc.BulkNotify(context.Background(), sess, models.ChannelEmail)

	assert.True(t, IsSessionExpired(err))
	require.NotNil(t, result)
	assert.Equal(t, 3, result.Attempted)
	assert.Equal(t, 1, result.Succeeded)
	assert.Len(t, repo.notified, 3)
	assert.Empty(t, sess.Selection)
}

func TestUpdateSelectionSelectAllUsesRequestFilters(t *testing.T) {
	repo := &fakeLeadRepo{leads: sampleLeads()}
	svc := newLeadService(repo)
	sess := &models.Session{Token: "tok", Selection: []int64{2}}

	view, err := svc.UpdateSelection(context.Background(), sess, dto.SelectionRequest{Action: dto.SelectionSelectAll, Role: "student"})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, sess.Selection)
	assert.True(t, view.AllSelected)
	assert.Equal(t, 2, view.SelectedCount)

	view, err = svc.UpdateSelection(context.Background(), sess, dto.SelectionRequest{Action: dto.SelectionToggle, LeadID: 4})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 4}, sess.Selection)
	assert.False(t, view.AllSelected)
	assert.True(t, view.IsSelected(4))

	_, err = svc.UpdateSelection(context.Background(), sess, dto.SelectionRequest{Action: dto.SelectionDeselectAll})
	require.NoError(t, err)
	assert.Empty(t, sess.Selection)

	_, err = svc.UpdateSelection(context.Background(), sess, dto.SelectionRequest{Action: "explode"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestViewDerivesCitiesFromUnfilteredLeads(t *testing.T) {
	repo := &fakeLeadRepo{leads: sampleLeads()}
	svc := newLeadService(repo)

	view, err := svc.View(context.Background(), &models.Session{Selection: []int64{2}}, LeadQuery{Role: "student"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pune", "Goa", "pune"}, view.Cities)
	assert.Equal(t, 4, view.Total)
	assert.Equal(t, []int64{3, 1}, leadIDs(view.Leads))
	assert.Equal(t, 1, view.SelectedCount)
	assert.Equal(t, 0, view.VisibleSelected)
	assert.Equal(t, FilterAll, view.City)
}

func TestCreateNormalisesPhoneAndDefaultsRole(t *testing.T) {
	repo := &fakeLeadRepo{}
	svc := newLeadService(repo)

	_, err := svc.Create(context.Background(), &models.Session{Token: "tok"}, models.CreateLeadRequest{
		Name: " Amy ", Email: "amy@example.com", Phone: "98765-43210", City: "Pune",
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "Amy", repo.created[0].Name)
	assert.Equal(t, "9876543210", repo.created[0].Phone)
	assert.Equal(t, models.LeadRoleStudent, repo.created[0].Role)

	_, err = svc.Capture(context.Background(), models.CreateLeadRequest{Name: "Bad", Email: "bad@example.com", Phone: "12", City: "Goa"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Len(t, repo.created, 1, "invalid leads never reach the backend")
}

func TestDeleteDropsLeadFromSelection(t *testing.T) {
	repo := &fakeLeadRepo{}
	svc := newLeadService(repo)
	sess := &models.Session{Token: "tok", Selection: []int64{1, 2}}

	require.NoError(t, svc.Delete(context.Background(), sess, 1))
	assert.Equal(t, []int64{1}, repo.deleted)
	assert.Equal(t, []int64{2}, sess.Selection)
}

func TestCallLeadErrorStatus(t *testing.T) {
	repo := &fakeLeadRepo{callResult: &models.CallResult{Status: "error", Message: "no credits"}}
	svc := newLeadService(repo)

	_, err := svc.CallLead(context.Background(), &models.Session{}, 1)
	require.Error(t, err)
	assert.Equal(t, "Failed to initiate call: no credits", appErrors.FromError(err).Message)
}

func TestImportRequiresCSV(t *testing.T) {
	repo := &fakeLeadRepo{}
	svc := newLeadService(repo)

	_, err := svc.Import(context.Background(), &models.Session{}, "leads.xlsx", bytes.NewReader(nil))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	result, err := svc.Import(context.Background(), &models.Session{}, "/tmp/Leads.CSV", bytes.NewBufferString("a,b"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, "Leads.CSV:a,b", repo.imported)
}

func TestExportCSVFollowsQuery(t *testing.T) {
	repo := &fakeLeadRepo{leads: sampleLeads()}
	svc := newLeadService(repo)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC) }

	file, err := svc.Export(context.Background(), &models.Session{}, LeadQuery{City: "pune", Sort: SortNameAsc}, "csv")
	require.NoError(t, err)
	assert.Equal(t, "leads-20240601-093000.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	records, err := csv.NewReader(bytes.NewReader(file.Content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"ID", "Name", "Email", "Phone", "City", "Role", "Status"}, records[0])
	assert.Equal(t, "Amy", records[1][1])
	assert.Equal(t, "bob", records[2][1])

	_, err = svc.Export(context.Background(), &models.Session{}, LeadQuery{}, "xml")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
