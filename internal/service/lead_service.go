package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-portal/internal/dto"
	"github.com/noah-isme/coaching-portal/internal/models"
	"github.com/noah-isme/coaching-portal/pkg/config"
	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
	"github.com/noah-isme/coaching-portal/pkg/export"
)

type leadRepository interface {
	List(ctx context.Context, token string) ([]models.Lead, error)
	Create(ctx context.Context, token string, req models.CreateLeadRequest) (*models.Lead, error)
	CreatePublic(ctx context.Context, req models.CreateLeadRequest) (*models.Lead, error)
	Delete(ctx context.Context, token string, id int64) error
	NotifyEmail(ctx context.Context, token string, id int64, subject, prompt string) error
	NotifyWhatsApp(ctx context.Context, token string, id int64, prompt string) error
	Call(ctx context.Context, token string, id int64) (*models.CallResult, error)
	Import(ctx context.Context, token, filename string, content io.Reader) (*models.LeadImportResult, error)
}

// sessionGuard serialises long-running per-session operations and lets them
// see writes made by an earlier holder.
type sessionGuard interface {
	AcquireGuard(ctx context.Context, sess *models.Session, name GuardName) (func(), error)
	Load(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, sess *models.Session) error
}

// Export formats.
const (
	ExportCSV = "csv"
	ExportPDF = "pdf"
)

// LeadService implements the lead console: the derived table view, the sticky
// selection, bulk and per-lead outreach, and lead mutations.
type LeadService struct {
	repo      leadRepository
	sessions  sessionGuard
	cache     *CacheService
	metrics   *MetricsService
	outreach  config.OutreachConfig
	validator *validator.Validate
	logger    *zap.Logger
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	now       func() time.Time
}

// NewLeadService constructs a LeadService. A nil sessions disables the bulk
// dispatch guard.
func NewLeadService(repo leadRepository, sessions sessionGuard, cache *CacheService, metrics *MetricsService, outreach config.OutreachConfig, validate *validator.Validate, logger *zap.Logger) *LeadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &LeadService{
		repo:      repo,
		sessions:  sessions,
		cache:     cache,
		metrics:   metrics,
		outreach:  outreach,
		validator: validate,
		logger:    logger,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		now:       time.Now,
	}
}

// List returns the full lead collection, read through the cache.
func (s *LeadService) List(ctx context.Context, sess *models.Session) ([]models.Lead, error) {
	return cachedFetch(ctx, s.cache, CollectionLeads, func() ([]models.Lead, error) {
		return s.repo.List(ctx, sess.Token)
	})
}

// View derives the lead table for query. Cities come from the unfiltered
// collection; selection state is compared against the filtered list.
func (s *LeadService) View(ctx context.Context, sess *models.Session, query LeadQuery) (*dto.LeadView, error) {
	leads, err := s.List(ctx, sess)
	if err != nil {
		return nil, err
	}
	return buildLeadView(leads, query, NewLeadSelection(sess.Selection)), nil
}

func buildLeadView(leads []models.Lead, query LeadQuery, selection *LeadSelection) *dto.LeadView {
	query = query.normalized()
	filtered := ApplyLeadQuery(leads, query)
	return &dto.LeadView{
		Leads:           filtered,
		Cities:          LeadCities(leads),
		Total:           len(leads),
		Search:          query.Search,
		Role:            query.Role,
		City:            query.City,
		Sort:            string(query.Sort),
		SelectedIDs:     selection.IDs(),
		SelectedCount:   selection.Len(),
		VisibleSelected: selection.VisibleCount(filtered),
		AllSelected:     selection.AllSelected(filtered),
	}
}

// UpdateSelection applies a selection action. Select-all uses the list as
// filtered by the request's own query.
func (s *LeadService) UpdateSelection(ctx context.Context, sess *models.Session, req dto.SelectionRequest) (*dto.LeadView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	query := LeadQuery{Search: req.Search, Role: req.Role, City: req.City, Sort: LeadSort(req.Sort)}

	leads, err := s.List(ctx, sess)
	if err != nil {
		return nil, err
	}

	selection := NewLeadSelection(sess.Selection)
	switch req.Action {
	case dto.SelectionToggle:
		if req.LeadID <= 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "lead_id is required")
		}
		selection.Toggle(req.LeadID)
	case dto.SelectionSelectAll:
		selection.SelectAll(ApplyLeadQuery(leads, query))
	case dto.SelectionDeselectAll:
		selection.DeselectAll()
	}
	sess.Selection = selection.IDs()

	return buildLeadView(leads, query, selection), nil
}

// BulkNotify sends one notification per selected lead, in selection order,
// each awaited before the next. A failing lead is logged and counted and never
// stops the run. The selection is cleared afterwards whatever the outcome.
// When any send reported an expired session the result is still returned
// alongside ErrSessionExpired so the caller can end the session. Only one
// dispatch runs per session; a second one gets ErrBulkInProgress.
func (s *LeadService) BulkNotify(ctx context.Context, sess *models.Session, channel models.NotifyChannel) (*dto.BulkResult, error) {
	if !channel.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "channel must be email or whatsapp")
	}
	if s.sessions != nil {
		release, err := s.sessions.AcquireGuard(ctx, sess, GuardBulk)
		if err != nil {
			return nil, err
		}
		defer release()
		// an earlier dispatch may have cleared the selection after this request loaded it
		if stored, err := s.sessions.Load(ctx, sess.ID); err == nil {
			sess.Selection = stored.Selection
		}
	}
	ids := NewLeadSelection(sess.Selection).IDs()
	if len(ids) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Select at least one lead.")
	}

	result := &dto.BulkResult{Channel: channel}
	expired := false
	for _, id := range ids {
		result.Attempted++
		var err error
		if channel == models.ChannelEmail {
			err = s.repo.NotifyEmail(ctx, sess.Token, id, s.outreach.BulkEmailSubject, s.outreach.BulkEmailPrompt)
		} else {
			err = s.repo.NotifyWhatsApp(ctx, sess.Token, id, s.outreach.BulkWhatsAppPrompt)
		}
		if err != nil {
			result.Failed++
			if IsSessionExpired(err) {
				expired = true
			}
			s.logger.Warn("bulk notify failed for lead",
				zap.String("channel", string(channel)),
				zap.Int64("lead_id", id),
				zap.Error(err),
			)
			continue
		}
		result.Succeeded++
	}

	sess.Selection = nil
	if s.sessions != nil {
		// persisted before the guard is released
		if err := s.sessions.Save(context.WithoutCancel(ctx), sess); err != nil {
			s.logger.Warn("failed to persist cleared selection", zap.String("session_id", sess.ID), zap.Error(err))
		}
	}
	s.metrics.RecordBulkDispatch(channel, result.Succeeded, result.Failed)
	s.cache.InvalidateCollections(ctx, communicationKeys(ids)...)

	if expired {
		return result, appErrors.ErrSessionExpired
	}
	return result, nil
}

// NotifyLead sends the standard outreach message to a single lead.
func (s *LeadService) NotifyLead(ctx context.Context, sess *models.Session, id int64, channel models.NotifyChannel) error {
	var err error
	switch channel {
	case models.ChannelEmail:
		err = s.repo.NotifyEmail(ctx, sess.Token, id, s.outreach.EmailSubject, s.outreach.EmailPrompt)
	case models.ChannelWhatsApp:
		err = s.repo.NotifyWhatsApp(ctx, sess.Token, id, s.outreach.WhatsAppPrompt)
	default:
		return appErrors.Clone(appErrors.ErrValidation, "channel must be email or whatsapp")
	}
	if err != nil {
		return err
	}
	s.cache.InvalidateCollections(ctx, CommunicationsCollection(id))
	return nil
}

// CallLead asks the voice agent to ring a lead.
func (s *LeadService) CallLead(ctx context.Context, sess *models.Session, id int64) (*models.CallResult, error) {
	result, err := s.repo.Call(ctx, sess.Token, id)
	if err != nil {
		return nil, err
	}
	if result.Status == "error" {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "Failed to initiate call: "+result.Message)
	}
	return result, nil
}

// Delete removes a lead and drops it from the selection.
func (s *LeadService) Delete(ctx context.Context, sess *models.Session, id int64) error {
	if err := s.repo.Delete(ctx, sess.Token, id); err != nil {
		return err
	}
	selection := NewLeadSelection(sess.Selection)
	if selection.Contains(id) {
		selection.Toggle(id)
		sess.Selection = selection.IDs()
	}
	s.cache.InvalidateCollections(ctx, CollectionLeads, CollectionStats)
	return nil
}

// Create adds a lead from the admin console.
func (s *LeadService) Create(ctx context.Context, sess *models.Session, req models.CreateLeadRequest) (*models.Lead, error) {
	req, err := s.prepareLead(req)
	if err != nil {
		return nil, err
	}
	lead, err := s.repo.Create(ctx, sess.Token, req)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateCollections(ctx, CollectionLeads, CollectionStats)
	return lead, nil
}

// Capture submits the public enquiry form.
func (s *LeadService) Capture(ctx context.Context, req models.CreateLeadRequest) (*models.Lead, error) {
	req, err := s.prepareLead(req)
	if err != nil {
		return nil, err
	}
	lead, err := s.repo.CreatePublic(ctx, req)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateCollections(ctx, CollectionLeads, CollectionStats)
	return lead, nil
}

func (s *LeadService) prepareLead(req models.CreateLeadRequest) (models.CreateLeadRequest, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.City = strings.TrimSpace(req.City)
	if req.Role == "" {
		req.Role = models.LeadRoleStudent
	}
	if err := s.validator.Struct(req); err != nil {
		return req, validationError(err)
	}
	req.Phone, _ = NormalizePhone(req.Phone)
	return req, nil
}

// Import forwards a CSV upload to the backend.
func (s *LeadService) Import(ctx context.Context, sess *models.Session, filename string, content io.Reader) (*models.LeadImportResult, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "File must be a CSV")
	}
	result, err := s.repo.Import(ctx, sess.Token, filepath.Base(filename), content)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateCollections(ctx, CollectionLeads, CollectionStats)
	return result, nil
}

// Export renders the filtered, sorted lead table as CSV or PDF.
func (s *LeadService) Export(ctx context.Context, sess *models.Session, query LeadQuery, format string) (*dto.ExportFile, error) {
	leads, err := s.List(ctx, sess)
	if err != nil {
		return nil, err
	}
	filtered := ApplyLeadQuery(leads, query)

	now := s.now()
	dataset := export.Dataset{
		Title:    "Leads",
		Subtitle: fmt.Sprintf("%d of %d leads, generated %s", len(filtered), len(leads), now.Format("2006-01-02 15:04")),
		Headers:  []string{"ID", "Name", "Email", "Phone", "City", "Role", "Status"},
		Rows:     make([][]string, 0, len(filtered)),
	}
	for _, lead := range filtered {
		dataset.Rows = append(dataset.Rows, []string{
			strconv.FormatInt(lead.ID, 10),
			lead.Name,
			lead.Email,
			lead.Phone,
			lead.CityValue(),
			string(lead.Role),
			string(lead.Status),
		})
	}

	stamp := now.Format("20060102-150405")
	switch strings.ToLower(format) {
	case "", ExportCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export leads")
		}
		return &dto.ExportFile{Filename: "leads-" + stamp + ".csv", ContentType: "text/csv", Content: content}, nil
	case ExportPDF:
		content, err := s.pdf.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export leads")
		}
		return &dto.ExportFile{Filename: "leads-" + stamp + ".pdf", ContentType: "application/pdf", Content: content}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func communicationKeys(ids []int64) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = CommunicationsCollection(id)
	}
	return keys
}
