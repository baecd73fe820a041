package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-portal/internal/dto"
	"github.com/noah-isme/coaching-portal/internal/models"
	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
)

type catalogRepository interface {
	Courses(ctx context.Context, token string) ([]models.Course, error)
	Batches(ctx context.Context, token string) ([]models.Batch, error)
	CreateBatch(ctx context.Context, token string, req models.CreateBatchRequest) (*models.Batch, error)
	BatchStudents(ctx context.Context, token string, batchID int64) ([]models.User, error)
	Enroll(ctx context.Context, token string, req models.EnrollmentRequest) (*models.Enrollment, error)
	EnrollLead(ctx context.Context, token string, req models.LeadEnrollmentRequest) (*models.LeadEnrollmentResult, error)
}

type certificateIssuer interface {
	GenerateCertificate(ctx context.Context, token string, req models.CertificateRequest) (*models.CertificateResult, error)
}

// adminEnrollmentPayment marks enrollments made by staff without a payment.
const adminEnrollmentPayment = "ADMIN_ENROLLED"

// CatalogService covers courses, batches and enrollment.
type CatalogService struct {
	repo      catalogRepository
	certs     certificateIssuer
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(repo catalogRepository, certs certificateIssuer, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &CatalogService{repo: repo, certs: certs, cache: cache, validator: validate, logger: logger}
}

// Courses lists every course.
func (s *CatalogService) Courses(ctx context.Context, sess *models.Session) ([]models.Course, error) {
	return cachedFetch(ctx, s.cache, CollectionCourses, func() ([]models.Course, error) {
		return s.repo.Courses(ctx, sess.Token)
	})
}

// Batches lists every batch.
func (s *CatalogService) Batches(ctx context.Context, sess *models.Session) ([]models.Batch, error) {
	return cachedFetch(ctx, s.cache, CollectionBatches, func() ([]models.Batch, error) {
		return s.repo.Batches(ctx, sess.Token)
	})
}

// Catalog joins batches with their course. The landing page treats a failed
// fetch as an empty catalog, so errors are logged and swallowed here.
func (s *CatalogService) Catalog(ctx context.Context, sess *models.Session) *dto.Catalog {
	catalog := &dto.Catalog{Courses: []models.Course{}, Batches: []dto.BatchRow{}}

	courses, err := s.Courses(ctx, sess)
	if err != nil {
		s.logger.Warn("failed to load courses", zap.Error(err))
		return catalog
	}
	catalog.Courses = courses

	batches, err := s.Batches(ctx, sess)
	if err != nil {
		s.logger.Warn("failed to load batches", zap.Error(err))
		return catalog
	}
	catalog.Batches = JoinBatches(batches, courses)
	return catalog
}

// BatchRows is the admin classes table.
func (s *CatalogService) BatchRows(ctx context.Context, sess *models.Session) ([]dto.BatchRow, error) {
	courses, err := s.Courses(ctx, sess)
	if err != nil {
		return nil, err
	}
	batches, err := s.Batches(ctx, sess)
	if err != nil {
		return nil, err
	}
	return JoinBatches(batches, courses), nil
}

// JoinBatches attaches course title and price to each batch. A batch whose
// course is unknown keeps an empty title.
func JoinBatches(batches []models.Batch, courses []models.Course) []dto.BatchRow {
	byID := make(map[int64]models.Course, len(courses))
	for _, course := range courses {
		byID[course.ID] = course
	}
	rows := make([]dto.BatchRow, 0, len(batches))
	for _, batch := range batches {
		row := dto.BatchRow{Batch: batch}
		if course, ok := byID[batch.CourseID]; ok {
			row.CourseTitle = course.Title
			row.Price = course.Price
		}
		rows = append(rows, row)
	}
	return rows
}

// FindBatch returns the joined row for id.
func (s *CatalogService) FindBatch(ctx context.Context, sess *models.Session, id int64) (*dto.BatchRow, error) {
	rows, err := s.BatchRows(ctx, sess)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].ID == id {
			return &rows[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "Batch not found")
}

// CreateBatch schedules a batch.
func (s *CatalogService) CreateBatch(ctx context.Context, sess *models.Session, req models.CreateBatchRequest) (*models.Batch, error) {
	req.StartDate = strings.TrimSpace(req.StartDate)
	req.Timings = strings.TrimSpace(req.Timings)
	req.MeetingLink = strings.TrimSpace(req.MeetingLink)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	batch, err := s.repo.CreateBatch(ctx, sess.Token, req)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateCollections(ctx, CollectionBatches, CollectionStats)
	return batch, nil
}

// BatchStudents lists the students enrolled in a batch.
func (s *CatalogService) BatchStudents(ctx context.Context, sess *models.Session, batchID int64) ([]models.User, error) {
	return cachedFetch(ctx, s.cache, EnrolledCollection(batchID), func() ([]models.User, error) {
		return s.repo.BatchStudents(ctx, sess.Token, batchID)
	})
}

// EnrollStudent enrolls an existing student account without payment.
func (s *CatalogService) EnrollStudent(ctx context.Context, sess *models.Session, studentID, batchID int64) (*models.Enrollment, error) {
	req := models.EnrollmentRequest{
		StudentID: studentID,
		BatchID:   batchID,
		PaymentID: adminEnrollmentPayment,
		Amount:    0,
		Status:    "completed",
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	enrollment, err := s.repo.Enroll(ctx, sess.Token, req)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateCollections(ctx, CollectionStudents, EnrolledCollection(batchID), CollectionStats)
	return enrollment, nil
}

// EnrollLead converts a lead into a student of the batch.
func (s *CatalogService) EnrollLead(ctx context.Context, sess *models.Session, leadID, batchID int64) (*models.LeadEnrollmentResult, error) {
	req := models.LeadEnrollmentRequest{LeadID: leadID, BatchID: batchID}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	result, err := s.repo.EnrollLead(ctx, sess.Token, req)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateCollections(ctx, CollectionLeads, CollectionStudents, "enrolled", CollectionStats)
	return result, nil
}

// IssueCertificate issues a certificate for the course the batch belongs to.
func (s *CatalogService) IssueCertificate(ctx context.Context, sess *models.Session, studentID, batchID int64) (*models.CertificateResult, error) {
	batch, err := s.FindBatch(ctx, sess, batchID)
	if err != nil {
		return nil, err
	}
	req := models.CertificateRequest{StudentID: studentID, CourseID: batch.CourseID}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	return s.certs.GenerateCertificate(ctx, sess.Token, req)
}
