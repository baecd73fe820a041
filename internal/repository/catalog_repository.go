package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/coaching-portal/internal/models"
)

// CatalogRepository covers courses, batches and enrollments.
type CatalogRepository struct {
	client *BackendClient
}

// NewCatalogRepository constructs a catalog repository.
func NewCatalogRepository(client *BackendClient) *CatalogRepository {
	return &CatalogRepository{client: client}
}

// Courses lists every course. The endpoint is public.
func (r *CatalogRepository) Courses(ctx context.Context, token string) ([]models.Course, error) {
	var courses []models.Course
	if err := r.client.Get(ctx, "courses.list", token, "/courses", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// Batches lists every batch. The endpoint is public.
func (r *CatalogRepository) Batches(ctx context.Context, token string) ([]models.Batch, error) {
	var batches []models.Batch
	if err := r.client.Get(ctx, "batches.list", token, "/batches", nil, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}

// CreateBatch schedules a batch.
func (r *CatalogRepository) CreateBatch(ctx context.Context, token string, req models.CreateBatchRequest) (*models.Batch, error) {
	var batch models.Batch
	if err := r.client.PostJSON(ctx, "batches.create", token, "/batches", req, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// BatchStudents lists users enrolled in a batch.
func (r *CatalogRepository) BatchStudents(ctx context.Context, token string, batchID int64) ([]models.User, error) {
	var users []models.User
	if err := r.client.Get(ctx, "batches.students", token, fmt.Sprintf("/batches/%d/students", batchID), nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Enroll enrolls an existing student.
func (r *CatalogRepository) Enroll(ctx context.Context, token string, req models.EnrollmentRequest) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.client.PostJSON(ctx, "enrollments.create", token, "/enrollments", req, &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// EnrollLead converts a lead into an enrolled student.
func (r *CatalogRepository) EnrollLead(ctx context.Context, token string, req models.LeadEnrollmentRequest) (*models.LeadEnrollmentResult, error) {
	var result models.LeadEnrollmentResult
	if err := r.client.PostJSON(ctx, "enrollments.from_lead", token, "/enrollments/from-lead", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
