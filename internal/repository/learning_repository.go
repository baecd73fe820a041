package repository

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/noah-isme/coaching-portal/internal/models"
)

// LearningRepository covers the student-facing learning endpoints.
type LearningRepository struct {
	client *BackendClient
}

// NewLearningRepository constructs a learning repository.
func NewLearningRepository(client *BackendClient) *LearningRepository {
	return &LearningRepository{client: client}
}

func (r *LearningRepository) Classes(ctx context.Context, token string) ([]models.ClassSession, error) {
	var classes []models.ClassSession
	if err := r.client.Get(ctx, "classes.mine", token, "/users/me/classes", nil, &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *LearningRepository) Certificates(ctx context.Context, token string) ([]models.Certificate, error) {
	var certs []models.Certificate
	if err := r.client.Get(ctx, "certificates.mine", token, "/certificates/me", nil, &certs); err != nil {
		return nil, err
	}
	return certs, nil
}

// DownloadCertificate streams the certificate PDF.
func (r *LearningRepository) DownloadCertificate(ctx context.Context, token string, id int64) (io.ReadCloser, string, error) {
	return r.client.Download(ctx, "certificates.download", token, fmt.Sprintf("/certificates/%d/download", id))
}

// GenerateCertificate issues a certificate for a student and course.
func (r *LearningRepository) GenerateCertificate(ctx context.Context, token string, req models.CertificateRequest) (*models.CertificateResult, error) {
	var result models.CertificateResult
	if err := r.client.PostJSON(ctx, "certificates.generate", token, "/certificates/generate", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Assignments lists assignments, optionally for a single batch.
func (r *LearningRepository) Assignments(ctx context.Context, token string, batchID int64) ([]models.Assignment, error) {
	var query url.Values
	if batchID > 0 {
		query = url.Values{"batch_id": []string{strconv.FormatInt(batchID, 10)}}
	}
	var assignments []models.Assignment
	if err := r.client.Get(ctx, "assignments.list", token, "/assignments", query, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// Submissions lists the caller's submissions.
func (r *LearningRepository) Submissions(ctx context.Context, token string) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.client.Get(ctx, "submissions.list", token, "/submissions", nil, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

// Submit turns in an assignment.
func (r *LearningRepository) Submit(ctx context.Context, token string, req models.SubmissionRequest) (*models.Submission, error) {
	var submission models.Submission
	if err := r.client.PostJSON(ctx, "submissions.create", token, "/submissions", req, &submission); err != nil {
		return nil, err
	}
	return &submission, nil
}
