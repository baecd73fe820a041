package repository

import (
	"context"

	"github.com/noah-isme/coaching-portal/internal/models"
)

// SupportRepository wraps support ticket endpoints. The backend scopes the
// list to the caller unless the caller is an admin.
type SupportRepository struct {
	client *BackendClient
}

func NewSupportRepository(client *BackendClient) *SupportRepository {
	return &SupportRepository{client: client}
}

func (r *SupportRepository) List(ctx context.Context, token string) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	if err := r.client.Get(ctx, "support.list", token, "/support", nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *SupportRepository) Create(ctx context.Context, token string, req models.SupportTicketRequest) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	if err := r.client.PostJSON(ctx, "support.create", token, "/support", req, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}
