package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/coaching-portal/internal/models"
)

// CommunicationRepository wraps the lead communication log.
type CommunicationRepository struct {
	client *BackendClient
}

func NewCommunicationRepository(client *BackendClient) *CommunicationRepository {
	return &CommunicationRepository{client: client}
}

// History returns every message exchanged with a lead.
func (r *CommunicationRepository) History(ctx context.Context, token string, leadID int64) ([]models.CommunicationLog, error) {
	var logs []models.CommunicationLog
	if err := r.client.Get(ctx, "communications.history", token, fmt.Sprintf("/communications/%d", leadID), nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// SendEmail sends a manual email and records it in the log.
func (r *CommunicationRepository) SendEmail(ctx context.Context, token string, req models.EmailRequest) error {
	return r.client.PostJSON(ctx, "communications.email", token, "/communications/email", req, nil)
}
