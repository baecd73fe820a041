package repository

import (
	"context"

	"github.com/noah-isme/coaching-portal/internal/models"
)

// PaymentRepository posts simulated provider callbacks.
type PaymentRepository struct {
	client *BackendClient
}

func NewPaymentRepository(client *BackendClient) *PaymentRepository {
	return &PaymentRepository{client: client}
}

// MockWebhook reports a completed mock payment to the backend.
func (r *PaymentRepository) MockWebhook(ctx context.Context, payload models.PaymentWebhook) error {
	return r.client.PostJSON(ctx, "payments.webhook_mock", "", "/payments/webhook/mock", payload, nil)
}
