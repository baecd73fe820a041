package repository

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/noah-isme/coaching-portal/internal/models"
)

// LeadRepository wraps the lead endpoints.
type LeadRepository struct {
	client *BackendClient
}

// NewLeadRepository constructs a lead repository.
func NewLeadRepository(client *BackendClient) *LeadRepository {
	return &LeadRepository{client: client}
}

// List returns every lead.
func (r *LeadRepository) List(ctx context.Context, token string) ([]models.Lead, error) {
	var leads []models.Lead
	if err := r.client.Get(ctx, "leads.list", token, "/leads", nil, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

// Create adds a lead on behalf of an admin.
func (r *LeadRepository) Create(ctx context.Context, token string, req models.CreateLeadRequest) (*models.Lead, error) {
	var lead models.Lead
	if err := r.client.PostJSON(ctx, "leads.create", token, "/leads", req, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// CreatePublic submits the anonymous capture form.
func (r *LeadRepository) CreatePublic(ctx context.Context, req models.CreateLeadRequest) (*models.Lead, error) {
	var lead models.Lead
	if err := r.client.PostJSON(ctx, "leads.capture", "", "/public/leads", req, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// Delete removes a lead.
func (r *LeadRepository) Delete(ctx context.Context, token string, id int64) error {
	return r.client.Delete(ctx, "leads.delete", token, fmt.Sprintf("/leads/%d", id))
}

// NotifyEmail sends one lead an email built from subject and prompt.
func (r *LeadRepository) NotifyEmail(ctx context.Context, token string, id int64, subject, prompt string) error {
	query := url.Values{}
	if subject != "" {
		query.Set("subject", subject)
	}
	if prompt != "" {
		query.Set("prompt", prompt)
	}
	return r.client.PostQuery(ctx, "leads.notify_email", token, fmt.Sprintf("/leads/%d/notify/email", id), query, nil)
}

// NotifyWhatsApp sends one lead a WhatsApp message built from prompt.
func (r *LeadRepository) NotifyWhatsApp(ctx context.Context, token string, id int64, prompt string) error {
	query := url.Values{}
	if prompt != "" {
		query.Set("prompt", prompt)
	}
	return r.client.PostQuery(ctx, "leads.notify_whatsapp", token, fmt.Sprintf("/leads/%d/notify/whatsapp", id), query, nil)
}

// BroadcastNotify asks the backend to fan out one message to many leads.
func (r *LeadRepository) BroadcastNotify(ctx context.Context, token string, channel models.NotifyChannel, req models.BulkNotifyRequest) (string, error) {
	var resp models.MessageResponse
	path := fmt.Sprintf("/leads/bulk/notify/%s", channel)
	if err := r.client.PostJSON(ctx, "leads.broadcast_"+string(channel), token, path, req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Call asks the backend voice agent to ring a lead.
func (r *LeadRepository) Call(ctx context.Context, token string, id int64) (*models.CallResult, error) {
	var result models.CallResult
	if err := r.client.PostQuery(ctx, "leads.call", token, fmt.Sprintf("/leads/%d/call", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Import uploads a CSV of leads.
func (r *LeadRepository) Import(ctx context.Context, token, filename string, content io.Reader) (*models.LeadImportResult, error) {
	var result models.LeadImportResult
	if err := r.client.PostFile(ctx, "leads.import", token, "/leads/import", "file", filename, content, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
