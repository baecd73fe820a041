package repository

import (
	"context"

	"github.com/noah-isme/coaching-portal/internal/models"
)

// AIRepository talks to the backend's AI chat endpoint.
type AIRepository struct {
	client *BackendClient
}

func NewAIRepository(client *BackendClient) *AIRepository {
	return &AIRepository{client: client}
}

// Chat sends a prompt and returns the generated reply.
func (r *AIRepository) Chat(ctx context.Context, token, prompt string) (string, error) {
	var resp models.ChatResponse
	if err := r.client.PostJSON(ctx, "ai.chat", token, "/ai/chat", models.ChatRequest{Prompt: prompt}, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}
